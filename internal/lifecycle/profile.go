// internal/lifecycle/profile.go
package lifecycle

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinDescriptionLength is the number of characters a description needs to count.
const MinDescriptionLength = 50

// Weekdays lists schedule keys in display order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// DayHours describes a single day of the weekly schedule.
type DayHours struct {
	Open bool   `json:"open"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// HasValidHours reports whether the day is open with well-formed HH:MM bounds.
// Overnight ranges (22:00-02:00) are accepted; an empty range (09:00-09:00) is not.
func (d DayHours) HasValidHours() bool {
	if !d.Open {
		return false
	}
	if !clockPattern.MatchString(d.From) || !clockPattern.MatchString(d.To) {
		return false
	}
	return d.From != d.To
}

// WeeklySchedule maps a lowercase weekday name to its opening hours.
type WeeklySchedule map[string]DayHours

// HasOpenDay reports whether at least one known weekday is marked open.
func (w WeeklySchedule) HasOpenDay() bool {
	for _, day := range Weekdays {
		if w[day].Open {
			return true
		}
	}
	return false
}

// HasValidOpenDay reports whether at least one known weekday is open with valid hours.
func (w WeeklySchedule) HasValidOpenDay() bool {
	for _, day := range Weekdays {
		if w[day].HasValidHours() {
			return true
		}
	}
	return false
}

// Profile is the snapshot of listing attributes the scorer and the readiness
// evaluator look at.
type Profile struct {
	Name        string
	Category    string
	Phone       string
	WhatsApp    string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Description string
	Schedule    WeeklySchedule
	LogoURL     string
	CoverURL    string
	Gallery     []string
	SocialLinks map[string]string
	Services    []string
	Products    []string
}

func (p Profile) hasName() bool {
	return strings.TrimSpace(p.Name) != ""
}

func (p Profile) hasCategory() bool {
	return strings.TrimSpace(p.Category) != ""
}

func (p Profile) hasContact() bool {
	return strings.TrimSpace(p.Phone) != "" || strings.TrimSpace(p.WhatsApp) != ""
}

func (p Profile) hasLocation() bool {
	return strings.TrimSpace(p.Address) != "" && p.Latitude != nil && p.Longitude != nil
}

func (p Profile) hasDescription() bool {
	return utf8.RuneCountInString(strings.TrimSpace(p.Description)) >= MinDescriptionLength
}

func (p Profile) hasLogo() bool {
	return strings.TrimSpace(p.LogoURL) != ""
}

func (p Profile) hasCover() bool {
	return strings.TrimSpace(p.CoverURL) != ""
}

func (p Profile) hasGallery() bool {
	return anyNonBlank(p.Gallery)
}

func (p Profile) hasSocialLinks() bool {
	for _, link := range p.SocialLinks {
		if strings.TrimSpace(link) != "" {
			return true
		}
	}
	return false
}

func (p Profile) hasOfferings() bool {
	return anyNonBlank(p.Services) || anyNonBlank(p.Products)
}

func anyNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
