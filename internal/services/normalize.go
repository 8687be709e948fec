// internal/services/normalize.go
package services

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/localbiz/directory-backend/internal/lifecycle"
	"github.com/localbiz/directory-backend/internal/models"
	"github.com/localbiz/directory-backend/internal/validation"
)

// normalizer cleans wizard input before it becomes a listing.
type normalizer struct {
	categories *CategoryCatalog
}

// listingFromWizard builds an unsaved listing for owner from a validated payload.
func (n normalizer) listingFromWizard(ownerID uuid.UUID, p *validation.WizardPayload) *models.Business {
	b := &models.Business{
		OwnerID:     ownerID,
		Name:        cleanText(p.Name),
		Category:    n.categories.Canonicalize(p.Category),
		Phone:       normalizePhone(p.Phone),
		WhatsApp:    normalizePhone(p.WhatsApp),
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		Address:     cleanText(p.Address),
		City:        cleanText(p.City),
		Description: strings.TrimSpace(p.Description),
		Schedule:    normalizeSchedule(p.Schedule),
		LogoURL:     strings.TrimSpace(p.LogoURL),
		CoverURL:    strings.TrimSpace(p.CoverURL),
		Gallery:     cleanList(p.Gallery),
		SocialLinks: cleanLinks(p.SocialLinks),
		Services:    cleanList(p.Services),
		Products:    cleanList(p.Products),
	}
	if p.Location != nil {
		lat, lng := p.Location.Lat, p.Location.Lng
		b.Latitude = &lat
		b.Longitude = &lng
	}
	return b
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizePhone keeps digits and a leading plus sign.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

func cleanList(items []string) pq.StringArray {
	out := pq.StringArray{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func cleanLinks(links map[string]string) models.StringMap {
	out := models.StringMap{}
	for k, v := range links {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func normalizeSchedule(days map[string]validation.DayHours) models.Schedule {
	out := models.Schedule{}
	for day, h := range days {
		day = strings.ToLower(strings.TrimSpace(day))
		if day == "" {
			continue
		}
		out[day] = lifecycle.DayHours{
			Open: h.Open,
			From: strings.TrimSpace(h.From),
			To:   strings.TrimSpace(h.To),
		}
	}
	return out
}
