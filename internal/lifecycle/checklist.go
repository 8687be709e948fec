// internal/lifecycle/checklist.go
package lifecycle

// ChecklistItem is one weighted profile requirement.
type ChecklistItem struct {
	Key     string
	Label   string
	Weight  int
	Present func(Profile) bool
}

// Checklist is the ordered profile checklist. Labels are shown verbatim to owners
// and their order is the order of MissingFields.
var Checklist = []ChecklistItem{
	{Key: "name", Label: "Business name", Weight: 10, Present: Profile.hasName},
	{Key: "category", Label: "Category", Weight: 10, Present: Profile.hasCategory},
	{Key: "contact", Label: "Phone or WhatsApp", Weight: 10, Present: Profile.hasContact},
	{Key: "location", Label: "Address and map location", Weight: 10, Present: Profile.hasLocation},
	{Key: "description", Label: "Description (at least 50 characters)", Weight: 10, Present: Profile.hasDescription},
	{Key: "schedule", Label: "Opening hours", Weight: 10, Present: func(p Profile) bool { return p.Schedule.HasOpenDay() }},
	{Key: "logo", Label: "Logo", Weight: 10, Present: Profile.hasLogo},
	{Key: "cover", Label: "Cover image", Weight: 10, Present: Profile.hasCover},
	{Key: "gallery", Label: "Photo gallery", Weight: 10, Present: Profile.hasGallery},
	{Key: "social", Label: "Social links", Weight: 5, Present: Profile.hasSocialLinks},
	{Key: "offerings", Label: "Services or products", Weight: 5, Present: Profile.hasOfferings},
}

// Score is the result of running a profile through the checklist.
type Score struct {
	Percent   int      `json:"completion_percent"`
	Missing   []string `json:"missing_fields"`
	Satisfied []string `json:"satisfied_fields"`
}

// ScoreProfile evaluates every checklist item and sums the weights of the
// satisfied ones. Missing is never nil so it serialises as [].
func ScoreProfile(p Profile) Score {
	score := Score{
		Missing:   []string{},
		Satisfied: []string{},
	}

	total := 0
	for _, item := range Checklist {
		if item.Present(p) {
			total += item.Weight
			score.Satisfied = append(score.Satisfied, item.Key)
			continue
		}
		score.Missing = append(score.Missing, item.Label)
	}

	score.Percent = clamp(total, 0, 100)
	return score
}

// LabelFor returns the checklist label for a key, or the key itself when unknown.
func LabelFor(key string) string {
	for _, item := range Checklist {
		if item.Key == key {
			return item.Label
		}
	}
	return key
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
