// internal/lifecycle/readiness.go
package lifecycle

// MinPublishCompletion is the lowest completion a publish-ready listing can have:
// the readiness rule implies the name, category, contact, location, description
// and schedule checklist items.
const MinPublishCompletion = 60

// Readiness is the result of the publish-readiness rule.
type Readiness struct {
	Ready bool `json:"is_publish_ready"`
	// Unmet lists the labels of the readiness requirements that fail.
	Unmet []string `json:"unmet_requirements"`
}

type readinessRule struct {
	label string
	met   func(Profile) bool
}

var readinessRules = []readinessRule{
	{label: "Business name", met: Profile.hasName},
	{label: "Category", met: Profile.hasCategory},
	{label: "Phone or WhatsApp", met: Profile.hasContact},
	{label: "Address and map location", met: Profile.hasLocation},
	{label: "Description (at least 50 characters)", met: Profile.hasDescription},
	{label: "Opening hours with valid times", met: func(p Profile) bool { return p.Schedule.HasValidOpenDay() }},
}

// EvaluateReadiness applies the minimum-fields rule. It does not look at the
// completion percentage.
func EvaluateReadiness(p Profile) Readiness {
	r := Readiness{Unmet: []string{}}
	for _, rule := range readinessRules {
		if !rule.met(p) {
			r.Unmet = append(r.Unmet, rule.label)
		}
	}
	r.Ready = len(r.Unmet) == 0
	return r
}

// Assessment combines the completion score and the readiness verdict. It holds
// every derived field stored on a listing.
type Assessment struct {
	CompletionPercent int      `json:"completion_percent"`
	IsPublishReady    bool     `json:"is_publish_ready"`
	MissingFields     []string `json:"missing_fields"`
	UnmetRequirements []string `json:"unmet_requirements"`
}

// Assess scores the profile and evaluates readiness in one pass.
func Assess(p Profile) Assessment {
	score := ScoreProfile(p)
	readiness := EvaluateReadiness(p)
	return Assessment{
		CompletionPercent: score.Percent,
		IsPublishReady:    readiness.Ready,
		MissingFields:     score.Missing,
		UnmetRequirements: readiness.Unmet,
	}
}
