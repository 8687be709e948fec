// internal/validation/wizard.go
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// wizardSchema describes what the onboarding wizard may submit. Unknown keys are
// allowed because the payload is stored verbatim on the application.
const wizardSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name":        {"type": "string", "minLength": 1, "maxLength": 255},
    "category":    {"type": "string", "maxLength": 100},
    "phone":       {"type": "string", "maxLength": 30},
    "whatsapp":    {"type": "string", "maxLength": 30},
    "email":       {"type": "string", "maxLength": 255},
    "address":     {"type": "string", "maxLength": 500},
    "city":        {"type": "string", "maxLength": 100},
    "location": {
      "type": "object",
      "required": ["lat", "lng"],
      "properties": {
        "lat": {"type": "number", "minimum": -90, "maximum": 90},
        "lng": {"type": "number", "minimum": -180, "maximum": 180}
      }
    },
    "description": {"type": "string", "maxLength": 5000},
    "schedule": {
      "type": "object",
      "propertyNames": {"enum": ["monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"]},
      "additionalProperties": {
        "type": "object",
        "required": ["open"],
        "properties": {
          "open": {"type": "boolean"},
          "from": {"type": "string", "maxLength": 5},
          "to":   {"type": "string", "maxLength": 5}
        }
      }
    },
    "logo_url":     {"type": "string", "maxLength": 500},
    "cover_url":    {"type": "string", "maxLength": 500},
    "gallery":      {"type": "array", "maxItems": 30, "items": {"type": "string", "maxLength": 500}},
    "services":     {"type": "array", "maxItems": 50, "items": {"type": "string", "maxLength": 200}},
    "products":     {"type": "array", "maxItems": 50, "items": {"type": "string", "maxLength": 200}},
    "social_links": {"type": "object", "additionalProperties": {"type": "string", "maxLength": 500}}
  }
}`

var compiledWizardSchema = mustCompile(wizardSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid wizard schema: %v", err))
	}
	return s
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaError lists every violation found in a payload.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "payload validation failed: " + strings.Join(parts, "; ")
}

// Location is the resolved map position.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DayHours mirrors one schedule entry of the wizard.
type DayHours struct {
	Open bool   `json:"open"`
	From string `json:"from"`
	To   string `json:"to"`
}

// WizardPayload is the typed view of a schema-valid submission.
type WizardPayload struct {
	Name        string              `json:"name"`
	Category    string              `json:"category"`
	Phone       string              `json:"phone"`
	WhatsApp    string              `json:"whatsapp"`
	Email       string              `json:"email"`
	Address     string              `json:"address"`
	City        string              `json:"city"`
	Location    *Location           `json:"location"`
	Description string              `json:"description"`
	Schedule    map[string]DayHours `json:"schedule"`
	LogoURL     string              `json:"logo_url"`
	CoverURL    string              `json:"cover_url"`
	Gallery     []string            `json:"gallery"`
	Services    []string            `json:"services"`
	Products    []string            `json:"products"`
	SocialLinks map[string]string   `json:"social_links"`
}

// DecodeWizard validates the raw payload against the wizard schema and returns
// both the typed view and the generic document for verbatim storage.
func DecodeWizard(raw []byte) (*WizardPayload, map[string]interface{}, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil, &SchemaError{Errors: []FieldError{{Field: "payload", Message: "payload is required"}}}
	}

	result, err := compiledWizardSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, nil, &SchemaError{Errors: []FieldError{{Field: "payload", Message: "payload is not valid JSON"}}}
	}

	if !result.Valid() {
		errs := make([]FieldError, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = FieldError{Field: desc.Field(), Message: desc.Description()}
		}
		return nil, nil, &SchemaError{Errors: errs}
	}

	var payload WizardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	var document map[string]interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	return &payload, document, nil
}
