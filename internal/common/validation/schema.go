package validation

import (
	"fmt"
	"regexp"
	"strings"

	"formqa/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Value ranges shared with the record generator.
const (
	RollMin = 102203000
	RollMax = 102505999

	ScaleMin = 1
	ScaleMax = 5

	MaxMultiSelect = 3
)

const (
	recordIDPattern    = `^RESP-\d+-\d{4}$`
	emailPattern       = `^[a-z]+\.[a-z]+\d{1,2}@[a-z0-9.-]+\.[a-z]{2,}$`
	datePattern        = `^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|1\d|2[0-8])$`
	timePattern        = `^([01]\d|2[0-3]):(00|15|30|45)$`
	placeholderPattern = `^Option [1-3]$`
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RecordValidator checks generated records against the JSON Schema derived from a field list.
type RecordValidator struct {
	schema *gojsonschema.Schema
}

// NewRecordValidator compiles the record schema for fields.
func NewRecordValidator(fields []models.FieldDescriptor) (*RecordValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(RecordSchema(fields)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile record schema: %w", err)
	}
	return &RecordValidator{schema: schema}, nil
}

// Validate checks one record in its flat JSON form.
func (v *RecordValidator) Validate(record models.GeneratedRecord) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(record))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "UNREADABLE_RECORD",
			}},
		}
	}
	return fromResult(result)
}

// ValidateDocument validates an arbitrary Go value against a JSON Schema given as a Go map.
func ValidateDocument(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return fromResult(result), nil
}

func fromResult(result *gojsonschema.Result) *ValidationResult {
	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return &ValidationResult{Valid: result.Valid(), Errors: errs}
}

// RecordSchema builds the JSON Schema that every generated record for fields satisfies.
func RecordSchema(fields []models.FieldDescriptor) map[string]interface{} {
	properties := map[string]interface{}{
		"id": map[string]interface{}{"type": "string", "pattern": recordIDPattern},
	}
	required := []string{"id"}

	for _, f := range fields {
		properties[f.ID] = fieldSchema(f)
		required = append(required, f.ID)
	}

	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func fieldSchema(f models.FieldDescriptor) map[string]interface{} {
	label := strings.ToLower(f.Label)

	if strings.Contains(label, "roll") {
		return map[string]interface{}{"type": "integer", "minimum": RollMin, "maximum": RollMax}
	}

	if strings.Contains(label, "hostel") {
		item := map[string]interface{}{"type": "string", "minLength": 1}
		if len(f.Options) > 0 {
			item["enum"] = f.Options
		}
		if f.Type == models.FieldMultiSelect {
			return arrayOf(item, 1)
		}
		return item
	}

	switch f.Type {
	case models.FieldEmail:
		return map[string]interface{}{"type": "string", "pattern": emailPattern}
	case models.FieldLongText:
		return map[string]interface{}{"type": "string", "minLength": 1}
	case models.FieldInteger:
		return map[string]interface{}{"type": "integer"}
	case models.FieldDate:
		return map[string]interface{}{"type": "string", "pattern": datePattern}
	case models.FieldTime:
		return map[string]interface{}{"type": "string", "pattern": timePattern}
	case models.FieldLinearScale:
		return map[string]interface{}{"type": "integer", "minimum": ScaleMin, "maximum": ScaleMax}
	case models.FieldSingleSelect:
		return optionSchema(f.Options)
	case models.FieldMultiSelect:
		if len(f.Options) == 0 {
			return arrayOf(optionSchema(nil), 1)
		}
		return arrayOf(optionSchema(f.Options), min(MaxMultiSelect, len(distinct(f.Options))))
	default:
		return map[string]interface{}{"type": "string", "minLength": 1}
	}
}

func optionSchema(options []string) map[string]interface{} {
	if len(options) == 0 {
		return map[string]interface{}{"type": "string", "pattern": placeholderPattern}
	}
	return map[string]interface{}{"type": "string", "enum": distinct(options)}
}

// distinct keeps the first occurrence of each option; enum items must be unique.
func distinct(options []string) []string {
	seen := make(map[string]bool, len(options))
	out := make([]string, 0, len(options))
	for _, o := range options {
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	return out
}

func arrayOf(item map[string]interface{}, maxItems int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       item,
		"minItems":    1,
		"maxItems":    maxItems,
		"uniqueItems": true,
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

var urlRe = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)

// ValidateURL validates http(s) URL format
func ValidateURL(url string) bool {
	return urlRe.MatchString(url)
}
