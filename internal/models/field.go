// internal/models/field.go
package models

// FieldType is the inferred semantic type of a form question.
type FieldType string

const (
	FieldShortText    FieldType = "short-text"
	FieldLongText     FieldType = "long-text"
	FieldEmail        FieldType = "email"
	FieldSingleSelect FieldType = "single-select"
	FieldMultiSelect  FieldType = "multi-select"
	FieldInteger      FieldType = "integer"
	FieldDate         FieldType = "date"
	FieldTime         FieldType = "time"
	FieldLinearScale  FieldType = "linear-scale"
)

var knownFieldTypes = map[FieldType]bool{
	FieldShortText:    true,
	FieldLongText:     true,
	FieldEmail:        true,
	FieldSingleSelect: true,
	FieldMultiSelect:  true,
	FieldInteger:      true,
	FieldDate:         true,
	FieldTime:         true,
	FieldLinearScale:  true,
}

func (t FieldType) Valid() bool {
	return knownFieldTypes[t]
}

func (t FieldType) IsSelect() bool {
	return t == FieldSingleSelect || t == FieldMultiSelect
}

// FieldDescriptor is one question of an extracted or hand-written schema.
type FieldDescriptor struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
	ExternalKey string    `json:"externalKey,omitempty"` // form entry id; empty means generation-only
}

// Deliverable reports whether the field can be sent to the form endpoint.
func (f FieldDescriptor) Deliverable() bool {
	return f.ExternalKey != ""
}

// AnyDeliverable reports whether at least one field carries an external key.
func AnyDeliverable(fields []FieldDescriptor) bool {
	for _, f := range fields {
		if f.Deliverable() {
			return true
		}
	}
	return false
}
