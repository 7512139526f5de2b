// pkg/schemafile/schema.go
package schemafile

import "formqa/internal/models"

// CurrentVersion is written by Save and accepted by Load.
const CurrentVersion = "1"

// SchemaFile is a hand-written or saved field schema, usable without extraction.
type SchemaFile struct {
	Version     string                   `json:"version"`
	LastUpdated string                   `json:"lastUpdated"`
	SourceURL   string                   `json:"sourceUrl,omitempty"`
	Fields      []models.FieldDescriptor `json:"fields"`
}

var fieldTypes = []interface{}{
	string(models.FieldShortText),
	string(models.FieldLongText),
	string(models.FieldEmail),
	string(models.FieldSingleSelect),
	string(models.FieldMultiSelect),
	string(models.FieldInteger),
	string(models.FieldDate),
	string(models.FieldTime),
	string(models.FieldLinearScale),
}

// documentSchema is the JSON Schema every schema file must satisfy.
var documentSchema = map[string]interface{}{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []interface{}{"version", "fields"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string", "enum": []interface{}{CurrentVersion}},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"sourceUrl":   map[string]interface{}{"type": "string"},
		"fields": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"id", "label", "type"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "string", "minLength": 1},
					"label":       map[string]interface{}{"type": "string"},
					"type":        map[string]interface{}{"type": "string", "enum": fieldTypes},
					"options":     map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					"externalKey": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
}
