// internal/workers/export/export-records/models.go
package exportrecords

import "formqa/internal/models"

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

type Input struct {
	Format  Format                   `json:"format"`
	Path    string                   `json:"path"`
	Records []models.GeneratedRecord `json:"records"`
	Fields  []models.FieldDescriptor `json:"fields"`
}

type Output struct {
	Path    string `json:"path"`
	Format  Format `json:"format"`
	Records int    `json:"records"`
	Bytes   int    `json:"bytes"`
}

// Tally counts how often each answer was chosen for one chartable field.
type Tally struct {
	FieldID string         `json:"fieldId"`
	Label   string         `json:"label"`
	Counts  map[string]int `json:"counts"`
}
