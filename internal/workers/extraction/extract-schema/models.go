// internal/workers/extraction/extract-schema/models.go
package extractschema

import "formqa/internal/models"

type Input struct {
	Document string `json:"document"`
}

type Output struct {
	Fields  []models.FieldDescriptor `json:"fields"`
	Skipped int                      `json:"skipped"`
	Pattern string                   `json:"pattern"`
}
