// internal/workers/generation/generate-record/models.go
package generaterecord

import "formqa/internal/models"

type Input struct {
	Fields []models.FieldDescriptor `json:"fields"`
}

type Output struct {
	Record models.GeneratedRecord `json:"record"`
}
