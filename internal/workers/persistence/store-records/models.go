// internal/workers/persistence/store-records/models.go
package storerecords

import "formqa/internal/models"

type Input struct {
	Summary models.RunSummary        `json:"summary"`
	Records []models.GeneratedRecord `json:"records"`
}

type Output struct {
	RunID   string `json:"runId"`
	Records int    `json:"records"`
}
