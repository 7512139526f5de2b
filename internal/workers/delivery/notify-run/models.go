// internal/workers/delivery/notify-run/models.go
package notifyrun

import "formqa/internal/models"

type Input struct {
	Summary models.RunSummary `json:"summary"`
}

type Output struct {
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"` // "sent", "failed", "disabled"
	SentAt    string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Message attribute names published with every summary.
const (
	AttrRunID  = "runId"
	AttrStatus = "status"
)
