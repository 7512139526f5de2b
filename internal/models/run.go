// internal/models/run.go
package models

import "time"

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunStopped   RunStatus = "stopped"
)

// RunSummary describes a finished (or stopped) generation run.
type RunSummary struct {
	RunID         string    `json:"runId"`
	FormURL       string    `json:"formUrl,omitempty"`
	SinkURL       string    `json:"sinkUrl,omitempty"`
	Speed         string    `json:"speed"`
	Requested     int       `json:"requested"`
	Produced      int       `json:"produced"`
	Submitted     int       `json:"submitted"`
	Failed        int       `json:"failed"`
	SinkDelivered int       `json:"sinkDelivered"`
	SinkFailed    int       `json:"sinkFailed"`
	Status        RunStatus `json:"status"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// ProgressEvent is emitted once per produced record.
type ProgressEvent struct {
	Index    int     `json:"index"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	RecordID string  `json:"recordId"`
	Message  string  `json:"message"`
}
