// internal/workers/persistence/store-records/handler.go
package storerecords

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"formqa/internal/common/database"
	"formqa/internal/common/logger"
	"formqa/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "store-records"
)

type Handler struct {
	config *Config
	db     *database.PostgresClient
	logger logger.Logger
}

func NewHandler(config *Config, db *database.PostgresClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	summary := input.Summary
	if summary.RunID == "" {
		summary.RunID = uuid.NewString()
	}
	if _, err := uuid.Parse(summary.RunID); err != nil {
		return nil, fmt.Errorf("run id %q is not a UUID: %w", summary.RunID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	err := h.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertRunQuery,
			summary.RunID, summary.FormURL, summary.SinkURL, summary.Speed,
			summary.Requested, summary.Produced, summary.Submitted, summary.Failed,
			summary.SinkDelivered, summary.SinkFailed, string(summary.Status),
			summary.StartedAt, summary.FinishedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, record := range input.Records {
			payload, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", record.ID, err)
			}
			if _, err := tx.ExecContext(ctx, insertRecordQuery, summary.RunID, record.ID, payload); err != nil {
				return fmt.Errorf("insert record %s: %w", record.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		h.logger.Error("storing run failed", map[string]interface{}{
			"runId": summary.RunID,
			"error": err,
		})
		return nil, err
	}

	h.logger.Info("run stored", map[string]interface{}{
		"runId":   summary.RunID,
		"records": len(input.Records),
	})
	return &Output{RunID: summary.RunID, Records: len(input.Records)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Store persists a run summary with its records in one transaction.
func (h *Handler) Store(ctx context.Context, summary models.RunSummary, records []models.GeneratedRecord) (string, error) {
	out, err := h.execute(ctx, &Input{Summary: summary, Records: records})
	if err != nil {
		return "", err
	}
	return out.RunID, nil
}

// RecentRuns returns the latest stored runs, newest first. A non-positive limit uses the configured default.
func (h *Handler) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = h.config.HistoryLimit
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	rows, err := h.db.DB.QueryContext(ctx, recentRunsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		var status string
		if err := rows.Scan(
			&s.RunID, &s.FormURL, &s.SinkURL, &s.Speed,
			&s.Requested, &s.Produced, &s.Submitted, &s.Failed,
			&s.SinkDelivered, &s.SinkFailed, &status,
			&s.StartedAt, &s.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Status = models.RunStatus(status)
		runs = append(runs, s)
	}
	return runs, rows.Err()
}
