// internal/workers/generation/generate-record/handler.go
package generaterecord

import (
	"context"

	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
	"formqa/internal/models"
)

const (
	TaskType = "generate-record"
)

type Handler struct {
	config    *Config
	generator *Generator
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	gen := New()
	if config.Seed != 0 {
		gen = NewGenerator(config.Seed)
	}
	return &Handler{
		config:    config,
		generator: gen,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := h.GenerateRecord(input.Fields)

	h.logger.Debug("record generated", map[string]interface{}{
		"recordId": record.ID,
		"fields":   len(input.Fields),
	})

	return &Output{Record: record}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// GenerateRecord builds one record for fields.
func (h *Handler) GenerateRecord(fields []models.FieldDescriptor) models.GeneratedRecord {
	record := h.generator.Generate(fields)
	metrics.RecordsGenerated.Inc()
	return record
}
