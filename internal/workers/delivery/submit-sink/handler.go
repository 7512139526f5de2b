// internal/workers/delivery/submit-sink/handler.go
package submitsink

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "formqa/internal/common/errors"
	commonhttp "formqa/internal/common/http"
	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
	"formqa/internal/common/validation"
	"formqa/internal/models"
)

const (
	TaskType = "submit-sink"

	targetLabel = "sink"
)

type Handler struct {
	config    *Config
	client    *commonhttp.Client
	validator *validation.RecordValidator
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: commonhttp.NewClient(config.Timeout, config.UserAgent),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// WithValidator makes the handler refuse records that do not match the field schema.
func (h *Handler) WithValidator(v *validation.RecordValidator) *Handler {
	h.validator = v
	return h
}

// CheckSinkURL logs a warning for plain spreadsheet links, which do not accept POST bodies.
func (h *Handler) CheckSinkURL(sinkURL string) {
	if strings.Contains(sinkURL, "docs.google.com/spreadsheets") {
		h.logger.Warn("spreadsheet URLs do not accept posted data; use a web app endpoint", map[string]interface{}{
			"sinkUrl": sinkURL,
		})
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.validator != nil {
		if result := h.validator.Validate(input.Record); !result.Valid {
			return nil, apperrors.NewInvalidSchemaError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	payload, err := json.Marshal(input.Record)
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(input.SinkURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, input.SinkURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(input.SinkURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(input.SinkURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return &Output{StatusCode: resp.StatusCode, Bytes: len(payload)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Deliver posts one record to the sink and reports whether the request completed.
func (h *Handler) Deliver(ctx context.Context, sinkURL string, record models.GeneratedRecord) bool {
	out, err := h.execute(ctx, &Input{SinkURL: sinkURL, Record: record})
	if err != nil {
		outcome := metrics.OutcomeFailure
		if apperrors.CodeOf(err) == apperrors.ErrCodeInvalidSchema {
			outcome = metrics.OutcomeRejected
		}
		metrics.Deliveries.WithLabelValues(targetLabel, outcome).Inc()
		h.logger.Warn("sink delivery failed", map[string]interface{}{
			"recordId":  record.ID,
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err.Error(),
		})
		return false
	}

	metrics.Deliveries.WithLabelValues(targetLabel, metrics.OutcomeSuccess).Inc()
	h.logger.Debug("sink delivery sent", map[string]interface{}{
		"recordId":   record.ID,
		"statusCode": out.StatusCode,
	})
	return true
}
