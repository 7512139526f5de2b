// internal/workers/delivery/submit-form/handler.go
package submitform

import (
	"context"
	"io"
	"net/http"

	apperrors "formqa/internal/common/errors"
	commonhttp "formqa/internal/common/http"
	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
	"formqa/internal/models"
)

const (
	TaskType = "submit-form"

	targetLabel = "form"
)

type Handler struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
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

// execute posts the record. Any completed HTTP exchange counts as delivered;
// the endpoint's response is opaque.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	submitURL, err := SubmitURL(input.TargetURL)
	if err != nil {
		return nil, err
	}

	body, contentType, entries, err := EncodeForm(input.Record, input.Fields)
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(submitURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, body)
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(submitURL, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, apperrors.NewSubmissionFailedError(submitURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return &Output{
		SubmitURL:  submitURL,
		StatusCode: resp.StatusCode,
		Entries:    entries,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Submit delivers one record to the form and reports whether the request completed.
func (h *Handler) Submit(ctx context.Context, targetURL string, record models.GeneratedRecord, fields []models.FieldDescriptor) bool {
	out, err := h.execute(ctx, &Input{TargetURL: targetURL, Record: record, Fields: fields})
	if err != nil {
		metrics.Deliveries.WithLabelValues(targetLabel, metrics.OutcomeFailure).Inc()
		h.logger.Warn("form submission failed", map[string]interface{}{
			"recordId":  record.ID,
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err.Error(),
		})
		return false
	}

	metrics.Deliveries.WithLabelValues(targetLabel, metrics.OutcomeSuccess).Inc()
	h.logger.Debug("form submission sent", map[string]interface{}{
		"recordId":   record.ID,
		"statusCode": out.StatusCode,
		"entries":    out.Entries,
	})
	return true
}
