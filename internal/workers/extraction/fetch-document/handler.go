// internal/workers/extraction/fetch-document/handler.go
package fetchdocument

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "formqa/internal/common/errors"
	commonhttp "formqa/internal/common/http"
	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
)

const (
	TaskType = "fetch-document"
)

var (
	errTooShort      = errors.New("document too short")
	errMarkerMissing = errors.New("data marker not found")
)

type Handler struct {
	config *Config
	client *commonhttp.Client
	cache  DocumentCache
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

// WithCache enables the document cache.
func (h *Handler) WithCache(cache DocumentCache) *Handler {
	h.cache = cache
	return h
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	normalized, err := NormalizeURL(input.TargetURL)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if doc, ok := h.cache.Get(ctx, normalized); ok {
			metrics.RelayAttempts.WithLabelValues("cache", metrics.OutcomeCacheHit).Inc()
			h.logger.Info("document served from cache", map[string]interface{}{
				"url": normalized,
			})
			return &Output{Document: doc, NormalizedURL: normalized, Relay: "cache", FromCache: true}, nil
		}
	}

	var lastErr error
	attempts := 0

	for _, relay := range h.config.Relays {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		attempts++

		start := time.Now()
		doc, err := h.attempt(ctx, relay, normalized)
		metrics.RelayAttemptDuration.WithLabelValues(relay.Name).Observe(time.Since(start).Seconds())

		if err != nil {
			if errors.Is(err, apperrors.ErrPermissionDenied) {
				metrics.RelayAttempts.WithLabelValues(relay.Name, metrics.OutcomeDenied).Inc()
				h.logger.Error("document is private", map[string]interface{}{
					"url":   normalized,
					"relay": relay.Name,
				})
				return nil, err
			}

			metrics.RelayAttempts.WithLabelValues(relay.Name, metrics.OutcomeFailure).Inc()
			h.logger.Warn("relay attempt failed", map[string]interface{}{
				"relay":   relay.Name,
				"attempt": attempts,
				"error":   err.Error(),
			})
			lastErr = err
			continue
		}

		metrics.RelayAttempts.WithLabelValues(relay.Name, metrics.OutcomeSuccess).Inc()
		h.logger.Info("document fetched", map[string]interface{}{
			"relay":    relay.Name,
			"attempts": attempts,
			"bytes":    len(doc),
		})

		if h.cache != nil {
			h.cache.Put(ctx, normalized, doc)
		}

		return &Output{
			Document:      doc,
			NormalizedURL: normalized,
			Relay:         relay.Name,
			Attempts:      attempts,
		}, nil
	}

	return nil, apperrors.NewRelayExhaustedError(normalized, attempts, lastErr)
}

func (h *Handler) attempt(ctx context.Context, relay Relay, normalized string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, relay.Expand(normalized), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.config.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text := string(body)
	if relay.Envelope == EnvelopeJSON {
		text, err = unwrapEnvelope(body, relay.ContentsKey)
		if err != nil {
			return "", err
		}
	}

	if err := h.checkDocument(text, normalized, relay.Name); err != nil {
		return "", err
	}
	return text, nil
}

func unwrapEnvelope(body []byte, key string) (string, error) {
	if key == "" {
		key = "contents"
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	raw, ok := envelope[key]
	if !ok {
		return "", fmt.Errorf("envelope has no %q field", key)
	}
	var contents string
	if err := json.Unmarshal(raw, &contents); err != nil {
		return "", fmt.Errorf("envelope field %q is not a string: %w", key, err)
	}
	return contents, nil
}

// checkDocument classifies relay output. Private-form markers win over the length check.
func (h *Handler) checkDocument(text, normalized, relayName string) error {
	for _, marker := range h.config.PrivateMarkers {
		if strings.Contains(text, marker) {
			return apperrors.NewPermissionDeniedError(normalized, relayName)
		}
	}
	if len(text) < h.config.MinLength {
		return fmt.Errorf("%w: %d bytes", errTooShort, len(text))
	}
	if !strings.Contains(text, h.config.Marker) {
		return errMarkerMissing
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// FetchDocument returns the document text for targetURL.
func (h *Handler) FetchDocument(ctx context.Context, targetURL string) (string, error) {
	out, err := h.execute(ctx, &Input{TargetURL: targetURL})
	if err != nil {
		return "", err
	}
	return out.Document, nil
}
