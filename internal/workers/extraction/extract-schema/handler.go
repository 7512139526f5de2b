// internal/workers/extraction/extract-schema/handler.go
package extractschema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
	"formqa/internal/models"
)

const (
	TaskType = "extract-schema"
)

type Handler struct {
	config   *Config
	patterns []pattern
	logger   logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		patterns: buildPatterns(config.Marker),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, patternName, err := h.locate(input.Document)
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		h.logger.Error("failed to locate data blob", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	questions, ok := questionList(data)
	if !ok {
		err := apperrors.NewEmptySchemaError("question list missing at data[1][1]")
		metrics.ExtractionFailures.WithLabelValues(string(err.Code)).Inc()
		return nil, err
	}

	fields := make([]models.FieldDescriptor, 0, len(questions))
	skipped := 0
	for i, node := range questions {
		field, ok := parseQuestion(i, node)
		if !ok {
			skipped++
			continue
		}
		fields = append(fields, field)
	}

	h.logger.Info("schema extracted", map[string]interface{}{
		"fields":  len(fields),
		"skipped": skipped,
		"pattern": patternName,
	})

	return &Output{Fields: fields, Skipped: skipped, Pattern: patternName}, nil
}

// locate tries every pattern on script bodies first, then on the whole document.
func (h *Handler) locate(doc string) ([]interface{}, string, error) {
	sources := append(scriptSources(doc, h.config.Marker), doc)

	var decodeErr error
	for _, src := range sources {
		for _, p := range h.patterns {
			literal, ok := p.find(src)
			if !ok {
				continue
			}
			data, err := decodeLiteral(literal)
			if err != nil {
				if decodeErr == nil {
					decodeErr = err
				}
				continue
			}
			return data, p.name, nil
		}
	}

	if decodeErr != nil {
		return nil, "", apperrors.NewMalformedPayloadError(decodeErr)
	}
	return nil, "", apperrors.NewPatternNotFoundError(h.config.Marker)
}

func decodeLiteral(literal string) ([]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(literal))
	dec.UseNumber()
	var data []interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func questionList(data []interface{}) ([]interface{}, bool) {
	if len(data) < 2 {
		return nil, false
	}
	info, ok := data[1].([]interface{})
	if !ok || len(info) < 2 {
		return nil, false
	}
	questions, ok := info[1].([]interface{})
	return questions, ok
}

// parseQuestion reads [id, label, description, typeCode, [[entryId, options, ...]], ...].
func parseQuestion(index int, node interface{}) (models.FieldDescriptor, bool) {
	q, ok := node.([]interface{})
	if !ok || len(q) < 5 {
		return models.FieldDescriptor{}, false
	}

	label, ok := q[1].(string)
	if !ok || label == "" {
		return models.FieldDescriptor{}, false
	}

	details, ok := q[4].([]interface{})
	if !ok || len(details) == 0 {
		return models.FieldDescriptor{}, false
	}
	entry, ok := details[0].([]interface{})
	if !ok {
		return models.FieldDescriptor{}, false
	}

	code := -1
	if n, ok := q[3].(json.Number); ok {
		if v, err := n.Int64(); err == nil {
			code = int(v)
		}
	}

	rule := ruleFor(code)
	field := models.FieldDescriptor{
		Label: label,
		Type:  rule.fieldType(label),
	}

	if len(entry) > 0 {
		switch key := entry[0].(type) {
		case json.Number:
			field.ExternalKey = key.String()
		case string:
			field.ExternalKey = key
		}
	}
	if field.ExternalKey != "" {
		field.ID = "field_" + field.ExternalKey
	} else {
		field.ID = fmt.Sprintf("field_q%d", index)
	}

	if rule.withOptions && len(entry) > 1 {
		field.Options = optionLabels(entry[1])
	}

	return field, true
}

// optionLabels keeps the first slot of each option tuple when it is a non-empty string.
func optionLabels(raw interface{}) []string {
	tuples, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var options []string
	for _, t := range tuples {
		tuple, ok := t.([]interface{})
		if !ok || len(tuple) == 0 {
			continue
		}
		if s, ok := tuple[0].(string); ok && s != "" {
			options = append(options, s)
		}
	}
	return options
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// ExtractSchema returns the field descriptors found in a fetched document.
func (h *Handler) ExtractSchema(ctx context.Context, document string) ([]models.FieldDescriptor, error) {
	out, err := h.execute(ctx, &Input{Document: document})
	if err != nil {
		return nil, err
	}
	return out.Fields, nil
}
