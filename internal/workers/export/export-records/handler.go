// internal/workers/export/export-records/handler.go
package exportrecords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"formqa/internal/common/logger"
	"formqa/internal/models"
)

const (
	TaskType = "export-records"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Path == "" {
		return nil, fmt.Errorf("export path is required")
	}

	var buf bytes.Buffer
	if err := h.Write(&buf, input.Format, input.Records, input.Fields); err != nil {
		return nil, err
	}
	if err := os.WriteFile(input.Path, buf.Bytes(), h.config.FileMode); err != nil {
		return nil, fmt.Errorf("write %s: %w", input.Path, err)
	}

	h.logger.Info("records exported", map[string]interface{}{
		"path":    input.Path,
		"format":  string(input.Format),
		"records": len(input.Records),
	})

	return &Output{
		Path:    input.Path,
		Format:  input.Format,
		Records: len(input.Records),
		Bytes:   buf.Len(),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Write renders records in the requested format.
func (h *Handler) Write(w io.Writer, format Format, records []models.GeneratedRecord, fields []models.FieldDescriptor) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records, h.config.Indent)
	case FormatCSV:
		return WriteCSV(w, records, fields)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes records as an indented array of flat objects.
func WriteJSON(w io.Writer, records []models.GeneratedRecord, indent string) error {
	if records == nil {
		records = []models.GeneratedRecord{}
	}
	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteCSV writes one header row of field labels and one row per record, every cell quoted.
func WriteCSV(w io.Writer, records []models.GeneratedRecord, fields []models.FieldDescriptor) error {
	var sb strings.Builder

	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = quote(f.Label)
	}
	sb.WriteString(strings.Join(cells, ","))
	sb.WriteByte('\n')

	for _, r := range records {
		for i, f := range fields {
			cells[i] = quote(cellText(r.Values[f.ID]))
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, "; ")
	default:
		return fmt.Sprint(val)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Distribution tallies answers for select and scale fields, in field order.
func Distribution(records []models.GeneratedRecord, fields []models.FieldDescriptor) []Tally {
	var out []Tally
	for _, f := range fields {
		if !f.Type.IsSelect() && f.Type != models.FieldLinearScale {
			continue
		}
		t := Tally{FieldID: f.ID, Label: f.Label, Counts: make(map[string]int)}
		for _, r := range records {
			switch val := r.Values[f.ID].(type) {
			case nil:
			case []string:
				for _, item := range val {
					t.Counts[item]++
				}
			default:
				t.Counts[fmt.Sprint(val)]++
			}
		}
		out = append(out, t)
	}
	return out
}
