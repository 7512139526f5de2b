// internal/workers/delivery/notify-run/handler.go
package notifyrun

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	commonaws "formqa/internal/common/aws"
	"formqa/internal/common/logger"
	"formqa/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	TaskType = "notify-run"
)

const (
	subjectTemplate = "formqa run {{status}}: {{produced}}/{{requested}} records"
	bodyTemplate    = "Run {{runId}} finished with status {{status}} after {{duration}}.\n" +
		"Form: {{formUrl}}\nSink: {{sinkUrl}}\n" +
		"Produced {{produced}} of {{requested}} records at {{speed}} speed.\n" +
		"Form submissions: {{submitted}} ok, {{failed}} failed. Sink deliveries: {{sinkDelivered}} ok, {{sinkFailed}} failed.\n"
)

type Handler struct {
	config    *Config
	publisher commonaws.Publisher
	logger    logger.Logger
}

// NewHandler builds a notifier. A nil publisher disables publishing regardless of config.
func NewHandler(config *Config, publisher commonaws.Publisher, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		publisher: publisher,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	sentAt := time.Now().UTC().Format(time.RFC3339)
	if !h.config.Enabled || h.publisher == nil || h.config.TopicARN == "" {
		return &Output{Status: StatusDisabled, SentAt: sentAt}, nil
	}

	data := summaryData(input.Summary)
	body := renderTemplate(bodyTemplate, data)
	if payload, err := json.Marshal(input.Summary); err == nil {
		body += "\n" + string(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	out, err := h.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Subject:  aws.String(renderTemplate(subjectTemplate, data)),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			AttrRunID:  {DataType: aws.String("String"), StringValue: aws.String(input.Summary.RunID)},
			AttrStatus: {DataType: aws.String("String"), StringValue: aws.String(string(input.Summary.Status))},
		},
	})
	if err != nil {
		h.logger.Error("run notification failed", map[string]interface{}{
			"runId": input.Summary.RunID,
			"error": err,
		})
		return &Output{Status: StatusFailed, SentAt: sentAt}, nil
	}

	return &Output{MessageID: aws.ToString(out.MessageId), Status: StatusSent, SentAt: sentAt}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Notify publishes the summary of a finished run and returns the delivery status.
func (h *Handler) Notify(ctx context.Context, summary models.RunSummary) string {
	out, _ := h.execute(ctx, &Input{Summary: summary})
	if out.Status == StatusSent {
		h.logger.Info("run notification sent", map[string]interface{}{
			"runId":     summary.RunID,
			"messageId": out.MessageID,
		})
	}
	return out.Status
}

func summaryData(s models.RunSummary) map[string]interface{} {
	return map[string]interface{}{
		"runId":         s.RunID,
		"status":        string(s.Status),
		"formUrl":       s.FormURL,
		"sinkUrl":       s.SinkURL,
		"speed":         s.Speed,
		"requested":     s.Requested,
		"produced":      s.Produced,
		"submitted":     s.Submitted,
		"failed":        s.Failed,
		"sinkDelivered": s.SinkDelivered,
		"sinkFailed":    s.SinkFailed,
		"duration":      s.Duration().Round(time.Millisecond).String(),
	}
}

// renderTemplate substitutes {{key}} placeholders and drops the ones with no value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
