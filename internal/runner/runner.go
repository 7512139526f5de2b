// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/logger"
	"formqa/internal/common/metrics"
	"formqa/internal/common/observability"
	"formqa/internal/models"

	submitform "formqa/internal/workers/delivery/submit-form"

	"github.com/google/uuid"
)

const (
	TaskType = "run-controller"
)

// ErrRunInProgress is returned when Run is called while another run is active on the same Runner.
var ErrRunInProgress = errors.New("RUN_IN_PROGRESS")

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, targetURL string) (string, error)
}

type SchemaExtractor interface {
	ExtractSchema(ctx context.Context, document string) ([]models.FieldDescriptor, error)
}

type RecordGenerator interface {
	GenerateRecord(fields []models.FieldDescriptor) models.GeneratedRecord
}

type FormSubmitter interface {
	Submit(ctx context.Context, targetURL string, record models.GeneratedRecord, fields []models.FieldDescriptor) bool
}

type SinkDeliverer interface {
	Deliver(ctx context.Context, sinkURL string, record models.GeneratedRecord) bool
}

type RunStore interface {
	Store(ctx context.Context, summary models.RunSummary, records []models.GeneratedRecord) (string, error)
}

type RunNotifier interface {
	Notify(ctx context.Context, summary models.RunSummary) string
}

// Components are the collaborators a Runner drives. Fetcher and Extractor are only needed
// when a request carries no schema; Store, Notifier and Observability are optional.
type Components struct {
	Fetcher       DocumentFetcher
	Extractor     SchemaExtractor
	Generator     RecordGenerator
	Form          FormSubmitter
	Sink          SinkDeliverer
	Store         RunStore
	Notifier      RunNotifier
	Observability *observability.Observability
}

// Request describes one run. With no Fields the schema is extracted from FormURL first.
type Request struct {
	FormURL string
	SinkURL string
	Count   int
	Speed   Speed
	Fields  []models.FieldDescriptor
}

type Result struct {
	Summary models.RunSummary
	Fields  []models.FieldDescriptor
	Records []models.GeneratedRecord
}

type Runner struct {
	config     *Config
	components Components
	logger     logger.Logger

	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func(limit time.Duration) time.Duration
	onProgress func(models.ProgressEvent)

	running atomic.Bool
	stopped atomic.Bool
}

func New(config *Config, components Components, log logger.Logger) *Runner {
	return &Runner{
		config:     config,
		components: components,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		sleep:  sleepContext,
		jitter: randomJitter,
	}
}

// OnProgress registers a callback invoked synchronously after each produced record.
func (r *Runner) OnProgress(fn func(models.ProgressEvent)) {
	r.onProgress = fn
}

// Stop asks the active run to finish after the current iteration. A Stop that arrives before Run
// starts its loop applies to that run; the flag is cleared when Run returns. It is safe to call from any goroutine.
func (r *Runner) Stop() {
	r.stopped.Store(true)
}

// Analyze fetches the document at formURL and extracts its schema.
func (r *Runner) Analyze(ctx context.Context, formURL string) ([]models.FieldDescriptor, error) {
	if r.components.Fetcher == nil || r.components.Extractor == nil {
		return nil, fmt.Errorf("schema extraction is not configured")
	}
	doc, err := r.components.Fetcher.FetchDocument(ctx, formURL)
	if err != nil {
		return nil, err
	}
	return r.components.Extractor.ExtractSchema(ctx, doc)
}

// Run drives Count iterations of generate then deliver. Delivery failures are counted, never fatal.
// Cancellation through Stop or ctx keeps the records produced so far.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer func() {
		r.stopped.Store(false)
		r.running.Store(false)
	}()

	if req.Count < 0 {
		return nil, fmt.Errorf("count must not be negative")
	}
	if req.Speed == "" {
		req.Speed = SpeedBalanced
	}
	if _, ok := r.config.BaseDelays[req.Speed]; !ok {
		return nil, fmt.Errorf("unknown speed %q", req.Speed)
	}

	fields := req.Fields
	if fields == nil {
		extracted, err := r.Analyze(ctx, req.FormURL)
		if err != nil {
			return nil, err
		}
		fields = extracted
	}
	if len(fields) == 0 {
		return nil, apperrors.NewEmptySchemaError("no fields to generate")
	}

	submitForm := req.FormURL != "" && models.AnyDeliverable(fields) && r.components.Form != nil
	if submitForm {
		if _, err := submitform.SubmitURL(req.FormURL); err != nil {
			return nil, err
		}
	}
	useSink := req.SinkURL != "" && r.components.Sink != nil
	if useSink {
		if checker, ok := r.components.Sink.(interface{ CheckSinkURL(string) }); ok {
			checker.CheckSinkURL(req.SinkURL)
		}
	}

	summary := models.RunSummary{
		RunID:     uuid.NewString(),
		FormURL:   req.FormURL,
		SinkURL:   req.SinkURL,
		Speed:     string(req.Speed),
		Requested: req.Count,
		Status:    models.RunCompleted,
		StartedAt: time.Now().UTC(),
	}
	log := r.logger.With(map[string]interface{}{"runId": summary.RunID})
	log.Info("run started", map[string]interface{}{
		"count":      req.Count,
		"speed":      string(req.Speed),
		"fields":     len(fields),
		"submitForm": submitForm,
		"sink":       useSink,
	})

	records := make([]models.GeneratedRecord, 0, req.Count)
	var (
		wg          sync.WaitGroup
		sinkOK      atomic.Int64
		sinkFailed  atomic.Int64
		sinkContext = context.WithoutCancel(ctx)
	)

	for i := 0; i < req.Count; i++ {
		if r.stopped.Load() || ctx.Err() != nil {
			summary.Status = models.RunStopped
			break
		}

		record := r.components.Generator.GenerateRecord(fields)
		records = append(records, record)

		message := "Generated record (simulation)"
		if submitForm {
			if err := r.sleep(ctx, r.throttle(req.Speed)); err != nil {
				summary.Status = models.RunStopped
				break
			}
			if r.components.Form.Submit(ctx, req.FormURL, record, fields) {
				summary.Submitted++
				message = "Submitted record to form"
			} else {
				summary.Failed++
				message = "Form submission failed"
			}
		}

		if useSink {
			if !submitForm {
				if err := r.sleep(ctx, r.config.SinkOnlyPause); err != nil {
					summary.Status = models.RunStopped
					break
				}
				message = "Sent record to sink"
			}
			r.dispatchSink(sinkContext, &wg, req.SinkURL, record, &sinkOK, &sinkFailed)
		}

		if !submitForm && !useSink {
			if err := r.sleep(ctx, r.config.SimulatePause); err != nil {
				summary.Status = models.RunStopped
				break
			}
		}

		r.emit(models.ProgressEvent{
			Index:    i + 1,
			Total:    req.Count,
			Percent:  float64(i+1) * 100 / float64(req.Count),
			RecordID: record.ID,
			Message:  message,
		})
	}

	wg.Wait()

	summary.Produced = len(records)
	summary.SinkDelivered = int(sinkOK.Load())
	summary.SinkFailed = int(sinkFailed.Load())
	summary.FinishedAt = time.Now().UTC()

	log.Info("run finished", map[string]interface{}{
		"status":        string(summary.Status),
		"produced":      summary.Produced,
		"submitted":     summary.Submitted,
		"failed":        summary.Failed,
		"sinkDelivered": summary.SinkDelivered,
		"sinkFailed":    summary.SinkFailed,
		"durationMs":    summary.Duration().Milliseconds(),
	})

	r.finish(sinkContext, log, &summary, records)

	return &Result{Summary: summary, Fields: fields, Records: records}, nil
}

// dispatchSink delivers one record without blocking the loop. Outcomes are tallied atomically.
func (r *Runner) dispatchSink(ctx context.Context, wg *sync.WaitGroup, sinkURL string, record models.GeneratedRecord, ok, failed *atomic.Int64) {
	wg.Add(1)
	metrics.DeliveriesInFlight.Inc()
	go func() {
		defer wg.Done()
		defer metrics.DeliveriesInFlight.Dec()
		if r.components.Sink.Deliver(ctx, sinkURL, record) {
			ok.Add(1)
		} else {
			failed.Add(1)
		}
	}()
}

// finish records run metrics and runs the optional post-run steps. Their failures are logged only.
func (r *Runner) finish(ctx context.Context, log logger.Logger, summary *models.RunSummary, records []models.GeneratedRecord) {
	r.components.Observability.RecordRun(ctx, string(summary.Status), summary.Duration(), summary.Produced)

	if r.components.Store != nil {
		if _, err := r.components.Store.Store(ctx, *summary, records); err != nil {
			log.Warn("run not stored", map[string]interface{}{"error": err.Error()})
		}
	}
	if r.components.Notifier != nil {
		status := r.components.Notifier.Notify(ctx, *summary)
		log.Debug("run notification", map[string]interface{}{"status": status})
	}
}

func (r *Runner) throttle(speed Speed) time.Duration {
	return r.config.BaseDelays[speed] + r.jitter(r.config.Jitter)
}

func (r *Runner) emit(ev models.ProgressEvent) {
	if r.onProgress != nil {
		r.onProgress(ev)
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
