// internal/cli/app.go
package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	commonaws "formqa/internal/common/aws"
	"formqa/internal/common/config"
	"formqa/internal/common/database"
	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/logger"
	"formqa/internal/common/observability"
	"formqa/internal/runner"

	notifyrun "formqa/internal/workers/delivery/notify-run"
	submitform "formqa/internal/workers/delivery/submit-form"
	submitsink "formqa/internal/workers/delivery/submit-sink"
	extractschema "formqa/internal/workers/extraction/extract-schema"
	fetchdocument "formqa/internal/workers/extraction/fetch-document"
	generaterecord "formqa/internal/workers/generation/generate-record"
	storerecords "formqa/internal/workers/persistence/store-records"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// app owns the configuration, logger and the connections opened for one command.
type app struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	obs     *observability.Observability
	errs    *apperrors.ErrorHandler
	closers []func() error
}

func newApp(opts *RootOptions) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromFile(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	zapLog := logger.New(level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("run metrics disabled", map[string]interface{}{"error": err.Error()})
	}

	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    log,
		obs:    obs,
		errs:   apperrors.NewErrorHandler(log),
	}
	a.closers = append(a.closers, func() error {
		obs.Shutdown()
		return nil
	})
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = a.zapLog.Sync()
}

// serveMetrics exposes /metrics while the command runs, when enabled in config.
func (a *app) serveMetrics() {
	if !a.cfg.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
	a.log.Info("metrics server started", map[string]interface{}{"address": a.cfg.Metrics.Address})

	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// fetcher builds the relay orchestrator, with the Redis document cache when it is enabled and reachable.
func (a *app) fetcher(ctx context.Context) *fetchdocument.Handler {
	cfg := fetchdocument.FromConfig(a.cfg.Fetch, a.cfg.Cache)
	h := fetchdocument.NewHandler(cfg, a.log)
	if !a.cfg.Cache.Enabled {
		return h
	}

	client := database.NewRedis(a.cfg.Cache.Redis)
	err := retryWithBackoff(ctx, func() error { return client.Ping(ctx) }, 3, 500*time.Millisecond, a.log, "Redis connection")
	if err != nil {
		a.log.Warn("document cache disabled", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
		return h
	}
	a.closers = append(a.closers, client.Close)
	return h.WithCache(fetchdocument.NewRedisCache(client, cfg.CacheTTL, a.log))
}

// store opens PostgreSQL and creates the run tables.
func (a *app) store(ctx context.Context) (*storerecords.Handler, error) {
	pg, err := database.NewPostgres(a.cfg.Store.Postgres)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pg.Close)

	if err := retryWithBackoff(ctx, func() error { return pg.Ping(ctx) }, 5, time.Second, a.log, "PostgreSQL connection"); err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	return storerecords.NewHandler(storerecords.LoadConfig(), pg, a.log), nil
}

func (a *app) notifier(ctx context.Context) (*notifyrun.Handler, error) {
	cfg := notifyrun.FromConfig(a.cfg.Notifications)
	cfg.Enabled = true
	client, err := commonaws.NewSNSClient(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	return notifyrun.NewHandler(cfg, client, a.log), nil
}

// pipeline holds the handlers a run drives, kept concrete so commands can configure them.
type pipeline struct {
	fetch    *fetchdocument.Handler
	extract  *extractschema.Handler
	generate *generaterecord.Handler
	form     *submitform.Handler
	sink     *submitsink.Handler
}

func (a *app) pipeline(ctx context.Context, seed uint64) *pipeline {
	genCfg := generaterecord.LoadConfig()
	genCfg.Seed = seed

	formCfg := submitform.LoadConfig()
	formCfg.Timeout = config.GetDuration(a.cfg.Run.SubmitTimeout)
	formCfg.UserAgent = a.cfg.Fetch.UserAgent

	sinkCfg := submitsink.LoadConfig()
	sinkCfg.Timeout = config.GetDuration(a.cfg.Run.SubmitTimeout)
	sinkCfg.UserAgent = a.cfg.Fetch.UserAgent

	extractCfg := extractschema.LoadConfig()
	extractCfg.Marker = a.cfg.Fetch.Marker

	return &pipeline{
		fetch:    a.fetcher(ctx),
		extract:  extractschema.NewHandler(extractCfg, a.log),
		generate: generaterecord.NewHandler(genCfg, a.log),
		form:     submitform.NewHandler(formCfg, a.log),
		sink:     submitsink.NewHandler(sinkCfg, a.log),
	}
}

func (p *pipeline) components(obs *observability.Observability) runner.Components {
	return runner.Components{
		Fetcher:       p.fetch,
		Extractor:     p.extract,
		Generator:     p.generate,
		Form:          p.form,
		Sink:          p.sink,
		Observability: obs,
	}
}

// describe logs err with its guidance and returns an error carrying the hint for the terminal.
func (a *app) describe(operation string, err error) error {
	g := a.errs.Describe(operation, err)
	return &guidanceError{guidance: g, err: err}
}

type guidanceError struct {
	guidance apperrors.Guidance
	err      error
}

func (e *guidanceError) Error() string {
	return e.err.Error() + "\nhint: " + e.guidance.Hint
}

func (e *guidanceError) Unwrap() error {
	return e.err
}
