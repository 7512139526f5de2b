// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formqa/internal/common/config"
	"formqa/internal/common/database"
	"formqa/internal/common/logger"
	"formqa/internal/models"
	"formqa/internal/runner"
	submitform "formqa/internal/workers/delivery/submit-form"
	submitsink "formqa/internal/workers/delivery/submit-sink"
	extractschema "formqa/internal/workers/extraction/extract-schema"
	fetchdocument "formqa/internal/workers/extraction/fetch-document"
	generaterecord "formqa/internal/workers/generation/generate-record"
	storerecords "formqa/internal/workers/persistence/store-records"
)

const formPath = "/forms/d/e/1FAIpQLSe2e/viewform"

var zapLog *zap.Logger

func TestMain(m *testing.M) {
	zapLog, _ = zap.NewDevelopment()
	code := m.Run()
	_ = zapLog.Sync()
	os.Exit(code)
}

// ==========================
// Fake Form Host
// ==========================

type formHost struct {
	srv *httptest.Server

	mu          sync.Mutex
	viewHits    int
	submissions []map[string][]string
	sinkBodies  int
}

func formDocument() string {
	blob := `[null,["E2E survey",[` +
		`[1,"Full Name",null,0,[[2001,null,1]]],` +
		`[2,"Email Address",null,0,[[2002,null,1]]],` +
		`[3,"Branch",null,2,[[2003,[["CSE"],["ECE"],["MECH"]],1]]],` +
		`[4,"Sports",null,4,[[2004,[["Chess"],["Golf"],["Polo"],["Tennis"]],0]]],` +
		`[5,"Rate the canteen",null,5,[[2005,[["1"],["5"]],0]]]` +
		`]]]`
	return "<html><head><title>E2E survey</title></head><body>" +
		strings.Repeat(`<div class="freebirdFormviewerViewItemsItemItem"></div>`, 20) +
		`<script type="text/javascript">var FB_PUBLIC_LOAD_DATA_ = ` + blob + `;</script>` +
		"</body></html>"
}

func newFormHost(t *testing.T) *formHost {
	h := &formHost{}
	mux := http.NewServeMux()
	mux.HandleFunc(formPath, func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.viewHits++
		h.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, formDocument())
	})
	mux.HandleFunc("/forms/d/e/1FAIpQLSe2e/formResponse", func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" && r.ParseMultipartForm(1<<20) == nil {
			h.mu.Lock()
			h.submissions = append(h.submissions, r.MultipartForm.Value)
			h.mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/sink", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.sinkBodies++
		h.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)
	return h
}

// ==========================
// Service Setup
// ==========================

// connectServices returns live Redis and PostgreSQL clients, or skips the test.
func connectServices(t *testing.T) (*config.Config, *database.RedisClient, *database.PostgresClient) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	if cfg.Cache.Redis.Address == "" {
		cfg.Cache.Redis.Address = "localhost:6379"
	}
	if cfg.Store.Postgres.Host == "" {
		cfg.Store.Postgres.Host = "localhost"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb := database.NewRedis(cfg.Cache.Redis)
	if err := rdb.Ping(ctx); err != nil {
		rdb.Close()
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	pg, err := database.NewPostgres(cfg.Store.Postgres)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { pg.Close() })

	require.NoError(t, pg.Migrate(ctx), "schema migration failed")
	return cfg, rdb, pg
}

func buildRunner(t *testing.T, cfg *config.Config, rdb *database.RedisClient, pg *database.PostgresClient) (*runner.Runner, *storerecords.Handler) {
	t.Helper()
	log := logger.NewZapAdapter(zapLog)

	fetchCfg := fetchdocument.LoadConfig()
	fetchCfg.Relays = []fetchdocument.Relay{{Name: "direct", URLTemplate: "{raw}", Envelope: fetchdocument.EnvelopeRaw}}
	fetchCfg.Timeout = 5 * time.Second
	fetcher := fetchdocument.NewHandler(fetchCfg, log).
		WithCache(fetchdocument.NewRedisCache(rdb, time.Minute, log))

	genCfg := generaterecord.LoadConfig()
	genCfg.Seed = 42

	store := storerecords.NewHandler(storerecords.LoadConfig(), pg, log)

	runCfg := runner.FromConfig(cfg.Run)
	runCfg.BaseDelays[runner.SpeedAggressive] = 10 * time.Millisecond
	runCfg.Jitter = time.Millisecond
	runCfg.SinkOnlyPause = time.Millisecond
	runCfg.SimulatePause = time.Millisecond

	r := runner.New(runCfg, runner.Components{
		Fetcher:   fetcher,
		Extractor: extractschema.NewHandler(extractschema.LoadConfig(), log),
		Generator: generaterecord.NewHandler(genCfg, log),
		Form:      submitform.NewHandler(submitform.LoadConfig(), log),
		Sink:      submitsink.NewHandler(submitsink.LoadConfig(), log),
		Store:     store,
	}, log)
	return r, store
}

// ==========================
// Full Pipeline
// ==========================

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, rdb, pg := connectServices(t)
	host := newFormHost(t)
	formURL := host.srv.URL + formPath

	t.Log("starting formqa pipeline against live redis and postgres")

	// the first analysis fills the document cache, the second must not hit the host
	r, store := buildRunner(t, cfg, rdb, pg)
	fields, err := r.Analyze(ctx, formURL+"?usp=sf_link")
	require.NoError(t, err)
	require.Len(t, fields, 5)

	_, err = r.Analyze(ctx, formURL)
	require.NoError(t, err)
	host.mu.Lock()
	assert.Equal(t, 1, host.viewHits, "second analysis should be served from redis")
	host.mu.Unlock()

	result, err := r.Run(ctx, runner.Request{
		FormURL: formURL,
		SinkURL: host.srv.URL + "/sink",
		Count:   4,
		Speed:   runner.SpeedAggressive,
		Fields:  fields,
	})
	require.NoError(t, err)

	summary := result.Summary
	assert.Equal(t, models.RunCompleted, summary.Status)
	assert.Equal(t, 4, summary.Produced)
	assert.Equal(t, 4, summary.Submitted)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 4, summary.SinkDelivered)

	host.mu.Lock()
	require.Len(t, host.submissions, 4)
	for _, form := range host.submissions {
		assert.Contains(t, []string{"CSE", "ECE", "MECH"}, form["entry.2003"][0])
		assert.LessOrEqual(t, len(form["entry.2004"]), 3)
	}
	assert.Equal(t, 4, host.sinkBodies)
	host.mu.Unlock()

	runs, err := store.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	var found bool
	for _, run := range runs {
		if run.FormURL == formURL && run.Produced == 4 {
			found = true
			assert.Equal(t, models.RunCompleted, run.Status)
			assert.Equal(t, string(runner.SpeedAggressive), run.Speed)
		}
	}
	assert.True(t, found, "stored run not returned by history")

	t.Log("formqa pipeline completed against live services")
}

func TestE2E_StopPersistsPartialRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, rdb, pg := connectServices(t)
	host := newFormHost(t)

	r, store := buildRunner(t, cfg, rdb, pg)
	r.OnProgress(func(ev models.ProgressEvent) {
		if ev.Index == 2 {
			r.Stop()
		}
	})

	result, err := r.Run(ctx, runner.Request{
		FormURL: host.srv.URL + formPath,
		Count:   50,
		Speed:   runner.SpeedAggressive,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RunStopped, result.Summary.Status)
	assert.Equal(t, 2, result.Summary.Produced)
	assert.Len(t, result.Records, 2)

	runs, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.RunStopped, runs[0].Status)
	assert.Equal(t, 50, runs[0].Requested)
}
