package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/logger"
	"formqa/internal/models"
	"formqa/internal/runner"
	generaterecord "formqa/internal/workers/generation/generate-record"
	"formqa/pkg/schemafile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
logging:
  level: error
run:
  jitter_ms: 1
  sink_only_pause_ms: 1
  simulate_pause_ms: 1
  submit_timeout: 2000
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func writeTestSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, schemafile.Save(path, []models.FieldDescriptor{
		{ID: "field_1", Label: "Branch", Type: models.FieldSingleSelect, Options: []string{"CSE", "ECE"}},
		{ID: "field_2", Label: "Email Address", Type: models.FieldEmail},
	}, ""))
	return path
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// ==========================
// Command Tree Tests
// ==========================

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"analyze", "run", "history", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for _, flag := range []string{"form", "schema", "sink", "count", "speed", "seed", "json", "csv", "store", "notify"} {
		assert.NotNil(t, runCmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "n", runCmd.Flags().Lookup("count").Shorthand)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "formqa dev\n", stdout)
}

// ==========================
// Run Command Tests
// ==========================

func TestRunCommand_RequiresSource(t *testing.T) {
	_, _, err := executeCommand(t, "run", "--config", writeTestConfig(t))
	assert.ErrorContains(t, err, "either --form or --schema is required")
}

func TestRunCommand_SchemaToSink(t *testing.T) {
	var mu sync.Mutex
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		if json.Unmarshal(data, &payload) == nil {
			mu.Lock()
			bodies = append(bodies, payload)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	outDir := t.TempDir()
	jsonOut := filepath.Join(outDir, "records.json")
	csvOut := filepath.Join(outDir, "records.csv")

	stdout, stderr, err := executeCommand(t, "run",
		"--config", writeTestConfig(t),
		"--schema", writeTestSchema(t),
		"--sink", srv.URL,
		"--count", "3",
		"--speed", "aggressive",
		"--seed", "7",
		"--json", jsonOut,
		"--csv", csvOut,
	)

	require.NoError(t, err)
	assert.Contains(t, stdout, "completed: 3/3 records")
	assert.Contains(t, stdout, "sink: 3 delivered, 0 failed")
	assert.Contains(t, stderr, "[3/3] 100%")

	mu.Lock()
	assert.Len(t, bodies, 3)
	for _, b := range bodies {
		assert.Contains(t, []interface{}{"CSE", "ECE"}, b["field_1"])
	}
	mu.Unlock()

	var exported []models.GeneratedRecord
	data, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Len(t, exported, 3)

	csv, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csv, []byte("\"Branch\",\"Email Address\"\n")))
}

func TestRunCommand_RejectsBadSinkURL(t *testing.T) {
	for _, sink := range []string{"ftp://example.com/upload", "script.google.com/macros/s/abc/exec"} {
		t.Run(sink, func(t *testing.T) {
			_, _, err := executeCommand(t, "run", "--config", writeTestConfig(t), "--schema", writeTestSchema(t), "--sink", sink)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidTargetURL))
			assert.ErrorContains(t, err, "--sink must be an absolute http(s) URL")
		})
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStopOnSignal_StopsRunNotYetStarted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := runner.New(runner.LoadConfig(), runner.Components{
		Generator: generaterecord.NewHandler(generaterecord.LoadConfig(), logger.NewNoOpLogger()),
	}, logger.NewNoOpLogger())

	var out syncBuffer
	stopOnSignal(ctx, r, cancel, &out)

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(os.Interrupt))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "stopping after the current record")
	}, 2*time.Second, 10*time.Millisecond)

	res, err := r.Run(ctx, runner.Request{
		Count:  5,
		Speed:  runner.SpeedAggressive,
		Fields: []models.FieldDescriptor{{ID: "field_1", Label: "Name", Type: models.FieldShortText}},
	})

	require.NoError(t, err)
	assert.Equal(t, models.RunStopped, res.Summary.Status)
	assert.Empty(t, res.Records)
	assert.NoError(t, ctx.Err())
}

func TestRunCommand_CountOutOfRange(t *testing.T) {
	_, _, err := executeCommand(t, "run", "--config", writeTestConfig(t), "--schema", writeTestSchema(t), "--count", "501")
	assert.ErrorContains(t, err, "--count must be between 1 and 500")
}

func TestRunCommand_BadSchemaShowsHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","fields":[{"id":"a"}]}`), 0o600))

	_, _, err := executeCommand(t, "run", "--config", writeTestConfig(t), "--schema", path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidSchema))
	assert.Contains(t, err.Error(), "hint:")
}

// ==========================
// Output Tests
// ==========================

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printFields(&buf, []models.FieldDescriptor{
		{ID: "field_1", Label: "Branch", Type: models.FieldSingleSelect, Options: []string{"CSE", "ECE"}, ExternalKey: "1"},
		{ID: "field_q1", Label: "Notes", Type: models.FieldLongText},
	}))

	out := buf.String()
	assert.Contains(t, out, "CSE | ECE")
	assert.Contains(t, out, "2 fields")
	assert.Regexp(t, `field_q1\s+long-text\s+-\s+Notes`, out)
}

func TestPrintSummary(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res := &runner.Result{
		Summary: models.RunSummary{
			RunID:      "run-1",
			FormURL:    "https://docs.google.com/forms/d/e/XYZ/viewform",
			Requested:  2,
			Produced:   2,
			Submitted:  1,
			Failed:     1,
			Status:     models.RunCompleted,
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
		},
		Fields:  []models.FieldDescriptor{{ID: "f", Label: "Rating", Type: models.FieldLinearScale}},
		Records: []models.GeneratedRecord{
			{ID: "a", Values: map[string]any{"f": 4}},
			{ID: "b", Values: map[string]any{"f": 2}},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, res)

	assert.Equal(t, "run run-1 completed: 2/2 records in 1.5s\n"+
		"  form: 1 submitted, 1 failed\n"+
		"  Rating: 2=1 4=1\n", buf.String())
}

// ==========================
// Helper Tests
// ==========================

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond, logger.NewTestLogger(t), "ping")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = retryWithBackoff(context.Background(), func() error { return errors.New("down") }, 2, time.Millisecond, logger.NewTestLogger(t), "ping")
	assert.ErrorContains(t, err, "ping failed after 2 attempts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retryWithBackoff(ctx, func() error { return errors.New("down") }, 5, time.Hour, logger.NewTestLogger(t), "ping")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}
