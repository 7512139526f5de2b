// internal/cli/run.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/validation"
	"formqa/internal/models"
	"formqa/internal/runner"
	exportrecords "formqa/internal/workers/export/export-records"
	"formqa/pkg/schemafile"

	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	FormURL    string
	SchemaPath string
	SinkURL    string
	Count      int
	Speed      string
	Seed       uint64
	JSONOut    string
	CSVOut     string
	Store      bool
	Notify     bool
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate synthetic records and deliver them",
		Long: `Generate synthetic records for a form and deliver them best-effort.

The schema comes from --schema, or is extracted once from --form. Records are
submitted to the form when fields carry entry keys and posted to --sink as JSON.
Ctrl-C stops after the current record; a second Ctrl-C aborts waits.

Example:
  formqa run --form https://docs.google.com/forms/d/e/<id>/viewform --count 20 --speed conservative
  formqa run --schema schema.json --sink https://script.google.com/macros/s/<id>/exec --csv out.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.FormURL, "form", "", "public form URL")
	cmd.Flags().StringVar(&opts.SchemaPath, "schema", "", "schema file written by analyze or by hand")
	cmd.Flags().StringVar(&opts.SinkURL, "sink", "", "JSON sink endpoint")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "records to generate (default: run.count)")
	cmd.Flags().StringVar(&opts.Speed, "speed", "", "conservative|balanced|aggressive (default: run.speed)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "generator seed for reproducible records (0: random)")
	cmd.Flags().StringVar(&opts.JSONOut, "json", "", "export records as JSON to this file")
	cmd.Flags().StringVar(&opts.CSVOut, "csv", "", "export records as CSV to this file")
	cmd.Flags().BoolVar(&opts.Store, "store", false, "persist the run to PostgreSQL")
	cmd.Flags().BoolVar(&opts.Notify, "notify", false, "publish the run summary to SNS")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *RunOptions) error {
	if opts.FormURL == "" && opts.SchemaPath == "" {
		return fmt.Errorf("either --form or --schema is required")
	}
	if opts.SinkURL != "" && !validation.ValidateURL(opts.SinkURL) {
		return fmt.Errorf("--sink must be an absolute http(s) URL: %w",
			apperrors.NewInvalidTargetURLError(opts.SinkURL, "not an http(s) URL"))
	}

	a, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()
	a.serveMetrics()

	speed, err := runner.ParseSpeed(firstNonEmpty(opts.Speed, a.cfg.Run.Speed))
	if err != nil {
		return err
	}
	count := opts.Count
	if count == 0 {
		count = a.cfg.Run.Count
	}
	if count < 1 || count > a.cfg.Run.MaxCount {
		return fmt.Errorf("--count must be between 1 and %d", a.cfg.Run.MaxCount)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := a.pipeline(ctx, opts.Seed)
	components := p.components(a.obs)

	if opts.Store || a.cfg.Store.Enabled {
		store, err := a.store(ctx)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		components.Store = store
	}
	if opts.Notify || a.cfg.Notifications.SNS.Enabled {
		notifier, err := a.notifier(ctx)
		if err != nil {
			return fmt.Errorf("create notifier: %w", err)
		}
		components.Notifier = notifier
	}

	r := runner.New(runner.FromConfig(a.cfg.Run), components, a.log)
	stopOnSignal(ctx, r, cancel, cmd.ErrOrStderr())

	var fields []models.FieldDescriptor
	if opts.SchemaPath != "" {
		file, err := schemafile.Load(opts.SchemaPath)
		if err != nil {
			return a.describe("load schema", err)
		}
		fields = file.Fields
	} else {
		fields, err = r.Analyze(ctx, opts.FormURL)
		if err != nil {
			return a.describe("analyze", err)
		}
	}

	if opts.SinkURL != "" && a.cfg.Run.ValidateSink {
		v, err := validation.NewRecordValidator(fields)
		if err != nil {
			return err
		}
		p.sink.WithValidator(v)
	}

	out := cmd.ErrOrStderr()
	r.OnProgress(func(ev models.ProgressEvent) {
		fmt.Fprintf(out, "[%d/%d] %3.0f%% %s (%s)\n", ev.Index, ev.Total, ev.Percent, ev.Message, ev.RecordID)
	})

	res, err := r.Run(ctx, runner.Request{
		FormURL: opts.FormURL,
		SinkURL: opts.SinkURL,
		Count:   count,
		Speed:   speed,
		Fields:  fields,
	})
	if err != nil {
		return a.describe("run", err)
	}

	exporter := exportrecords.NewHandler(exportrecords.LoadConfig(), a.log)
	for format, path := range map[exportrecords.Format]string{exportrecords.FormatJSON: opts.JSONOut, exportrecords.FormatCSV: opts.CSVOut} {
		if path == "" {
			continue
		}
		if _, err := exporter.Execute(context.WithoutCancel(ctx), &exportrecords.Input{
			Format:  format,
			Path:    path,
			Records: res.Records,
			Fields:  res.Fields,
		}); err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
	}

	printSummary(cmd.OutOrStdout(), res)
	return nil
}

// stopOnSignal stops the run cooperatively on the first signal and cancels waits on the second.
func stopOnSignal(ctx context.Context, r *runner.Runner, cancel context.CancelFunc, out io.Writer) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			fmt.Fprintln(out, "stopping after the current record...")
			r.Stop()
		case <-ctx.Done():
			return
		}
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
}

func printSummary(w io.Writer, res *runner.Result) {
	s := res.Summary
	fmt.Fprintf(w, "run %s %s: %d/%d records in %s\n", s.RunID, s.Status, s.Produced, s.Requested, s.Duration().Round(time.Millisecond))
	if s.FormURL != "" {
		fmt.Fprintf(w, "  form: %d submitted, %d failed\n", s.Submitted, s.Failed)
	}
	if s.SinkURL != "" {
		fmt.Fprintf(w, "  sink: %d delivered, %d failed\n", s.SinkDelivered, s.SinkFailed)
	}

	for _, t := range exportrecords.Distribution(res.Records, res.Fields) {
		keys := make([]string, 0, len(t.Counts))
		for k := range t.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "  %s:", t.Label)
		for _, k := range keys {
			fmt.Fprintf(w, " %s=%d", k, t.Counts[k])
		}
		fmt.Fprintln(w)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
