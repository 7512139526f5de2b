// internal/cli/analyze.go
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"formqa/internal/models"
	"formqa/internal/runner"
	"formqa/pkg/schemafile"

	"github.com/spf13/cobra"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Out string
}

func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <form-url>",
		Short: "Fetch a public form and print its field schema",
		Long: `Fetch a public form through the relay list and extract its field schema.

Example:
  formqa analyze https://docs.google.com/forms/d/e/<id>/viewform
  formqa analyze https://docs.google.com/forms/d/e/<id>/viewform --out schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the schema to this file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions, formURL string) error {
	a, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	p := a.pipeline(ctx, 0)
	r := runner.New(runner.LoadConfig(), p.components(a.obs), a.log)

	fields, err := r.Analyze(ctx, formURL)
	if err != nil {
		return a.describe("analyze", err)
	}

	if err := printFields(cmd.OutOrStdout(), fields); err != nil {
		return err
	}
	if opts.Out != "" {
		if err := schemafile.Save(opts.Out, fields, formURL); err != nil {
			return fmt.Errorf("save schema: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "schema written to %s\n", opts.Out)
	}
	return nil
}

func printFields(w io.Writer, fields []models.FieldDescriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tENTRY\tLABEL\tOPTIONS")
	for _, f := range fields {
		entry := f.ExternalKey
		if entry == "" {
			entry = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Type, entry, f.Label, strings.Join(f.Options, " | "))
	}
	fmt.Fprintf(tw, "\n%d fields\n", len(fields))
	return tw.Flush()
}
