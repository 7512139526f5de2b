// internal/cli/history.go
package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs stored in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.store(cmd.Context())
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			runs, err := store.RecentRuns(cmd.Context(), opts.Limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tRECORDS\tSUBMITTED\tFAILED\tFORM")
			for _, s := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
					s.RunID, s.StartedAt.Local().Format(time.DateTime), s.Status,
					s.Produced, s.Requested, s.Submitted, s.Failed+s.SinkFailed, s.FormURL)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "number of runs to show (default 20)")

	return cmd
}
