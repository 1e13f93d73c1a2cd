package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/harness"
	"github.com/roach88/rvcomply/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the runs recorded in the run history database, newest first.

Runs are recorded by "rvcomply run" when a database is configured or
passed with --db.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "run history database (overrides config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	st, err := openStore(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), opts.Limit)
	if err != nil {
		return opts.formatter(cmd).fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	return opts.formatter(cmd).Render(runs, func(w io.Writer) {
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs recorded.")
			return
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-8s  %s\n", "Run", "Started", "Duration", "Summary")
		for _, r := range runs {
			fmt.Fprintf(w, "%-36s  %-20s  %-8s  %s\n",
				r.ID,
				r.StartedAt.Local().Format(time.DateTime),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
				harness.SummaryLine(r.Summary),
			)
		}
	})
}

// openStore opens the database named by flag, falling back to the config.
func openStore(cmd *cobra.Command, opts *RootOptions, flag string) (*store.Store, error) {
	path := flag
	if path == "" {
		cfg, err := opts.LoadConfig(cmd)
		if err != nil {
			return nil, opts.configError(cmd, err)
		}
		path = cfg.Database
	}
	if path == "" {
		return nil, opts.formatter(cmd).fail(ExitCommandError, ErrCodeConfig,
			"no run history database: set database in the config or pass --db", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, opts.formatter(cmd).fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}
