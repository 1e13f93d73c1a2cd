package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/harness"
	"github.com/roach88/rvcomply/internal/store"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Database string
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <run-a> <run-b>",
		Short: "Show tests whose status changed between two runs",
		Long: `Compare two recorded runs and list every test whose classification
differs, including tests only present in one of them.

Two runs over the same tests that classify everything the same way have
the same fingerprint and are reported as identical.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "run history database (overrides config)")

	return cmd
}

func runCompare(cmd *cobra.Command, opts *CompareOptions, a, b string) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(cmd, opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	result, err := st.Compare(commandContext(cmd), a, b)
	if errors.Is(err, store.ErrRunNotFound) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "run not found", err)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStore, "failed to compare runs", err)
	}

	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "before: %s  %s\n", result.Before.ID, harness.SummaryLine(result.Before.Summary))
		fmt.Fprintf(w, "after:  %s  %s\n", result.After.ID, harness.SummaryLine(result.After.Summary))
		if result.Identical() {
			fmt.Fprintln(w, "Classifications are identical.")
			return
		}
		fmt.Fprintln(w)
		for _, c := range result.Changes {
			note := ""
			switch {
			case c.Added:
				note = " (added)"
			case c.Removed:
				note = " (removed)"
			}
			fmt.Fprintf(w, "%-8s %-24s %11s -> %s%s\n", c.TestClass, c.Name, c.Before.Label(), c.After.Label(), note)
		}
		fmt.Fprintf(w, "\n%d changed\n", len(result.Changes))
	})
}
