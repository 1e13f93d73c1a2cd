package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/discovery"
	"github.com/roach88/rvcomply/internal/ir"
)

// DiscoverOptions holds flags for the discover command.
type DiscoverOptions struct {
	*RootOptions
	Classes []string
}

// DiscoverResult is the JSON payload of the discover command.
type DiscoverResult struct {
	Tests   []ir.TestDescriptor `json:"tests"`
	Skipped []SkippedTest       `json:"skipped"`
}

// SkippedTest is a test dropped during discovery and why.
type SkippedTest struct {
	Class  string `json:"class"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiscoverOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the tests that would run",
		Long: `Discover the compliance tests without running them.

Prints each test with the addresses extracted from its disassembly
listing, then the tests that were dropped and why.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Classes, "class", nil, "test class to list (repeatable, default all)")

	return cmd
}

func runDiscover(cmd *cobra.Command, opts *DiscoverOptions) error {
	cfg, err := opts.LoadConfig(cmd)
	if err != nil {
		return opts.configError(cmd, err)
	}

	found, err := loadTests(commandContext(cmd), cfg, opts.Classes, opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	result := newDiscoverResult(found)
	return opts.formatter(cmd).Render(result, func(w io.Writer) {
		printDiscovered(w, result)
	})
}

func newDiscoverResult(found *discovery.Report) DiscoverResult {
	result := DiscoverResult{
		Tests:   found.Tests,
		Skipped: make([]SkippedTest, 0, len(found.Skipped)),
	}
	if result.Tests == nil {
		result.Tests = []ir.TestDescriptor{}
	}
	for _, s := range found.Skipped {
		result.Skipped = append(result.Skipped, SkippedTest{Class: s.Class, Name: s.Name, Reason: s.Reason()})
	}
	return result
}

func printDiscovered(w io.Writer, result DiscoverResult) {
	fmt.Fprintf(w, "%-8s %-24s %10s %10s %10s %10s\n", "Class", "Test", "End", "SigBegin", "SigEnd", "RegState")
	for _, t := range result.Tests {
		fmt.Fprintf(w, "%-8s %-24s %#010x %#010x %#010x %#010x\n",
			t.TestClass, t.Name, t.EndAddress, t.SignatureBegin, t.SignatureEnd, t.RegisterState)
	}
	fmt.Fprintf(w, "\n%d tests, %d skipped\n", len(result.Tests), len(result.Skipped))
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  skipped %s/%s: %s\n", s.Class, s.Name, s.Reason)
	}
}
