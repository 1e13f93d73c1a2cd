package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/config"
	"github.com/roach88/rvcomply/internal/discovery"
	"github.com/roach88/rvcomply/internal/harness"
	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/simulator"
	"github.com/roach88/rvcomply/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Classes   []string
	Filter    string
	Database  string
	Supervise time.Duration
	Commands  bool
	NoColor   bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the compliance suite against the simulator",
		Long: `Discover the compliance tests, run each one through the simulator and
print a pass/fail summary.

Each test's simulator output is written to <waves_dir>/<class>/<name>.log.
The exit code is the number of failures and timeouts that are not on the
expected-failure list, so 0 means the core is compliant.

Examples:
  rvcomply run
  rvcomply run --class rv32im --filter 'DIV*'
  rvcomply run --db runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Classes, "class", nil, "test class to run (repeatable, default all)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run tests whose name matches this glob")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database (overrides config)")
	cmd.Flags().DurationVar(&opts.Supervise, "supervise", 0, "kill the simulator after this wall-clock time (overrides config)")
	cmd.Flags().BoolVar(&opts.Commands, "commands", false, "show the simulator command for each test")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured status labels")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd)

	if opts.Filter != "" {
		if _, err := path.Match(opts.Filter, ""); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("invalid filter %q", opts.Filter), err)
		}
	}

	cfg, err := opts.LoadConfig(cmd)
	if err != nil {
		return opts.configError(cmd, err)
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = opts.Database
	}
	if cmd.Flags().Changed("supervise") {
		cfg.Supervise = opts.Supervise
	}

	driver, err := simulator.Discover(cfg.SimulatorConfig())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeSimulator, "simulator not found", err)
	}
	formatter.VerboseLog("Using simulator: %s", driver.Path())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	found, err := loadTests(ctx, cfg, opts.Classes, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	tests := filterTests(found.Tests, opts.Filter)
	formatter.VerboseLog("Discovered %d tests (%d skipped)", len(tests), len(found.Skipped))

	runner := &harness.Runner{
		Driver:       driver,
		Expected:     cfg.Expected(),
		WavesDir:     cfg.WavesDir,
		Timeout:      cfg.Timeout,
		ShowCommands: opts.Commands,
		Logger:       logger,
	}

	// In JSON mode stdout carries only the report; the table goes to stderr.
	runner.Out = cmd.OutOrStdout()
	if opts.Format == "json" {
		runner.Out = cmd.ErrOrStderr()
	}
	runner.Color = !opts.NoColor && harness.ColorEnabled(runner.Out)

	if cfg.Database != "" {
		st, err := store.Open(cfg.Database)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer st.Close()
		runner.Store = st
	}

	report, err := runner.Run(ctx, tests)
	if err != nil {
		if ctx.Err() != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, "run interrupted", err)
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "run aborted", err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	}
	if cfg.Database != "" {
		formatter.VerboseLog("Recorded run %s in %s", report.RunID, cfg.Database)
	}

	if code := SummaryExitCode(report.Summary); code != ExitSuccess {
		return NewExitError(code, fmt.Sprintf("%d genuine failures", report.Summary.ExitStatus()))
	}
	return nil
}

// filterTests keeps the tests whose name matches the glob. An empty
// pattern keeps everything. The pattern must already be valid.
func filterTests(tests []ir.TestDescriptor, pattern string) []ir.TestDescriptor {
	if pattern == "" {
		return tests
	}
	var out []ir.TestDescriptor
	for _, t := range tests {
		if ok, _ := path.Match(pattern, t.Name); ok {
			out = append(out, t)
		}
	}
	return out
}

// loadTests discovers the configured classes, or only the named ones.
func loadTests(ctx context.Context, cfg *config.Config, names []string, opts *RootOptions, cmd *cobra.Command) (*discovery.Report, error) {
	classes, err := cfg.SelectClasses(names)
	if err != nil {
		return nil, opts.configError(cmd, err)
	}
	found, err := discovery.LoadAll(ctx, classes, opts.Logger(cmd))
	if err != nil {
		return nil, opts.formatter(cmd).fail(ExitCommandError, ErrCodeDiscovery, "test discovery failed", err)
	}
	return found, nil
}
