// Package cli implements the rvcomply command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LogFile    string

	logger  *slog.Logger
	logFile io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rvcomply CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rvcomply",
		Short: "RISC-V compliance test harness",
		Long: `rvcomply runs the riscv-compliance suite against a verilated core.

It discovers compiled tests and their disassembly listings, runs each one
through the simulator, classifies the result from the simulator's output
markers and reports a pass/fail summary. The exit code is the number of
genuine failures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			logger, closer, err := NewLogger(cmd.ErrOrStderr(), opts.Verbose, opts.LogFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open log file", err)
			}
			opts.logger, opts.logFile = logger, closer
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./rvcomply.yaml or $HOME/.rvcomply.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write JSON logs to this file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))
	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewArgsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.Close(); closeErr != nil && err == nil {
		err = WrapExitError(ExitCommandError, "failed to close log file", closeErr)
	}
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code >= ExitCommandError {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// Close releases the log file opened for --log-file, if any.
func (o *RootOptions) Close() error {
	if o.logFile == nil {
		return nil
	}
	err := o.logFile.Close()
	o.logFile = nil
	return err
}

// NewLogger builds the CLI logger: text on w at INFO (DEBUG if verbose),
// fanned out to a JSON log file at DEBUG when logFile is set.
func NewLogger(w io.Writer, verbose bool, logFile string) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	console := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(console), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(slogmulti.Fanout(console, file)), f, nil
}

// Logger returns the configured logger, or a stderr logger when a
// subcommand runs without the root's PersistentPreRunE.
func (o *RootOptions) Logger(cmd *cobra.Command) *slog.Logger {
	if o.logger == nil {
		o.logger, _, _ = NewLogger(cmd.ErrOrStderr(), o.Verbose, "")
	}
	return o.logger
}

// LoadConfig reads and validates the configuration.
func (o *RootOptions) LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := config.Locate(o.ConfigFile)
	if path != "" {
		o.Logger(cmd).Debug("using config file", "path", path)
	}

	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}
	return config.Load(v)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) configError(cmd *cobra.Command, err error) error {
	return o.formatter(cmd).fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// commandContext returns the command's context, or Background when the
// command is executed directly in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
