package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/simulator"
)

// ArgsOptions holds flags for the args command.
type ArgsOptions struct {
	*RootOptions
	Class string
}

// ArgsResult is the JSON payload of the args command.
type ArgsResult struct {
	Test      ir.TestDescriptor `json:"test"`
	Simulator string            `json:"simulator"`
	Args      []string          `json:"args"`
	Command   string            `json:"command"`
}

// NewArgsCommand creates the args command.
func NewArgsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArgsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "args <name>",
		Short: "Print the simulator command for one test",
		Long: `Print the simulator command line for one test without running it.

Useful for re-running a failing test by hand, or under a debugger. When
the same test name exists in more than one class, pick one with --class.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArgs(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Class, "class", "", "test class the test belongs to")

	return cmd
}

func runArgs(cmd *cobra.Command, opts *ArgsOptions, name string) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.LoadConfig(cmd)
	if err != nil {
		return opts.configError(cmd, err)
	}

	var classes []string
	if opts.Class != "" {
		classes = []string{opts.Class}
	}
	found, err := loadTests(commandContext(cmd), cfg, classes, opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	var matches []ir.TestDescriptor
	for _, t := range found.Tests {
		if t.Name == name {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("test not found: %s", name), nil)
	case 1:
	default:
		keys := make([]string, len(matches))
		for i, m := range matches {
			keys[i] = m.Key()
		}
		return formatter.fail(ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("test %s exists in several classes (%s); use --class", name, strings.Join(keys, ", ")), nil)
	}

	// The command is printed even when the simulator has not been built yet.
	simPath := cfg.Simulator
	if driver, err := simulator.Discover(cfg.SimulatorConfig()); err == nil {
		simPath = driver.Path()
	} else {
		opts.Logger(cmd).Debug("simulator not found, printing configured path", "path", cfg.Simulator)
	}

	inv := simulator.NewInvocation(matches[0], cfg.WavesDir, cfg.Timeout)
	result := ArgsResult{
		Test:      matches[0],
		Simulator: simPath,
		Args:      inv.Args(),
		Command:   simPath + " " + strings.Join(inv.Args(), " "),
	}
	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintln(w, result.Command)
	})
}
