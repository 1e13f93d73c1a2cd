package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the rvcomply configuration",
	}

	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigValidateCommand(rootOpts))

	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default layout",
		Long: `Write rvcomply.yaml populated with the default layout of a core
checkout: the verilated simulator under work/, the compliance suite under
external/riscv-compliance and the standard expected-failure list.

Use --output - to print the file instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cfg := config.Default()

			if output == "-" {
				if err := config.Write(cmd.OutOrStdout(), cfg); err != nil {
					return formatter.fail(ExitCommandError, ErrCodeGeneric, "failed to render config", err)
				}
				return nil
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(output, flags, 0644)
			if errors.Is(err, os.ErrExist) {
				return formatter.fail(ExitCommandError, ErrCodeConfig,
					fmt.Sprintf("%s already exists (use --force to overwrite)", output), nil)
			}
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to create config", err)
			}
			if err := config.Write(f, cfg); err != nil {
				f.Close()
				return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to write config", err)
			}
			if err := f.Close(); err != nil {
				return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to write config", err)
			}

			return formatter.Render(map[string]string{"path": output}, func(w io.Writer) {
				fmt.Fprintf(w, "Wrote %s\n", output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.FileName, "file to write, or - for stdout")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration against the schema",
		Long: `Load the configuration exactly as "rvcomply run" would (file, then
RVCOMPLY_* environment overrides, then the expected-fails file) and report
every schema violation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			cfg, err := rootOpts.LoadConfig(cmd)
			var invalid *config.ValidationError
			if errors.As(err, &invalid) {
				if outErr := formatter.Error(ErrCodeConfig, "invalid config", invalid.Problems); outErr != nil {
					return outErr
				}
				if rootOpts.Format != "json" {
					for _, p := range invalid.Problems {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
					}
				}
				return WrapExitError(ExitCommandError, "invalid config", err)
			}
			if err != nil {
				return rootOpts.configError(cmd, err)
			}

			path := config.Locate(rootOpts.ConfigFile)
			return formatter.Render(cfg, func(w io.Writer) {
				if path == "" {
					fmt.Fprintln(w, "No config file found; defaults are valid.")
					return
				}
				fmt.Fprintf(w, "%s is valid (%d classes, %d expected failures)\n",
					path, len(cfg.Classes), len(cfg.ExpectedFails))
			})
		},
	}
}
