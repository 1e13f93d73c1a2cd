package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/rvcomply/internal/objdump"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <listing>",
		Short: "Print the addresses extracted from an objdump listing",
		Long: `Read one objdump disassembly listing and print the four addresses the
simulator is given: the end-of-test address (with its offset applied), the
signature region bounds and the register-state dump address.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)

			addrs, err := objdump.ExtractFile(args[0])
			if errors.Is(err, fs.ErrNotExist) {
				return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("listing not found: %s", args[0]), err)
			}
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeExtract, "failed to extract addresses", err)
			}

			return formatter.Render(addrs, func(w io.Writer) {
				fmt.Fprintf(w, "end_address     %#x\n", addrs.EndAddress)
				fmt.Fprintf(w, "signature_begin %#x\n", addrs.SignatureBegin)
				fmt.Fprintf(w, "signature_end   %#x\n", addrs.SignatureEnd)
				fmt.Fprintf(w, "register_state  %#x\n", addrs.RegisterState)
			})
		},
	}
}
