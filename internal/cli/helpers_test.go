package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rvcomply/internal/testutil"
)

// suiteListing gives every fixture test the same addresses; the end
// address resolves to 0x800000fc.
var suiteListing = testutil.Listing(0x80000100, 0x80002000, 0x80002010, 0x80002020)

// writeSuite lays out one rv32i class under dir with canned simulator
// output for the fake simulator:
//
//	I-ADD-01          passes
//	I-BROKEN-01       has no listing and is skipped
//	I-MISALIGN_JMP-01 fails, and is on the expected list
//	I-SUB-01          fails with exit status 1
func writeSuite(t *testing.T, dir string) {
	t.Helper()
	testutil.WriteTree(t, dir, fmt.Sprintf(`
-- images/rv32i/I-ADD-01.elf.srec --
S00600004844521B
-- images/rv32i/I-ADD-01.elf.srec.out --
>> SIM PASS
-- listings/rv32i/I-ADD-01.elf.objdump --
%[1]s
-- images/rv32i/I-BROKEN-01.elf.srec --
S00600004844521B
-- images/rv32i/I-MISALIGN_JMP-01.elf.srec --
S00600004844521B
-- images/rv32i/I-MISALIGN_JMP-01.elf.srec.out --
>> SIM FAIL
-- listings/rv32i/I-MISALIGN_JMP-01.elf.objdump --
%[1]s
-- images/rv32i/I-SUB-01.elf.srec --
S00600004844521B
-- images/rv32i/I-SUB-01.elf.srec.out --
>> SIM FAIL
-- images/rv32i/I-SUB-01.elf.srec.exit --
1
-- listings/rv32i/I-SUB-01.elf.objdump --
%[1]s
`, suiteListing))
}

// writeConfig writes rvcomply.yaml for the suite in dir and returns its
// path. An empty sim points at a simulator that does not exist.
func writeConfig(t *testing.T, dir, sim string) string {
	t.Helper()
	if sim == "" {
		sim = filepath.Join(dir, "no-such-simulator")
	}
	return writeConfigYAML(t, dir, fmt.Sprintf(`simulator: %q
waves_dir: %q
timeout: 5000
expected_fails: [I-MISALIGN_JMP-01]
classes:
  - name: rv32i
    images: %q
    listings: %q
`, sim, filepath.Join(dir, "waves"), filepath.Join(dir, "images", "rv32i"), filepath.Join(dir, "listings", "rv32i")))
}

func writeConfigYAML(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "rvcomply.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs a subcommand the way the root would, returning what it
// wrote to stdout and stderr.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
