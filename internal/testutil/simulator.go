package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeSimulator stands in for the verilated core. It echoes its
// arguments, then replays the canned output stored next to the memory
// image:
//
//	<image>.out    printed verbatim (the marker lines)
//	<image>.exit   process exit status
//	<image>.sleep  seconds to sleep before printing, for supervision tests
const fakeSimulator = `#!/bin/sh
image=""
for arg in "$@"; do
	echo "arg $arg"
	case "$arg" in
		+IMEM=*) image="${arg#+IMEM=}" ;;
	esac
done
if [ -f "$image.sleep" ]; then
	sleep "$(cat "$image.sleep")"
fi
if [ -f "$image.out" ]; then
	cat "$image.out"
fi
status=0
if [ -f "$image.exit" ]; then
	status="$(cat "$image.exit")"
fi
exit "$status"
`

// FakeSimulator writes the canned simulator script into a temp directory
// and returns its path. Tests using it are skipped on Windows.
func FakeSimulator(t *testing.T) string {
	t.Helper()
	return Script(t, "verilated-frv_core", fakeSimulator)
}

// Script writes an executable /bin/sh script named name and returns its path.
func Script(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script simulator not supported on windows")
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0755); err != nil {
		t.Fatalf("write simulator script: %v", err)
	}
	return path
}
