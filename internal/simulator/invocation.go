package simulator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/rvcomply/internal/ir"
)

// Artifact extensions under the waves directory.
const (
	WavesExt     = ".vcd"
	SignatureExt = ".sig"
	LogExt       = ".log"
)

// Invocation is everything needed to run one test.
type Invocation struct {
	Test     ir.TestDescriptor
	WavesDir string
	Timeout  int

	// Verify is the reference signature passed as +SIG_VERIF. Empty
	// means the simulator runs without verification.
	Verify string
}

// NewInvocation builds the invocation for test. The reference signature is
// attached only if the descriptor names one and it exists on disk.
func NewInvocation(test ir.TestDescriptor, wavesDir string, timeout int) Invocation {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	inv := Invocation{Test: test, WavesDir: wavesDir, Timeout: timeout}
	if test.SignaturePath != "" {
		if info, err := os.Stat(test.SignaturePath); err == nil && !info.IsDir() {
			inv.Verify = test.SignaturePath
		}
	}
	return inv
}

// Dir is the per-class output directory, <waves>/<class>.
func (i Invocation) Dir() string {
	return filepath.Join(i.WavesDir, i.Test.TestClass)
}

// WavesPath is where the simulator dumps its waveform.
func (i Invocation) WavesPath() string {
	return i.Test.ArtifactPath(i.WavesDir, WavesExt)
}

// SignaturePath is where the simulator writes the signature it produced.
func (i Invocation) SignaturePath() string {
	return i.Test.ArtifactPath(i.WavesDir, SignatureExt)
}

// LogPath is where the harness writes the captured output.
func (i Invocation) LogPath() string {
	return i.Test.ArtifactPath(i.WavesDir, LogExt)
}

// Args returns the simulator plusargs in their fixed order.
func (i Invocation) Args() []string {
	t := i.Test
	args := []string{
		"+IMEM=" + t.SourcePath,
		fmt.Sprintf("+PASS_ADDR=%#x", t.EndAddress),
		"+WAVES=" + i.WavesPath(),
		fmt.Sprintf("+TIMEOUT=%d", i.Timeout),
		fmt.Sprintf("+SIG_START=%#x", t.SignatureBegin),
		fmt.Sprintf("+SIG_END=%#x", t.SignatureEnd),
		fmt.Sprintf("+REG_ADDR=%#x", t.RegisterState),
		"+SIG_PATH=" + i.SignaturePath(),
	}
	if i.Verify != "" {
		args = append(args, "+SIG_VERIF="+i.Verify)
	}
	return args
}
