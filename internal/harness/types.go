package harness

import (
	"time"

	"github.com/roach88/rvcomply/internal/classify"
	"github.com/roach88/rvcomply/internal/ir"
)

// Outcome is the result of running one test.
type Outcome struct {
	Test    ir.TestDescriptor `json:"test"`
	Verdict classify.Verdict  `json:"verdict"`

	// LogPath is where the captured simulator output was written.
	LogPath string `json:"log_path"`

	// Command is the full simulator command line.
	Command string `json:"command"`

	// Verified is true when +SIG_VERIF was passed.
	Verified bool `json:"verified"`

	Duration time.Duration `json:"duration"`
	ExitCode int           `json:"exit_code"`

	// ProcessErr describes a non-zero simulator exit. Empty on a clean exit.
	ProcessErr string `json:"process_error,omitempty"`

	// Supervised is true when the harness killed the simulator.
	Supervised bool `json:"supervised,omitempty"`

	// OutputHash is ir.OutputHash of the captured output.
	OutputHash string `json:"output_hash"`
}

// Report is the result of one harness run.
type Report struct {
	RunID      string     `json:"run_id"`
	Simulator  string     `json:"simulator,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Outcomes   []Outcome  `json:"outcomes"`
	Summary    ir.Summary `json:"summary"`
}

// Classifications returns the (class, name, status) triples of the run.
func (r *Report) Classifications() []ir.Classification {
	out := make([]ir.Classification, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = ir.Classification{TestClass: o.Test.TestClass, Name: o.Test.Name, Status: o.Verdict.Status}
	}
	return out
}

// Fingerprint identifies the run's classification outcome. See
// ir.Fingerprint.
func (r *Report) Fingerprint() (string, error) {
	return ir.Fingerprint(r.Classifications())
}
