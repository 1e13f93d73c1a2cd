package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/rvcomply/internal/classify"
	"github.com/roach88/rvcomply/internal/harness"
	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestOutcome creates an outcome with minimal required fields.
func createTestOutcome(class, name string, raw, status ir.Status) harness.Outcome {
	rule := classify.RuleAsIs
	if raw != status {
		rule = classify.RuleExpectedOverride
	}
	return harness.Outcome{
		Test:       ir.NewTestDescriptor("images/"+name+".elf.srec", name, class, ir.Addresses{EndAddress: 0x800000fc}),
		Verdict:    classify.Verdict{Raw: raw, Status: status, Rule: rule},
		LogPath:    filepath.Join("waves", class, name+".log"),
		Duration:   1500 * time.Millisecond,
		OutputHash: ir.OutputHash(name),
	}
}

// createTestReport builds a report from outcomes, filling in the summary.
func createTestReport(id string, startOffset time.Duration, outcomes ...harness.Outcome) *harness.Report {
	r := &harness.Report{
		RunID:      id,
		Simulator:  "verilated-frv_core",
		StartedAt:  testutil.Epoch.Add(startOffset),
		FinishedAt: testutil.Epoch.Add(startOffset + time.Minute),
		Outcomes:   outcomes,
	}
	for _, o := range outcomes {
		r.Summary.Add(o.Verdict.Status)
	}
	return r
}
