package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rvcomply/internal/ir"
)

// Snapshot renders the reproducible part of a report as canonical JSON:
// the run ID, every test's classification and the summary. Paths,
// commands and timings are left out since they vary between machines.
func Snapshot(r *Report) ([]byte, error) {
	outcomes := make([]any, len(r.Outcomes))
	for i, o := range r.Outcomes {
		outcomes[i] = map[string]any{
			"class":     o.Test.TestClass,
			"name":      o.Test.Name,
			"raw":       o.Verdict.Raw.String(),
			"status":    o.Verdict.Status.String(),
			"rule":      string(o.Verdict.Rule),
			"verified":  o.Verified,
			"exit_code": o.ExitCode,
		}
	}

	s := r.Summary
	return ir.MarshalCanonical(map[string]any{
		"run_id":   r.RunID,
		"outcomes": outcomes,
		"summary": map[string]any{
			"total":       s.Total,
			"passes":      s.Passes,
			"fails":       s.Fails,
			"timeouts":    s.Timeouts,
			"unknowns":    s.Unknowns,
			"expected":    s.Expected(),
			"exit_status": s.ExitStatus(),
		},
	})
}

// AssertGolden compares data against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// AssertReportGolden snapshots r and compares it against a golden file.
func AssertReportGolden(t *testing.T, name string, r *Report) error {
	t.Helper()

	data, err := Snapshot(r)
	if err != nil {
		return err
	}
	AssertGolden(t, name, data)
	return nil
}
