// Package classify turns captured simulator output into a test status.
//
// Classification is a pure function of the output text, the test name and
// an explicit expected-failure set. Markers are checked in priority order,
// so output containing both ">> SIM PASS" and ">> SIM FAIL" is a pass.
package classify

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/roach88/rvcomply/internal/ir"
)

// Simulator output markers, highest priority first.
const (
	MarkerPass          = ">> SIM PASS"
	MarkerSignatureFail = ">> SIG FAIL"
	MarkerSimFail       = ">> SIM FAIL"
	MarkerTimeout       = ">> TIMEOUT"
)

var markers = []struct {
	text   string
	status ir.Status
}{
	{MarkerPass, ir.Pass},
	{MarkerSignatureFail, ir.SignatureFail},
	{MarkerSimFail, ir.SimFail},
	{MarkerTimeout, ir.Timeout},
}

// Rule names the decision that produced a Verdict's final status.
type Rule string

const (
	// RuleAsIs keeps the raw status.
	RuleAsIs Rule = "as-is"

	// RuleExpectedOverride refines SimFail or Timeout to its expected form.
	RuleExpectedOverride Rule = "expected-override"

	// RuleSignatureNeverExpected applies to a SignatureFail on a test that
	// is on the expected list. A signature mismatch is always genuine.
	RuleSignatureNeverExpected Rule = "signature-never-expected"
)

// Verdict is the result of classifying one test's output.
type Verdict struct {
	Raw    ir.Status `json:"raw"`
	Status ir.Status `json:"status"`
	Rule   Rule      `json:"rule"`
}

// Raw returns the status indicated by the first marker found in output.
// Output with no marker is Unknown.
func Raw(output string) ir.Status {
	for _, m := range markers {
		if strings.Contains(output, m.text) {
			return m.status
		}
	}
	return ir.Unknown
}

// Classify classifies output for the named test.
func Classify(output, name string, expected ExpectedFailures) Verdict {
	return refine(Raw(output), name, expected)
}

// ClassifySupervised is Classify for a run the harness had to kill. If
// the simulator printed no marker before it was killed, the run counts as
// a timeout.
func ClassifySupervised(output, name string, expected ExpectedFailures, killed bool) Verdict {
	raw := Raw(output)
	if killed && raw == ir.Unknown {
		raw = ir.Timeout
	}
	return refine(raw, name, expected)
}

func refine(raw ir.Status, name string, expected ExpectedFailures) Verdict {
	v := Verdict{Raw: raw, Status: raw, Rule: RuleAsIs}
	if !expected.Contains(name) {
		return v
	}

	switch raw {
	case ir.SimFail:
		v.Status, v.Rule = ir.ExpectedFail, RuleExpectedOverride
	case ir.Timeout:
		v.Status, v.Rule = ir.ExpectedTimeout, RuleExpectedOverride
	case ir.SignatureFail:
		v.Rule = RuleSignatureNeverExpected
	}
	return v
}

// ExpectedFailures is a set of test names known to fail on the core under
// test. The zero value is an empty set.
type ExpectedFailures map[string]struct{}

// NewExpectedFailures builds a set from names. Blank names are ignored.
func NewExpectedFailures(names ...string) ExpectedFailures {
	set := make(ExpectedFailures, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// DefaultExpectedFailures returns the tests the reference core is known to
// fail: it traps on misaligned jumps and loads/stores.
func DefaultExpectedFailures() ExpectedFailures {
	return NewExpectedFailures("I-MISALIGN_JMP-01", "I-MISALIGN_LDST-01")
}

// Contains reports whether name is in the set.
func (e ExpectedFailures) Contains(name string) bool {
	_, ok := e[name]
	return ok
}

// Names returns the set's members, sorted.
func (e ExpectedFailures) Names() []string {
	names := maps.Keys(e)
	slices.Sort(names)
	return names
}

// Len is the number of names in the set.
func (e ExpectedFailures) Len() int {
	return len(e)
}
