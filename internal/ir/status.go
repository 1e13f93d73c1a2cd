package ir

import "fmt"

// Status is the state of one test in a run.
//
//	Pending -> Running -> {Pass, SignatureFail, SimFail, Timeout, Unknown}
//
// SimFail and Timeout may be refined to ExpectedFail and ExpectedTimeout
// when the test is on the expected-failure list.
type Status int

const (
	Pending Status = iota
	Running
	Pass
	SignatureFail
	SimFail
	Timeout
	Unknown
	ExpectedFail
	ExpectedTimeout
)

var statusNames = map[Status]string{
	Pending:         "pending",
	Running:         "running",
	Pass:            "pass",
	SignatureFail:   "signature_fail",
	SimFail:         "sim_fail",
	Timeout:         "timeout",
	Unknown:         "unknown",
	ExpectedFail:    "expected_fail",
	ExpectedTimeout: "expected_timeout",
}

var statusLabels = map[Status]string{
	Pending:         "PENDING",
	Running:         "RUNNING",
	Pass:            "PASS",
	SignatureFail:   "SIG FAIL",
	SimFail:         "FAIL",
	Timeout:         "TIMEOUT",
	Unknown:         "Unknown",
	ExpectedFail:    "EXP FAIL",
	ExpectedTimeout: "EXP TIMEOUT",
}

// String returns the snake_case name used in JSON output and the store.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Label returns the console label printed in the progress table.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s.String()
}

// Terminal reports whether s is a final classification.
func (s Status) Terminal() bool {
	return s != Pending && s != Running && s.valid()
}

// Expected reports whether s is one of the expected-failure refinements.
func (s Status) Expected() bool {
	return s == ExpectedFail || s == ExpectedTimeout
}

// Genuine reports whether s counts against compliance.
func (s Status) Genuine() bool {
	return s == SignatureFail || s == SimFail || s == Timeout
}

func (s Status) valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return Unknown, fmt.Errorf("unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
