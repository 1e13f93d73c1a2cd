package ir

// Summary aggregates classification counts across a run.
//
// Fails includes expected failures and Timeouts includes expected
// timeouts, matching the p/f/t/u/ef line the harness prints. ExitStatus
// subtracts the expected refinements back out.
type Summary struct {
	Total            int `json:"total"`
	Passes           int `json:"passes"`
	Fails            int `json:"fails"`
	Timeouts         int `json:"timeouts"`
	Unknowns         int `json:"unknowns"`
	ExpectedFails    int `json:"expected_fails"`
	ExpectedTimeouts int `json:"expected_timeouts"`
}

// Add records one terminal status. Non-terminal statuses are ignored.
func (s *Summary) Add(status Status) {
	if !status.Terminal() {
		return
	}
	s.Total++
	switch status {
	case Pass:
		s.Passes++
	case SignatureFail, SimFail:
		s.Fails++
	case ExpectedFail:
		s.Fails++
		s.ExpectedFails++
	case Timeout:
		s.Timeouts++
	case ExpectedTimeout:
		s.Timeouts++
		s.ExpectedTimeouts++
	case Unknown:
		s.Unknowns++
	}
}

// Expected is the number of tests refined to an expected-failure status.
func (s Summary) Expected() int {
	return s.ExpectedFails + s.ExpectedTimeouts
}

// GenuineFails counts failures that are not on the expected list.
func (s Summary) GenuineFails() int {
	return s.Fails - s.ExpectedFails
}

// GenuineTimeouts counts timeouts that are not on the expected list.
func (s Summary) GenuineTimeouts() int {
	return s.Timeouts - s.ExpectedTimeouts
}

// ExitStatus is fails + timeouts - expected. Zero means full compliance.
func (s Summary) ExitStatus() int {
	return s.Fails + s.Timeouts - s.Expected()
}

// Success reports whether the run had no genuine failures or timeouts.
func (s Summary) Success() bool {
	return s.ExitStatus() == 0
}
