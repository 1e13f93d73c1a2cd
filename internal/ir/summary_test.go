package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryAdd(t *testing.T) {
	var s Summary
	for _, st := range []Status{Pass, Pass, SignatureFail, SimFail, ExpectedFail, Timeout, ExpectedTimeout, Unknown, Pending} {
		s.Add(st)
	}

	assert.Equal(t, 8, s.Total, "pending is not counted")
	assert.Equal(t, 2, s.Passes)
	assert.Equal(t, 3, s.Fails)
	assert.Equal(t, 2, s.Timeouts)
	assert.Equal(t, 1, s.Unknowns)
	assert.Equal(t, 1, s.ExpectedFails)
	assert.Equal(t, 1, s.ExpectedTimeouts)
	assert.Equal(t, 2, s.Expected())
	assert.Equal(t, 2, s.GenuineFails())
	assert.Equal(t, 1, s.GenuineTimeouts())
	assert.Equal(t, 3, s.ExitStatus())
	assert.False(t, s.Success())
}

func TestSummaryExpectedDoesNotPenalize(t *testing.T) {
	var s Summary
	s.Add(Pass)
	s.Add(ExpectedFail)
	s.Add(ExpectedTimeout)

	assert.Equal(t, 0, s.ExitStatus())
	assert.True(t, s.Success())
	assert.Equal(t, 1, s.Fails, "expected failures still appear in the fails aggregate")
}

func TestSummaryPartitionsTotal(t *testing.T) {
	statuses := []Status{Pass, SignatureFail, SimFail, ExpectedFail, Timeout, ExpectedTimeout, Unknown, Pass, SimFail}
	var s Summary
	for _, st := range statuses {
		s.Add(st)
	}

	sum := s.Passes + s.GenuineFails() + s.GenuineTimeouts() + s.Unknowns + s.Expected()
	assert.Equal(t, len(statuses), sum)
	assert.Equal(t, s.Total, sum)
}

func TestEmptySummarySucceeds(t *testing.T) {
	var s Summary
	assert.Equal(t, 0, s.ExitStatus())
	assert.True(t, s.Success())
}
