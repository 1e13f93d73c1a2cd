package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rvcomply/internal/ir"
)

func TestWriteRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	report := createTestReport("run-1", 0,
		createTestOutcome("rv32i", "I-ADD-01", ir.Pass, ir.Pass),
		createTestOutcome("rv32i", "I-MISALIGN_JMP-01", ir.SimFail, ir.ExpectedFail),
	)
	require.NoError(t, s.WriteRun(ctx, report))

	var runs, outcomes int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM outcomes").Scan(&outcomes))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, outcomes)

	var exitStatus int
	var fingerprint string
	require.NoError(t, s.db.QueryRow("SELECT exit_status, fingerprint FROM runs WHERE id = ?", "run-1").Scan(&exitStatus, &fingerprint))
	assert.Equal(t, 0, exitStatus)

	want, err := report.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, want, fingerprint)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestReport("run-1", 0, createTestOutcome("rv32i", "I-ADD-01", ir.Pass, ir.Pass))
	second := createTestReport("run-1", 0, createTestOutcome("rv32i", "I-ADD-01", ir.SimFail, ir.SimFail))

	require.NoError(t, s.WriteRun(ctx, first))
	require.NoError(t, s.WriteRun(ctx, second))

	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, ir.Pass, run.Outcomes[0].Verdict.Status)
}

func TestWriteRun_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, createTestReport("empty", 0)))

	run, err := s.ReadRun(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, run.Outcomes)
	assert.Equal(t, 0, run.Summary.Total)
}

func TestWriteRun_DuplicateTestRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	report := createTestReport("run-1", 0,
		createTestOutcome("rv32i", "I-ADD-01", ir.Pass, ir.Pass),
		createTestOutcome("rv32i", "I-ADD-01", ir.Pass, ir.Pass),
	)
	require.Error(t, s.WriteRun(ctx, report))

	_, err := s.ReadRun(ctx, "run-1")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
