package store

import (
	"context"
	"fmt"

	"github.com/roach88/rvcomply/internal/harness"
)

// WriteRun records a finished run and all its outcomes in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same run ID
// again leaves the first record untouched.
func (s *Store) WriteRun(ctx context.Context, report *harness.Report) error {
	fingerprint, err := report.Fingerprint()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	sum := report.Summary
	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, finished_at, simulator, total, passes, fails, timeouts, unknowns,
		 expected_fails, expected_timeouts, exit_status, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		report.RunID,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		report.Simulator,
		sum.Total,
		sum.Passes,
		sum.Fails,
		sum.Timeouts,
		sum.Unknowns,
		sum.ExpectedFails,
		sum.ExpectedTimeouts,
		sum.ExitStatus(),
		fingerprint,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if affected == 0 {
		// Already recorded.
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, seq, test_class, name, raw_status, status, rule, log_path, verified,
		 duration_ms, exit_code, output_hash, process_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare outcome: %w", err)
	}
	defer stmt.Close()

	for i, o := range report.Outcomes {
		_, err := stmt.ExecContext(ctx,
			report.RunID,
			i,
			o.Test.TestClass,
			o.Test.Name,
			o.Verdict.Raw.String(),
			o.Verdict.Status.String(),
			string(o.Verdict.Rule),
			o.LogPath,
			boolToInt(o.Verified),
			o.Duration.Milliseconds(),
			o.ExitCode,
			o.OutputHash,
			o.ProcessErr,
		)
		if err != nil {
			return fmt.Errorf("write run: outcome %s: %w", o.Test.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
