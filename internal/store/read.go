package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/rvcomply/internal/classify"
	"github.com/roach88/rvcomply/internal/ir"
)

// RunRecord is the stored summary of one run.
type RunRecord struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	Simulator   string     `json:"simulator,omitempty"`
	Summary     ir.Summary `json:"summary"`
	ExitStatus  int        `json:"exit_status"`
	Fingerprint string     `json:"fingerprint"`
}

// OutcomeRecord is one stored test outcome.
type OutcomeRecord struct {
	TestClass  string           `json:"class"`
	Name       string           `json:"name"`
	Verdict    classify.Verdict `json:"verdict"`
	LogPath    string           `json:"log_path"`
	Verified   bool             `json:"verified"`
	Duration   time.Duration    `json:"duration"`
	ExitCode   int              `json:"exit_code"`
	OutputHash string           `json:"output_hash"`
	ProcessErr string           `json:"process_error,omitempty"`
}

// Key is the class-qualified test name.
func (o OutcomeRecord) Key() string {
	return o.TestClass + "/" + o.Name
}

// Run is a stored run with its outcomes in execution order.
type Run struct {
	RunRecord
	Outcomes []OutcomeRecord `json:"outcomes"`
}

const runColumns = `id, started_at, finished_at, simulator, total, passes, fails, timeouts, unknowns,
	expected_fails, expected_timeouts, exit_status, fingerprint`

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadRun returns the run with the given ID and its outcomes.
// Returns ErrRunNotFound if no such run exists.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)

	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	outcomes, err := s.readOutcomes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Run{RunRecord: record, Outcomes: outcomes}, nil
}

func (s *Store) readOutcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT test_class, name, raw_status, status, rule, log_path, verified,
		       duration_ms, exit_code, output_hash, process_error
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []OutcomeRecord{}
	for rows.Next() {
		var (
			o                 OutcomeRecord
			raw, status, rule string
			verified          int
			durationMS        int64
		)
		err := rows.Scan(&o.TestClass, &o.Name, &raw, &status, &rule, &o.LogPath, &verified,
			&durationMS, &o.ExitCode, &o.OutputHash, &o.ProcessErr)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}

		if o.Verdict.Raw, err = parseStatus(raw); err != nil {
			return nil, err
		}
		if o.Verdict.Status, err = parseStatus(status); err != nil {
			return nil, err
		}
		o.Verdict.Rule = classify.Rule(rule)
		o.Verified = verified != 0
		o.Duration = time.Duration(durationMS) * time.Millisecond
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		r                 RunRecord
		started, finished string
	)
	err := row.Scan(&r.ID, &started, &finished, &r.Simulator,
		&r.Summary.Total, &r.Summary.Passes, &r.Summary.Fails, &r.Summary.Timeouts, &r.Summary.Unknowns,
		&r.Summary.ExpectedFails, &r.Summary.ExpectedTimeouts, &r.ExitStatus, &r.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	if r.StartedAt, err = parseTime(started); err != nil {
		return RunRecord{}, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return RunRecord{}, err
	}
	return r, nil
}
