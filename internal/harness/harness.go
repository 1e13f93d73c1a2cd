package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/rvcomply/internal/classify"
	"github.com/roach88/rvcomply/internal/ir"
	"github.com/roach88/rvcomply/internal/simulator"
)

// Simulator runs one invocation. *simulator.Driver implements it.
type Simulator interface {
	Run(ctx context.Context, inv simulator.Invocation) (*simulator.Result, error)
}

// Recorder persists a finished run. *store.Store implements it.
type Recorder interface {
	WriteRun(ctx context.Context, report *Report) error
}

// Runner executes tests sequentially and owns the run's counters.
// A Runner is not safe for concurrent use.
type Runner struct {
	Driver   Simulator
	Expected classify.ExpectedFailures

	// WavesDir is the root of per-test output: waveforms, produced
	// signatures and logs.
	WavesDir string

	// Timeout is the simulator cycle budget. Zero means
	// simulator.DefaultTimeout.
	Timeout int

	// Out receives the progress table. Nil discards it.
	Out io.Writer

	// Color enables coloured status labels on Out.
	Color bool

	// ShowCommands adds the simulator command line to each progress row.
	ShowCommands bool

	Logger *slog.Logger

	// Store, if set, records the finished run.
	Store Recorder

	// IDs generates the run ID. Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) defaults() {
	if r.Out == nil {
		r.Out = io.Discard
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.IDs == nil {
		r.IDs = UUIDv7Generator{}
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Timeout <= 0 {
		r.Timeout = simulator.DefaultTimeout
	}
}

// Run executes tests in order and returns the report.
//
// Execution flow:
// 1. Print the progress header
// 2. Run, classify and log each test, printing one row per test
// 3. Print the summary
// 4. Record the run if a Store is configured
//
// Any error aborts the run; no partial report is returned.
func (r *Runner) Run(ctx context.Context, tests []ir.TestDescriptor) (*Report, error) {
	if r.Driver == nil {
		return nil, fmt.Errorf("harness: no simulator configured")
	}
	r.defaults()

	report := &Report{
		RunID:     r.IDs.Generate(),
		StartedAt: r.Now(),
		Outcomes:  make([]Outcome, 0, len(tests)),
	}
	if d, ok := r.Driver.(interface{ Path() string }); ok {
		report.Simulator = d.Path()
	}
	logger := r.Logger.With("run_id", report.RunID)
	logger.Info("starting run", "tests", len(tests), "waves", r.WavesDir)

	p := newPrinter(r.Out, r.Color)
	p.header(r.ShowCommands)

	for _, test := range tests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := r.runOne(ctx, logger, test)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", test.Key(), err)
		}

		report.Outcomes = append(report.Outcomes, outcome)
		report.Summary.Add(outcome.Verdict.Status)
		p.row(outcome, r.ShowCommands)
	}

	report.FinishedAt = r.Now()
	p.summary(report.Summary)

	logger.Info("run finished",
		"passes", report.Summary.Passes,
		"fails", report.Summary.Fails,
		"timeouts", report.Summary.Timeouts,
		"unknowns", report.Summary.Unknowns,
		"expected", report.Summary.Expected(),
	)

	if r.Store != nil {
		if err := r.Store.WriteRun(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		logger.Debug("run recorded")
	}

	return report, nil
}

func (r *Runner) runOne(ctx context.Context, logger *slog.Logger, test ir.TestDescriptor) (Outcome, error) {
	logger = logger.With("class", test.TestClass, "test", test.Name)

	inv := simulator.NewInvocation(test, r.WavesDir, r.Timeout)
	if err := os.MkdirAll(inv.Dir(), 0755); err != nil {
		return Outcome{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if inv.Verify == "" {
		logger.Debug("no verification available", "path", test.SignaturePath)
	}

	start := r.Now()
	result, err := r.Driver.Run(ctx, inv)
	if err != nil {
		return Outcome{}, err
	}
	duration := r.Now().Sub(start)

	verdict := classify.ClassifySupervised(result.Output, test.Name, r.Expected, result.Supervised)

	outcome := Outcome{
		Test:       test,
		Verdict:    verdict,
		LogPath:    inv.LogPath(),
		Command:    result.Command,
		Verified:   inv.Verify != "",
		Duration:   duration,
		ExitCode:   result.ExitCode,
		Supervised: result.Supervised,
		OutputHash: ir.OutputHash(result.Output),
	}
	if result.ProcessErr != nil {
		outcome.ProcessErr = result.ProcessErr.Error()
		logger.Warn("simulator exited abnormally", "error", result.ProcessErr, "supervised", result.Supervised)
	}

	if err := os.WriteFile(outcome.LogPath, []byte(result.Output), 0644); err != nil {
		return Outcome{}, fmt.Errorf("failed to write log: %w", err)
	}

	logger.Debug("test finished",
		"status", verdict.Status,
		"raw_status", verdict.Raw,
		"rule", verdict.Rule,
		"path", outcome.LogPath,
	)
	return outcome, nil
}
