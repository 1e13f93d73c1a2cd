// Package simulator drives the verilated core as an external process.
//
// One Run is one blocking subprocess: the simulator is started with the
// test's plusargs, its stdout and stderr are captured into a single buffer,
// and the call returns once the process exits. Nothing is streamed.
package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultPath is where the core build leaves the verilated binary.
	DefaultPath = "work/verilator/frv_core/verilated-frv_core"

	// DefaultTimeout is the simulator cycle budget passed as +TIMEOUT.
	DefaultTimeout = 5000

	// waitDelay bounds how long Run waits for output pipes after a
	// supervised kill. Children of the simulator can hold them open.
	waitDelay = 2 * time.Second
)

// ErrNotFound is returned by Discover when no simulator binary exists.
var ErrNotFound = errors.New("simulator not found")

// Config selects and tunes the simulator.
type Config struct {
	// Path is an explicit simulator binary. If it does not exist, its base
	// name is looked up in $PATH.
	Path string

	// Timeout is the cycle budget handed to the simulator.
	Timeout int

	// Supervise, if positive, is a wall-clock limit after which the
	// harness kills the simulator. Zero trusts the simulator's own
	// +TIMEOUT handling.
	Supervise time.Duration
}

// Driver runs a discovered simulator binary.
type Driver struct {
	path      string
	supervise time.Duration
}

// Discover locates the simulator.
// Search order:
// 1. Explicit Config.Path
// 2. Base name of Config.Path (or DefaultPath) in $PATH
func Discover(cfg Config) (*Driver, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// exec resolves a bare name through $PATH, not the working directory.
		if !strings.ContainsRune(path, filepath.Separator) && !strings.ContainsRune(path, '/') {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, fmt.Errorf("resolve simulator %s: %w", path, err)
			}
			path = abs
		}
		return &Driver{path: path, supervise: cfg.Supervise}, nil
	}

	if found, err := exec.LookPath(filepath.Base(path)); err == nil {
		return &Driver{path: found, supervise: cfg.Supervise}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Path returns the simulator binary the driver runs.
func (d *Driver) Path() string {
	return d.path
}

// Supervise returns the wall-clock limit, or zero if unsupervised.
func (d *Driver) Supervise() time.Duration {
	return d.supervise
}

// Command renders the full command line for inv, for logs and the args
// command.
func (d *Driver) Command(inv Invocation) string {
	return d.path + " " + strings.Join(inv.Args(), " ")
}

// Result is the captured outcome of one simulator process.
type Result struct {
	Command  string
	Output   string
	ExitCode int
	Duration time.Duration

	// ProcessErr is set when the simulator exited non-zero or was killed.
	// It does not stop classification; the output still decides the status.
	ProcessErr error

	// Supervised is true when the harness killed the process because the
	// supervision limit elapsed.
	Supervised bool
}

// ProcessError describes a simulator that ran but did not exit cleanly.
type ProcessError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("simulator exited with status %d: %v", e.ExitCode, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Run executes inv and blocks until the simulator exits.
//
// An error is returned only if the process could not be started or ctx
// was cancelled. A non-zero exit is reported through Result.ProcessErr.
func (d *Driver) Run(ctx context.Context, inv Invocation) (*Result, error) {
	runCtx := ctx
	if d.supervise > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.supervise)
		defer cancel()
	}

	args := inv.Args()
	cmd := exec.CommandContext(runCtx, d.path, args...)
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	result := &Result{Command: d.Command(inv)}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start simulator %s: %w", d.path, err)
	}
	err := cmd.Wait()
	result.Duration = time.Since(start)
	result.Output = output.String()

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if d.supervise > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.Supervised = true
	}

	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.ProcessErr = &ProcessError{Command: result.Command, ExitCode: result.ExitCode, Err: err}
	}

	return result, nil
}
