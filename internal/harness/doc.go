// Package harness runs discovered compliance tests through the simulator
// and classifies the results.
//
// # Execution
//
// Tests run strictly one after another, in the order given. For each test
// the runner:
//
//  1. Creates <waves>/<class>
//  2. Builds the simulator invocation, attaching +SIG_VERIF only when the
//     reference signature exists on disk
//  3. Runs the simulator and captures its combined output
//  4. Classifies the output against the expected-failure set
//  5. Writes the full output to <waves>/<class>/<name>.log
//
// Progress is printed as a two-column table, followed by the summary line
//
//	p=<passes> / f=<fails> / t=<timeouts> / u=<unknowns> / ef=<expected>
//
// and "--- Success ---" or "--- Failure ---".
//
// # Errors
//
// A simulator that cannot be started, or any failure writing the output
// directory or log, aborts the run. A simulator that exits non-zero does
// not: the exit is recorded on the Outcome and the output still decides
// the status.
//
// # Deterministic Testing
//
// Run IDs come from an IDGenerator and timestamps from Runner.Now, so tests
// can use FixedGenerator and testutil.DeterministicClock to produce
// reproducible reports for golden comparison.
package harness
