// Package store provides SQLite-backed history of harness runs.
//
// Each run is stored once, with its summary counters, exit status and
// fingerprint, together with one outcome row per test. Writes are
// idempotent: recording the same run ID twice keeps the first record.
//
// # Deterministic Query Results
//
//   - Outcomes are returned in the order the harness ran them (seq ASC)
//   - Runs are listed newest first: ORDER BY started_at DESC, id DESC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Fingerprints are computed by ir.Fingerprint using canonical JSON and
// SHA-256 with domain separation, so two runs that classify every test the
// same way compare equal without reading their outcomes.
package store
