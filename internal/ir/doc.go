// Package ir holds the value types shared by every other package in
// rvcomply: test descriptors, classification statuses, run summaries and
// the canonical JSON used to fingerprint a run.
//
// ir imports nothing internal. Discovery builds descriptors, the harness
// turns them into outcomes, and the store persists both; all of them speak
// in terms of the types declared here.
//
// Key constraints:
//   - A TestDescriptor is only ever constructed with all four addresses
//     resolved; there is no partially-resolved descriptor.
//   - Descriptors are read-only after construction (value receivers only).
//   - Statuses are terminal: once a test has a Status other than Pending
//     or Running it never changes.
package ir
