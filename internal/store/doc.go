// Package store provides SQLite-backed storage for catalogue records and
// the import runs that produced them.
//
// Records are keyed by their catalogue id. Each row carries the record's
// content hash so re-importing an unchanged record is a no-op, the full
// record as JSON, and its purchase and arrival dates split into year,
// month and day columns. The year columns are indexed and serve as the
// prefilter for date queries; the exact partial-date predicate is applied
// in Go to the rows the prefilter returns.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All list queries order by id so results are deterministic.
package store
