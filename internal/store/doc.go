// Package store provides SQLite-backed history of conformance runs and
// benchmarks.
//
// Tables:
//   - runs: one row per run with its aggregate counters
//   - case_results: one row per case, ordered by seq within a run
//   - benchmarks: one row per benchmark invocation
//
// Run and benchmark IDs are UUIDv7 by default, so they sort by creation
// time. Tag lists are stored as canonical JSON.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
