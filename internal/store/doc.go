// Package store provides SQLite-backed durable storage for pyrolog query
// traces.
//
// The store is an append-only log with:
//   - Programs: consulted source text, keyed by program hash
//   - Runs: one row per finished top-level query
//   - Solutions: the answers of each run, in the order they were found
//
// # Ordering
//
// Runs are ordered by seq, the engine's logical clock, never by wall time.
// Every listing uses ORDER BY seq ASC, id ASC COLLATE BINARY so two reads
// of the same trace return identical results.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Hashes stored alongside runs are computed by internal/ir using RFC 8785
// canonical JSON and SHA-256 with domain separation.
package store
