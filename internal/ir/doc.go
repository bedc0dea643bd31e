// Package ir defines the canonical record of query runs.
//
// A Run captures one top-level query: the query text, a hash of the program
// it ran against, its outcome and the solutions it produced. Every value is
// built from the sealed IRValue types so that it can be serialized to
// RFC 8785 canonical JSON and hashed with SHA-256 under a domain prefix.
//
// This package imports nothing internal; term, engine and store build on it.
//
// Key design constraints:
//   - No floats in IR values; terms are recorded as their formatted text
//   - All JSON tags use snake_case
//   - Runs are ordered by a logical clock (seq), never by wall-clock time
package ir
