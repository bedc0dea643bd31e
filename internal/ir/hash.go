package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old hashes.
const (
	DomainProgram  = "pyrolog/program/v1"
	DomainSolution = "pyrolog/solution/v1"
	DomainRun      = "pyrolog/run/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProgramHash identifies the program text an engine has consulted, in the
// order it was consulted.
func ProgramHash(sources []string) string {
	arr := make(IRArray, len(sources))
	for i, s := range sources {
		arr[i] = IRString(s)
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		// An array of strings always marshals.
		panic(err)
	}
	return hashWithDomain(DomainProgram, canonical)
}

// SolutionHash computes the content hash of one solution's bindings.
func SolutionHash(bindings IRObject) (string, error) {
	canonical, err := MarshalCanonical(bindings)
	if err != nil {
		return "", fmt.Errorf("SolutionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSolution, canonical), nil
}

// RunHash computes the content hash of a run's observable result: query,
// program, outcome, error text, truncation and solution hashes. ID, Seq
// and Steps are excluded.
func RunHash(r Run) (string, error) {
	sols := make(IRArray, len(r.Solutions))
	for i, h := range r.SolutionHashes() {
		sols[i] = IRString(h)
	}
	obj := IRObject{
		"query":        IRString(r.Query),
		"program_hash": IRString(r.ProgramHash),
		"outcome":      IRString(r.Outcome),
		"error":        IRString(r.Error),
		"truncated":    IRBool(r.Truncated),
		"solutions":    sols,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RunHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRun, canonical), nil
}

// MustSolutionHash is like SolutionHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSolutionHash(bindings IRObject) string {
	h, err := SolutionHash(bindings)
	if err != nil {
		panic(err)
	}
	return h
}

// MustRunHash is like RunHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRunHash(r Run) string {
	h, err := RunHash(r)
	if err != nil {
		panic(err)
	}
	return h
}
