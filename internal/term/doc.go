// Package term implements the Prolog term model.
//
// A Term is one of *Var, *Atom, Int, Float, *Compound or Slot. Atoms are
// interned per Interner, compounds are immutable once built, and variables
// are mutated only through a Heap, which records every binding on its trail
// so that a checkpoint can later be restored exactly.
//
// The package also provides unification, the standard order of terms,
// unify-hashes used to reject clauses cheaply, rule templates (terms whose
// variables are replaced by numbered Slots) and a quoting formatter.
//
// Nothing in this package is safe for concurrent use. One Heap and one
// Interner belong to one engine.
package term
