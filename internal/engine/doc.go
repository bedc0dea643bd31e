// Package engine implements the pyrolog execution engine.
//
// The engine resolves Prolog goals against a rule database. It is a
// trampoline: every unit of work is a Step, and the loop in machine.go
// dispatches one step at a time through five states:
//
//	CALL          resolve a builtin or control construct, or go to USER_CALL
//	USER_CALL     look up the predicate and filter its clauses by unify-hash
//	TRY_RULE      rename a clause, unify its head, continue with its body
//	CONTINUATION  run "what comes after" a goal that has just succeeded
//	DONE          hand control back to the caller
//
// No Go recursion happens per goal or per open alternative. Success is
// threaded through Continuation values; alternatives live on an explicit
// stack of choice points, each holding a trail checkpoint and a way to
// resume. Failure is the term.ErrUnificationFailed value returned by a
// transition; the loop answers it by popping the newest choice point,
// reverting the heap to its checkpoint and resuming it.
//
// Cut is a stack truncation. Each clause body runs with a barrier, the
// height of the choice stack when the predicate was called, and ! drops
// everything above it. Conjunction, disjunction and if-then-else pass the
// barrier through; call/N, \+, findall/3, catch/3 and the condition of
// if-then-else start a new one, which confines a cut inside them.
//
// Errors come in three kinds:
//   - term.ErrUnificationFailed: no solution on this path, never catchable
//   - *CatchableError and *UserError: Prolog exceptions for catch/3
//   - *UncatchableError, *StepsExceededError and context errors: abort the query
//
// An Engine is single-threaded. It owns one interner, one heap and one
// database, and runs one query at a time. Run engines in separate
// goroutines for parallelism; they share nothing.
package engine
