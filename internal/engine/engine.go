package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/reader"
	"github.com/roach88/pyrolog/internal/term"
)

// UnknownPolicy decides what a call to an undefined predicate does.
type UnknownPolicy string

const (
	// UnknownError raises existence_error(procedure, Name/Arity).
	UnknownError UnknownPolicy = "error"
	// UnknownFail makes the call fail.
	UnknownFail UnknownPolicy = "fail"
)

// Engine resolves Prolog queries against its rule database.
//
// Thread-safety model:
//   - An Engine is not safe for concurrent use.
//   - One query runs at a time. Starting a new query closes the previous
//     Solutions; calling Run, Consult or Solve from inside a running
//     query (for example from a Callback) returns an UncatchableError.
//
// INVARIANTS:
//   - Between queries the heap trail and the choice stack are empty.
//   - Rules never share variables with live terms; they hold Slots only.
type Engine struct {
	in       *term.Interner
	heap     *term.Heap
	reader   *reader.Reader
	db       *Database
	builtins map[term.Signature]*builtin

	choices []choice
	ctx     context.Context
	quota   *QuotaEnforcer
	running bool
	active  *Solutions

	maxSteps    int64
	occursCheck bool
	unknown     UnknownPolicy
	logger      *slog.Logger
	recorder    Recorder
	idGen       IDGenerator
	clock       Sequencer
	sources     []string
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the inference limit per query.
//
// Default: 1,000,000 (DefaultMaxSteps). Zero or less disables the limit.
func WithMaxSteps(maxSteps int64) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithOccursCheck makes every unification perform the occurs check.
func WithOccursCheck(on bool) EngineOption {
	return func(e *Engine) {
		e.occursCheck = on
	}
}

// WithUnknown sets the policy for calls to undefined predicates.
func WithUnknown(p UnknownPolicy) EngineOption {
	return func(e *Engine) {
		e.unknown = p
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRecorder records every finished query run.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithIDGenerator sets the run ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithClock sets the clock that stamps recorded runs, e.g. one resumed
// with NewClockAt from an existing trace.
func WithClock(c Sequencer) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine with an empty database and the builtin library
// registered.
func New(opts ...EngineOption) *Engine {
	in := term.NewInterner()
	heap := term.NewHeap()
	e := &Engine{
		in:       in,
		heap:     heap,
		reader:   reader.New(in, heap),
		db:       NewDatabase(),
		builtins: make(map[term.Signature]*builtin),
		maxSteps: DefaultMaxSteps,
		unknown:  UnknownError,
		logger:   slog.Default(),
		idGen:    UUIDv7Generator{},
		clock:    NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.quota = NewQuotaEnforcer(e.maxSteps)
	e.registerControlLib()
	e.registerTermLib()
	e.registerArithLib()
	e.registerDatabaseLib()
	return e
}

// Heap returns the engine's heap.
func (e *Engine) Heap() *term.Heap { return e.heap }

// Interner returns the engine's atom interner.
func (e *Engine) Interner() *term.Interner { return e.in }

// Reader returns a reader that builds terms for this engine.
func (e *Engine) Reader() *reader.Reader { return e.reader }

// Database returns the rule database.
func (e *Engine) Database() *Database { return e.db }

// ProgramHash identifies the program text consulted so far.
func (e *Engine) ProgramHash() string {
	return ir.ProgramHash(e.sources)
}

// Sources returns the program texts consulted so far, oldest first.
func (e *Engine) Sources() []string {
	return slices.Clone(e.sources)
}

// Consult loads a program. The whole text is checked first: a syntax
// error or an invalid clause rejects it with nothing loaded. Clauses are
// then appended in order and :- or ?- directives run once, as they are
// reached. A directive that fails or throws is logged and skipped; only
// an uncatchable error, such as an exhausted step quota, stops the load
// part way.
func (e *Engine) Consult(src string) error {
	if e.running {
		return errReentrant("Consult")
	}
	e.closeActive()
	clauses, err := e.reader.ParseProgram(src)
	if err != nil {
		return fmt.Errorf("consult: %w", err)
	}
	rules := make([]*Rule, len(clauses))
	for i, c := range clauses {
		if _, ok := Directive(c.Term); ok {
			continue
		}
		if rules[i], err = e.prepareRule(c.Term); err != nil {
			return fmt.Errorf("clause at %s: %w", c.Pos, err)
		}
	}

	e.sources = append(e.sources, src)
	for i, c := range clauses {
		if r := rules[i]; r != nil {
			e.db.ensure(r.Signature).add(r, true)
			continue
		}
		goal, _ := Directive(c.Term)
		err := e.Run(context.Background(), goal)
		switch {
		case err == nil:
		case IsFailure(err):
			e.logger.Warn("directive failed", "goal", term.Format(goal), "pos", c.Pos.String())
		case IsCatchable(err):
			e.logger.Warn("directive raised an exception",
				"goal", term.Format(goal), "pos", c.Pos.String(), "error", term.Format(ErrorTerm(err)))
		default:
			return fmt.Errorf("directive at %s: %w", c.Pos, err)
		}
	}
	e.logger.Debug("consulted program", "clauses", len(clauses), "predicates", e.db.Len())
	return nil
}

// Directive reports whether a program clause is a :- or ?- directive and
// returns its goal.
func Directive(t term.Term) (term.Term, bool) {
	c, ok := t.(*term.Compound)
	if !ok || c.Arity() != 1 {
		return nil, false
	}
	if c.Functor() == term.Neck || c.Functor() == term.QueryAtom {
		return c.Arg(0), true
	}
	return nil, false
}

// AddRule stores a clause, Head or Head :- Body, at the end of its
// predicate or, with atEnd false, at the front. Resolutions already in
// progress do not see the new clause.
func (e *Engine) AddRule(clause term.Term, atEnd bool) error {
	r, err := e.prepareRule(clause)
	if err != nil {
		return err
	}
	e.db.ensure(r.Signature).add(r, atEnd)
	return nil
}

// prepareRule turns a clause into a rule without storing it.
func (e *Engine) prepareRule(clause term.Term) (*Rule, error) {
	head, body := splitClause(e.heap.Deref(clause))
	r, err := e.newRule(head, body)
	if err != nil {
		return nil, err
	}
	if e.IsBuiltin(r.Signature) {
		return nil, e.staticProcedure(r.Signature)
	}
	return r, nil
}

func splitClause(t term.Term) (head, body term.Term) {
	if c, ok := t.(*term.Compound); ok && c.Functor() == term.Neck && c.Arity() == 2 {
		return term.Deref(c.Arg(0)), c.Arg(1)
	}
	return t, nil
}

// Retract removes the first clause that unifies with pattern, Head or
// Head :- Body, leaving the bindings of the match in place. It reports
// term.ErrUnificationFailed when no clause matches.
func (e *Engine) Retract(pattern term.Term) error {
	head, body := splitClause(e.heap.Deref(pattern))
	if _, ok := head.(*term.Var); ok {
		return e.InstantiationError()
	}
	sig, ok := term.SignatureOf(head)
	if !ok {
		return e.TypeError("callable", head)
	}
	if e.IsBuiltin(sig) {
		return e.PermissionError("modify", "static_procedure", e.in.Indicator(sig))
	}
	if body == nil {
		body = term.True
	}
	pred := e.db.lookup(sig)
	if pred == nil {
		return term.ErrUnificationFailed
	}
	hashes := term.DeeperUnifyHash(head)
	for n := findApplicable(pred.first, hashes); n != nil; n = findApplicable(n.next, hashes) {
		mark := e.heap.Branch()
		env := make([]term.Term, n.rule.NumVars)
		if term.UnifyHead(n.rule.Head, head, env, e.heap, e.occursCheck) {
			var stored term.Term = term.True
			if n.rule.Body != nil {
				stored = term.Instantiate(n.rule.Body, env, e.heap)
			}
			if term.Unify(body, stored, e.heap, e.occursCheck) == nil {
				pred.remove(n)
				e.logger.Debug("retracted clause", "predicate", sig.String())
				return nil
			}
		}
		e.heap.Revert(mark)
	}
	return term.ErrUnificationFailed
}

// Abolish removes every clause of sig together with the definition.
func (e *Engine) Abolish(sig term.Signature) error {
	if e.IsBuiltin(sig) {
		return e.staticProcedure(sig)
	}
	e.db.abolish(sig)
	return nil
}

// Run proves goal once. It returns nil if a solution was found,
// term.ErrUnificationFailed if there is none, or the error that stopped
// the query. Bindings are left in place until the next query starts.
func (e *Engine) Run(ctx context.Context, goal term.Term) error {
	return e.RunWith(ctx, goal, Done())
}

// RunWith proves goal and passes each solution to k. With Done it stops
// at the first solution; with a Callback the callback decides.
func (e *Engine) RunWith(ctx context.Context, goal term.Term, k Continuation) error {
	if e.running {
		return errReentrant("Run")
	}
	e.closeActive()
	e.begin(ctx)
	defer e.end()
	return e.loop(e.Call(goal, k))
}

// begin prepares the machine for a new query.
func (e *Engine) begin(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.heap.Reset()
	e.cutTo(0)
	e.quota.Reset()
	e.ctx = ctx
	e.running = true
}

func (e *Engine) end() {
	e.running = false
}

// closeActive abandons the Solutions of the previous query, if any.
func (e *Engine) closeActive() {
	if e.active != nil {
		e.active.Close()
		e.active = nil
	}
}
