package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pyrolog/internal/ir"
	"github.com/roach88/pyrolog/internal/reader"
	"github.com/roach88/pyrolog/internal/term"
)

const appendProgram = `
append([], L, L).
append([X|Y], L, [X|Z]) :- append(Y, L, Z).
`

const memberProgram = `
member(X, [X|_]).
member(X, [_|T]) :- member(X, T).
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, program string, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithLogger(quietLogger())}, opts...)
	e := New(opts...)
	require.NoError(t, e.Consult(program))
	return e
}

// solveAll returns every solution of query with bindings formatted.
func solveAll(t *testing.T, e *Engine, query string) []map[string]string {
	t.Helper()
	sols, err := e.Query(context.Background(), query)
	require.NoError(t, err)
	out := []map[string]string{}
	for sols.Next() {
		m := map[string]string{}
		for k, v := range sols.Solution().Bindings {
			m[k] = string(v.(ir.IRString))
		}
		out = append(out, m)
	}
	require.NoError(t, sols.Err())
	return out
}

// solveErr runs query expecting it to stop with an error.
func solveErr(t *testing.T, e *Engine, query string) error {
	t.Helper()
	sols, err := e.Query(context.Background(), query)
	require.NoError(t, err)
	for sols.Next() {
	}
	require.Error(t, sols.Err())
	return sols.Err()
}

func errorText(err error) string {
	if t := ErrorTerm(err); t != nil {
		return term.Format(t)
	}
	return err.Error()
}

func TestEngine_AppendForward(t *testing.T) {
	e := newTestEngine(t, appendProgram)

	got := solveAll(t, e, "append([1,2],[3],R).")
	assert.Equal(t, []map[string]string{{"R": "[1,2,3]"}}, got)
}

func TestEngine_AppendSplits(t *testing.T) {
	e := newTestEngine(t, appendProgram)

	got := solveAll(t, e, "append(X, Y, [1,2]).")
	assert.Equal(t, []map[string]string{
		{"X": "[]", "Y": "[1,2]"},
		{"X": "[1]", "Y": "[2]"},
		{"X": "[1,2]", "Y": "[]"},
	}, got)
}

func TestEngine_DisjunctionOrder(t *testing.T) {
	e := newTestEngine(t, "")

	got := solveAll(t, e, "X = 1 ; X = 2.")
	assert.Equal(t, []map[string]string{{"X": "1"}, {"X": "2"}}, got)
}

func TestEngine_LogicalUpdateView(t *testing.T) {
	e := newTestEngine(t, `
p :- assertz(p), fail.
p :- fail.
`)

	err := e.Run(context.Background(), e.in.Atom("p"))
	assert.True(t, IsFailure(err), "the clause asserted by p must not be visible to the same call")

	// The next resolution sees it.
	err = e.Run(context.Background(), e.in.Atom("p"))
	assert.NoError(t, err)
	assert.Len(t, e.Database().Rules(term.Signature{Name: "p"}), 4)
}

func TestEngine_CutCommitsToOnePath(t *testing.T) {
	e := newTestEngine(t, `
f(0).
f(X) :- Y is X-1, !, f(Y).
`, WithMaxSteps(500))

	goal, err := e.reader.ParseTerm("f(20)")
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background(), goal))
	assert.Less(t, e.quota.Current(), int64(200))
}

func TestEngine_CutPrunesClauseAlternatives(t *testing.T) {
	e := newTestEngine(t, `
first(X) :- member(X, [a,b,c]), !.
all(X) :- member(X, [a,b,c]).
`+memberProgram)

	assert.Equal(t, []map[string]string{{"X": "a"}}, solveAll(t, e, "first(X)."))
	assert.Len(t, solveAll(t, e, "all(X)."), 3)
}

func TestEngine_CutInDisjunctionIsClauseLevel(t *testing.T) {
	e := newTestEngine(t, `
f :- (!, fail) ; true.
g(X) :- (X = 1 ; X = 2), !.
`)

	assert.Empty(t, solveAll(t, e, "f."))
	assert.Equal(t, []map[string]string{{"X": "1"}}, solveAll(t, e, "g(X)."))
}

func TestEngine_CutInsideCallIsLocal(t *testing.T) {
	e := newTestEngine(t, `
t(X) :- (X = 1 ; X = 2), call(!).
u :- call((!, fail) ; true).
`)

	assert.Len(t, solveAll(t, e, "t(X)."), 2)
	assert.Empty(t, solveAll(t, e, "u."))
}

func TestEngine_CutInNegationIsLocal(t *testing.T) {
	e := newTestEngine(t, `
v(X) :- (X = 1 ; X = 2), \+ (!, fail).
`)
	assert.Len(t, solveAll(t, e, "v(X)."), 2)
}

func TestEngine_IfThenElse(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	tests := []struct {
		query string
		want  []map[string]string
	}{
		{"(1 < 2 -> X = a ; X = b).", []map[string]string{{"X": "a"}}},
		{"(2 < 1 -> X = a ; X = b).", []map[string]string{{"X": "b"}}},
		{"(member(X, [1,2,3]) -> true ; X = none).", []map[string]string{{"X": "1"}}},
		{"(fail -> X = a).", []map[string]string{}},
		{"(member(X, [1,2]) -> Y = X ; Y = 0), member(Z, [x,y]).", []map[string]string{
			{"X": "1", "Y": "1", "Z": "x"},
			{"X": "1", "Y": "1", "Z": "y"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, solveAll(t, e, tt.query))
		})
	}
}

func TestEngine_Negation(t *testing.T) {
	e := newTestEngine(t, "")

	assert.Len(t, solveAll(t, e, `\+ fail.`), 1)
	assert.Empty(t, solveAll(t, e, `\+ true.`))
	assert.Empty(t, solveAll(t, e, `\+ X = 1.`))
	assert.Equal(t, []map[string]string{{"X": "X"}}, solveAll(t, e, `\+ \+ X = 1.`))
	assert.Len(t, solveAll(t, e, `not(1 = 2).`), 1)
}

func TestEngine_CatchThrow(t *testing.T) {
	e := newTestEngine(t, `
risky(X) :- X > 10, throw(too_big(X)).
risky(X) :- X =< 10.
`)

	tests := []struct {
		query string
		want  []map[string]string
	}{
		{"catch(throw(my), my, R = caught).", []map[string]string{{"R": "caught"}}},
		{"catch(risky(20), too_big(N), true).", []map[string]string{{"N": "20"}}},
		{"catch(risky(5), _, true).", []map[string]string{{}}},
		{"catch((X = 1, throw(e)), e, true).", []map[string]string{{"X": "X"}}},
		{"catch(X is 1/0, error(E), true).", []map[string]string{{"X": "X", "E": "evaluation_error(zero_divisor)"}}},
		{"catch(undefined_pred, error(existence_error(procedure, PI)), true).", []map[string]string{{"PI": "undefined_pred/0"}}},
		{"catch(catch(throw(inner), outer, true), inner, R = ok).", []map[string]string{{"R": "ok"}}},
		{"catch(throw(f(X)), f(Y), true), Y == X.", []map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, solveAll(t, e, tt.query))
		})
	}
}

func TestEngine_CatchIsInactiveAfterExit(t *testing.T) {
	e := newTestEngine(t, "")

	err := solveErr(t, e, "catch(true, _, true), throw(late).")
	assert.Equal(t, "late", errorText(err))

	var ue *UserError
	assert.ErrorAs(t, err, &ue)
	assert.True(t, IsCatchable(err))
}

func TestEngine_CatchReactivatesOnBacktracking(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	// Backtracking re-enters the goal, but the throw happens after the
	// catch has exited again.
	err := solveErr(t, e, "catch(member(X, [1,2]), _, true), X == 2, throw(stop).")
	assert.Equal(t, "stop", errorText(err))

	got := solveAll(t, e, "catch((member(X, [1,2]), X == 2, throw(found(X))), found(Y), true).")
	assert.Equal(t, []map[string]string{{"X": "X", "Y": "2"}}, got)
}

func TestEngine_FindallBetweenOnce(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	tests := []struct {
		query string
		want  []map[string]string
	}{
		{"findall(X, member(X, [a,b,c]), L).", []map[string]string{{"X": "X", "L": "[a,b,c]"}}},
		{"findall(X, fail, L).", []map[string]string{{"X": "X", "L": "[]"}}},
		{"findall(X-Y, (member(X, [1,2]), member(Y, [a])), L).", []map[string]string{{"X": "X", "Y": "Y", "L": "[1-a,2-a]"}}},
		{"findall(X, between(1, 5, X), L).", []map[string]string{{"X": "X", "L": "[1,2,3,4,5]"}}},
		{"between(1, 3, 2).", []map[string]string{{}}},
		{"between(3, 1, X).", []map[string]string{}},
		{"findall(X, between(18446744073709551615, 18446744073709551617, X), L).", []map[string]string{{"X": "X", "L": "[18446744073709551615,18446744073709551616,18446744073709551617]"}}},
		{"findall(X, between(9223372036854775806, 9223372036854775807, X), L).", []map[string]string{{"X": "X", "L": "[9223372036854775806,9223372036854775807]"}}},
		{"between(1, inf, 99999999999999999999).", []map[string]string{{}}},
		{"once(between(18446744073709551616, inf, X)).", []map[string]string{{"X": "18446744073709551616"}}},
		{"once(member(X, [a,b])).", []map[string]string{{"X": "a"}}},
		{"ignore(fail).", []map[string]string{{}}},
		{"forall(member(X, [1,2,3]), X > 0).", []map[string]string{{"X": "X"}}},
		{"forall(member(X, [1,-2]), X > 0).", []map[string]string{}},
		{"call(member, X, [p]).", []map[string]string{{"X": "p"}}},
		{"G = member(X, [q]), call(G).", []map[string]string{{"G": "member(q,[q])", "X": "q"}}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, solveAll(t, e, tt.query))
		})
	}
}

func TestEngine_Repeat(t *testing.T) {
	e := newTestEngine(t, ":- dynamic(n/1).\nn(0).")

	got := solveAll(t, e, "repeat, retract(n(N)), N1 is N+1, assertz(n(N1)), N1 >= 3, !.")
	assert.Equal(t, []map[string]string{{"N": "2", "N1": "3"}}, got)
}

func TestEngine_Errors(t *testing.T) {
	e := newTestEngine(t, "")

	tests := []struct {
		query string
		want  string
	}{
		{"foo(1).", "error(existence_error(procedure,foo/1))"},
		{"X is foo + 1.", "error(type_error(evaluable,foo/0))"},
		{"X is 1/0.", "error(evaluation_error(zero_divisor))"},
		{"X is Y + 1.", "error(instantiation_error)"},
		{"X is 1 << 100000000.", "error(resource_error(memory))"},
		{"X is 2 ** 99999999999999999999.", "error(resource_error(memory))"},
		{"X is 2 ^ -1.", "error(type_error(float,2))"},
		{"X is (2 ** 64) mod 0.", "error(evaluation_error(zero_divisor))"},
		{"X is (2 ** 64) >> 1.5.", "error(type_error(integer,1.5))"},
		{"call(1).", "error(type_error(callable,1))"},
		{"call(X).", "error(instantiation_error)"},
		{"assertz(atom(x)).", "error(permission_error(modify,static_procedure,atom/1))"},
		{"abolish(a).", "error(type_error(predicate_indicator,a))"},
		{"abolish(atom/1).", "error(permission_error(modify,static_procedure,atom/1))"},
		{"functor(T, foo, -1).", "error(domain_error(not_less_than_zero,-1))"},
		{"functor(T, foo, 65536).", "error(representation_error(max_arity))"},
		{"functor(T, f, 9223372036854775807).", "error(representation_error(max_arity))"},
		{"functor(T, f, 99999999999999999999).", "error(representation_error(max_arity))"},
		{"abolish(foo/99999999999999999999).", "error(representation_error(max_arity))"},
		{"atom_length(a, N).", "error(existence_error(procedure,atom_length/2))"},
		{"X =.. [].", "error(domain_error(non_empty_list,[]))"},
		{"throw(X).", "error(instantiation_error)"},
		{"throw(custom(1)).", "custom(1)"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			err := solveErr(t, e, tt.query)
			assert.True(t, IsCatchable(err))
			assert.Equal(t, tt.want, errorText(err))
		})
	}
}

func TestEngine_UnknownFail(t *testing.T) {
	e := newTestEngine(t, "", WithUnknown(UnknownFail))
	assert.Empty(t, solveAll(t, e, "nothing_here(1)."))
}

func TestEngine_DynamicPredicateFails(t *testing.T) {
	e := newTestEngine(t, ":- dynamic q/1, r/2.\n")

	assert.Empty(t, solveAll(t, e, "q(X)."))
	assert.Empty(t, solveAll(t, e, "r(X, Y)."))
	assert.True(t, e.Database().Has(term.Signature{Name: "r", Arity: 2}))
}

func TestEngine_StepQuota(t *testing.T) {
	e := newTestEngine(t, "loop :- loop.", WithMaxSteps(1000))

	err := solveErr(t, e, "loop.")
	assert.True(t, IsStepsExceededError(err))
	assert.True(t, IsUncatchable(err))

	// The quota is not an exception that catch/3 could intercept.
	err = solveErr(t, e, "catch(loop, _, true).")
	assert.True(t, IsStepsExceededError(err))

	// Each query gets a fresh budget.
	assert.Len(t, solveAll(t, e, "true."), 1)
}

func TestEngine_ContextCancellation(t *testing.T) {
	e := newTestEngine(t, "loop :- loop.", WithMaxSteps(0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	goal, err := e.reader.ParseTerm("loop")
	require.NoError(t, err)
	err = e.Run(ctx, goal)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_DeepRecursion(t *testing.T) {
	e := newTestEngine(t, `
count(N, N) :- !.
count(I, N) :- I1 is I+1, count(I1, N).
len([], 0).
len([_|T], N) :- len(T, M), N is M+1.
`)

	assert.Len(t, solveAll(t, e, "count(0, 100000)."), 1)
	got := solveAll(t, e, "findall(X, between(1, 50000, X), L), len(L, N).")
	require.Len(t, got, 1)
	assert.Equal(t, "50000", got[0]["N"])
}

func TestEngine_TermBuiltins(t *testing.T) {
	e := newTestEngine(t, "")

	tests := []struct {
		query string
		want  []map[string]string
	}{
		{"functor(foo(a,b), N, A).", []map[string]string{{"N": "foo", "A": "2"}}},
		{"functor(T, foo, 2).", []map[string]string{{"T": "foo(_G0,_G1)"}}},
		{"functor(T, 7, 0).", []map[string]string{{"T": "7"}}},
		{"arg(2, f(a,b), X).", []map[string]string{{"X": "b"}}},
		{"findall(N-A, arg(N, f(a,b), A), L).", []map[string]string{{"N": "N", "A": "A", "L": "[1-a,2-b]"}}},
		{"foo(a,b) =.. L.", []map[string]string{{"L": "[foo,a,b]"}}},
		{"T =.. [bar, 1].", []map[string]string{{"T": "bar(1)"}}},
		{"copy_term(f(X, Y, X), C).", []map[string]string{{"X": "X", "Y": "Y", "C": "f(_G0,_G1,_G0)"}}},
		{"compare(O, 1, a).", []map[string]string{{"O": "<"}}},
		{"1.0 @< 1.", []map[string]string{{}}},
		{"f(a) == f(a).", []map[string]string{{}}},
		{"X \\== Y.", []map[string]string{{"X": "X", "Y": "Y"}}},
		{"a \\= b.", []map[string]string{{}}},
		{"X \\= b.", []map[string]string{}},
		{"unify_with_occurs_check(X, f(X)).", []map[string]string{}},
		{"atom(foo), atomic(1), compound(f(x)), callable(foo), is_list([1]), ground(f(a)).", []map[string]string{{}}},
		{"var(X), nonvar(a), number(1.5), integer(3), float(1.0).", []map[string]string{{"X": "X"}}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, solveAll(t, e, tt.query))
		})
	}
}

func TestEngine_Arithmetic(t *testing.T) {
	e := newTestEngine(t, "")

	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"7 // 2", "3"},
		{"-7 // 2", "-3"},
		{"-7 mod 2", "1"},
		{"7 mod -2", "-1"},
		{"-7 rem 2", "-1"},
		{"7 / 2", "3.5"},
		{"6 / 2", "3"},
		{"2 ** 10", "1024"},
		{"2 ^ 3", "8"},
		{"2.0 ** 2", "4.0"},
		{"max(1, 2.0)", "2.0"},
		{"min(2, 3)", "2"},
		{"abs(-3)", "3"},
		{"sign(-2.5)", "-1.0"},
		{"sqrt(4)", "2.0"},
		{"truncate(3.7)", "3"},
		{"round(2.5)", "3"},
		{"ceiling(2.1)", "3"},
		{"floor(-2.1)", "-3"},
		{"float(2)", "2.0"},
		{"1 << 4", "16"},
		{"1 << 64", "18446744073709551616"},
		{"1 << -1", "0"},
		{"16 >> -2", "64"},
		{"-1 >> 100", "-1"},
		{"(2 ** 70) >> 100", "0"},
		{"9223372036854775807 + 1", "9223372036854775808"},
		{"-9223372036854775808 - 1", "-9223372036854775809"},
		{"-(-9223372036854775808)", "9223372036854775808"},
		{"abs(-9223372036854775808)", "9223372036854775808"},
		{"4294967296 * 4294967296", "18446744073709551616"},
		{"2 ** 100", "1267650600228229401496703205376"},
		{"(2 ** 64) - (2 ** 64)", "0"},
		{"(2 ** 64) // 3", "6148914691236517205"},
		{"(2 ** 64) mod 3", "1"},
		{"-(2 ** 64) div 3", "-6148914691236517206"},
		{"(2 ** 64) / 4", "4611686018427387904"},
		{"gcd(2 ** 64, 3 * 2 ** 32)", "4294967296"},
		{"integer(1.0e20)", "100000000000000000000"},
		{"2 ** -1", "0.5"},
		{"32 >> 2", "8"},
		{"5 /\\ 3", "1"},
		{"5 \\/ 3", "7"},
		{"xor(5, 3)", "6"},
		{"\\ 0", "-1"},
		{"-(3)", "-3"},
		{"pi", "3.141592653589793"},
		{"gcd(12, 18)", "6"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := solveAll(t, e, "X is "+tt.expr+".")
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0]["X"])
		})
	}
}

func TestEngine_ArithmeticComparison(t *testing.T) {
	e := newTestEngine(t, "")

	assert.Len(t, solveAll(t, e, "1 =:= 1.0."), 1)
	assert.Len(t, solveAll(t, e, "1 < 2, 2 =< 2, 3 > 2, 3 >= 3, 1 =\\= 2."), 1)
	assert.Empty(t, solveAll(t, e, "2 < 1."))
	assert.Empty(t, solveAll(t, e, "1 = 1.0."))
	assert.Len(t, solveAll(t, e, "X is 2 ** 64, X > 9223372036854775807, X =:= 18446744073709551616.0."), 1)
	assert.Len(t, solveAll(t, e, "-(2 ** 64) < -9223372036854775808."), 1)
	assert.Len(t, solveAll(t, e, "X is 2 ** 64, integer(X), number(X), atomic(X), X == 18446744073709551616."), 1)
	assert.Empty(t, solveAll(t, e, "X is 2 ** 64, X == 18446744073709551616.0."))
}

func TestEngine_DatabaseBuiltins(t *testing.T) {
	e := newTestEngine(t, `
counter(0).
p(1).
p(X) :- q(X).
`)

	got := solveAll(t, e, "retract(counter(N)), N1 is N+1, assertz(counter(N1)).")
	assert.Equal(t, []map[string]string{{"N": "0", "N1": "1"}}, got)
	assert.Equal(t, []map[string]string{{"X": "1"}}, solveAll(t, e, "counter(X)."))

	got = solveAll(t, e, "findall(B, clause(p(_), B), L).")
	assert.Equal(t, []map[string]string{{"B": "B", "L": "[true,q(_G0)]"}}, got)

	assert.Len(t, solveAll(t, e, "asserta(p(0)), p(0)."), 1)
	assert.Equal(t, "0", solveAll(t, e, "clause(p(X), true).")[0]["X"])

	assert.Len(t, solveAll(t, e, "retract((p(X) :- q(X)))."), 1)
	assert.Len(t, solveAll(t, e, "abolish(p/1)."), 1)
	err := solveErr(t, e, "p(1).")
	assert.Equal(t, "error(existence_error(procedure,p/1))", errorText(err))
}

func TestEngine_RetractAllLeavesDefinition(t *testing.T) {
	e := newTestEngine(t, "f(1).\nf(2).")

	assert.Len(t, solveAll(t, e, "retract(f(_)), retract(f(_))."), 1)
	assert.Empty(t, solveAll(t, e, "f(X)."))
}

func TestEngine_RetractPermission(t *testing.T) {
	e := newTestEngine(t, "")
	err := e.Retract(e.in.Compound("atom", e.in.Atom("x")))
	assert.Equal(t, "error(permission_error(modify,static_procedure,atom/1))", errorText(err))
}

func TestEngine_ConsultErrors(t *testing.T) {
	e := New(WithLogger(quietLogger()))

	err := e.Consult("foo(.")
	require.Error(t, err)
	assert.True(t, reader.IsSyntaxError(err))

	err = e.Consult("3 :- true.")
	require.Error(t, err)
	assert.Equal(t, "error(type_error(callable,3))", errorText(err))

	// Failing and throwing directives only log.
	require.NoError(t, e.Consult(":- fail.\nok.\n:- throw(boom).\nafter."))
	assert.Len(t, solveAll(t, e, "ok."), 1)
	assert.Len(t, solveAll(t, e, "after."), 1)
}

func TestEngine_ConsultRejectsWholeProgram(t *testing.T) {
	e := New(WithLogger(quietLogger()))
	require.NoError(t, e.Consult("kept."))

	// The directive would run first, but the bad clause is found before
	// anything is loaded.
	err := e.Consult(":- assertz(side_effect).\ngood.\natom(x).")
	require.Error(t, err)
	assert.Equal(t, "error(permission_error(modify,static_procedure,atom/1))", errorText(err))

	assert.Equal(t, []string{"kept."}, e.Sources())
	assert.Empty(t, solveAll(t, e, "catch(good, _, fail)."))
	assert.Empty(t, solveAll(t, e, "catch(side_effect, _, fail)."))
}

func TestEngine_ConsultStopsOnUncatchableDirective(t *testing.T) {
	e := New(WithLogger(quietLogger()), WithMaxSteps(100))
	err := e.Consult("before.\nloop :- loop.\n:- loop.\nafter.")
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))

	assert.Len(t, solveAll(t, e, "before."), 1)
	assert.Empty(t, solveAll(t, e, "catch(after, _, fail)."))
}

func TestEngine_VariableGoalInBody(t *testing.T) {
	e := newTestEngine(t, "run(G) :- G.\nyes.")

	assert.Len(t, solveAll(t, e, "run(yes)."), 1)
	assert.Len(t, solveAll(t, e, "run((yes, true))."), 1)
	// call/1 around a variable goal makes cut local.
	assert.Len(t, solveAll(t, e, "run(!), true ; true."), 2)
}

func TestEngine_RunWithCallback(t *testing.T) {
	e := newTestEngine(t, memberProgram)

	c, err := e.reader.ParseQuery("member(X, [a,b,c])")
	require.NoError(t, err)
	x := c.Vars["X"]

	var seen []string
	err = e.RunWith(context.Background(), c.Term, Callback(func(e *Engine) error {
		seen = append(seen, term.Format(term.GetValue(x)))
		return term.ErrUnificationFailed
	}))
	assert.True(t, IsFailure(err))
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestEngine_ReentrantRunRejected(t *testing.T) {
	e := newTestEngine(t, "")

	err := e.RunWith(context.Background(), term.True, Callback(func(e *Engine) error {
		return e.Run(context.Background(), term.True)
	}))
	require.Error(t, err)
	assert.True(t, IsUncatchable(err))
}

func TestEngine_OccursCheckOption(t *testing.T) {
	e := newTestEngine(t, "", WithOccursCheck(true))
	assert.Empty(t, solveAll(t, e, "X = f(X)."))
}

func TestEngine_Register(t *testing.T) {
	e := newTestEngine(t, "")
	e.Register("double", []ArgSpec{Integer, Any}, func(e *Engine, args []term.Term) error {
		return term.Unify(args[1], args[0].(term.Int)*2, e.Heap(), false)
	})

	assert.Equal(t, []map[string]string{{"X": "42"}}, solveAll(t, e, "double(21, X)."))
	err := solveErr(t, e, "double(a, X).")
	assert.Equal(t, "error(type_error(integer,a))", errorText(err))
}

func TestEngine_ProgramHashTracksSources(t *testing.T) {
	a := newTestEngine(t, "x.")
	b := newTestEngine(t, "x.")
	c := newTestEngine(t, "y.")

	assert.Equal(t, a.ProgramHash(), b.ProgramHash())
	assert.NotEqual(t, a.ProgramHash(), c.ProgramHash())
}
