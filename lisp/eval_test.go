package lisp_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/skeemtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalTests = skeemtest.TestSuite{
	{"atoms", skeemtest.TestSequence{
		{"3", "3", ""},
		{"-3", "-3", ""},
		{"1.5", "1.5", ""},
		{"2.", "2.0", ""},
		{`"hi"`, `"hi"`, ""},
		{"?c", "?c", ""},
		{"#t", "#t", ""},
		{"#f", "#f", ""},
		{"()", "()", ""},
		{"a", "unbound symbol: a", ""},
	}},
	{"application", skeemtest.TestSequence{
		{"(1 2)", "type integer is not callable", ""},
		{`("f")`, "type string is not callable", ""},
		{"((quote g))", "type symbol is not callable", ""},
		{"(undefined 1)", "unbound symbol: undefined", ""},
	}},
	{"arity", skeemtest.TestSequence{
		{"(define f (lambda (a b) a))", "()", ""},
		{"(f 1 2)", "1", ""},
		{"(f 1)", "wrong number of arguments: wanted 2, got 1 (in f)", ""},
		{"(f 1 2 3)", "wrong number of arguments: wanted 2, got 3 (in f)", ""},
		{"a", "unbound symbol: a", ""},
		// Arguments are not evaluated when the count is wrong.
		{"(f (undefined))", "wrong number of arguments: wanted 2, got 1 (in f)", ""},
		{"((lambda (x y) x) 1)", "wrong number of arguments: wanted 2, got 1", ""},
	}},
	{"error trace", skeemtest.TestSequence{
		{"(define g (lambda () x))", "()", ""},
		{"(define f (lambda () (g)))", "()", ""},
		{"(f)", "unbound symbol: x (in g <- f)", ""},
		{"(define x 1)", "()", ""},
		{"(f)", "1", ""},
		{"(define h (lambda (n) (+ n (f))))", "()", ""},
		{`(h "a")`, "wrong argument type: wanted numberp, got string (in + <- h)", ""},
	}},
	{"scopes", skeemtest.TestSequence{
		{"(define x 1)", "()", ""},
		{"(define f (lambda (x) (define y x) (+ x y)))", "()", ""},
		{"(f 2)", "4", ""},
		{"x", "1", ""},
		{"y", "unbound symbol: y", ""},
		{"(define g (lambda (x) (undefined-thing)))", "()", ""},
		{"(g 5)", "unbound symbol: undefined-thing (in g)", ""},
		{"x", "1", ""},
	}},
	{"caller scopes", skeemtest.TestSequence{
		{"(define show (lambda () y))", "()", ""},
		{"(define call (lambda (y) (show)))", "()", ""},
		{"(call 7)", "7", ""},
		{"(show)", "unbound symbol: y (in show)", ""},
	}},
	{"closures", skeemtest.TestSequence{
		{"(define adder (lambda (a) (lambda (b) (+ a b))))", "()", ""},
		{"(define add2 (adder 2))", "()", ""},
		{"(add2 3)", "5", ""},
		{"((adder 10) 1)", "11", ""},
		{"add2", "(lambda (b) (+ a b))", ""},
		// A procedure that exists before a call does not capture its scope.
		{"(define x 1)", "()", ""},
		{"(define k (lambda () x))", "()", ""},
		{"(define wrap (lambda (x) k))", "()", ""},
		{"(define k2 (wrap 7))", "()", ""},
		{"(k)", "1", ""},
		{"(k2)", "1", ""},
	}},
	{"counters", skeemtest.TestSequence{
		{"(define make-counter (lambda () (define n 0) (lambda () (set! n (+ n 1)) n)))", "()", ""},
		{"(define c (make-counter))", "()", ""},
		{"(c)", "1", ""},
		{"(c)", "2", ""},
		{"(define d (make-counter))", "()", ""},
		{"(d)", "1", ""},
		{"(c)", "3", ""},
		{"n", "unbound symbol: n", ""},
	}},
	{"recursion", skeemtest.TestSequence{
		{"(define fact (lambda (n) (if (< n 2) 1 (* n (fact (- n 1))))))", "()", ""},
		{"(fact 10)", "3628800", ""},
		{"(define outer (lambda () (define loop (lambda (n) (if (< n 1) 0 (+ n (loop (- n 1)))))) loop))", "()", ""},
		{"(define sum (outer))", "()", ""},
		{"(sum 100)", "5050", ""},
	}},
}

func TestEval(t *testing.T) {
	skeemtest.RunTestSuite(t, evalTests)
}

func TestEval_gcStress(t *testing.T) {
	skeemtest.RunTestSuite(t, evalTests, lisp.WithGCThreshold(0))
}

func TestEval_scopesRestored(t *testing.T) {
	interp, err := skeemtest.NewInterp()
	require.NoError(t, err)
	_, err = interp.LoadString(`
		(define f (lambda (x) (g x)))
		(define g (lambda (y) (+ y z)))`)
	require.NoError(t, err)

	_, err = interp.LoadString("(f 1)")
	require.Error(t, err)
	var lerr *lisp.Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, lisp.ErrSymbolNotFound, lerr.Kind)
	assert.Equal(t, []string{"+", "g", "f"}, lerr.Trace)
	assert.Equal(t, 1, interp.Env.Depth())
	assert.Equal(t, 0, interp.Stack.Height())
}

func TestEval_closureCycle(t *testing.T) {
	interp, err := skeemtest.NewInterp(lisp.WithGCThreshold(0))
	require.NoError(t, err)
	_, err = interp.LoadString(`
		(define outer (lambda () (define self (lambda () self)) self))
		(define f (outer))`)
	require.NoError(t, err)

	// The closure captures itself.
	f, err := interp.Env.Lookup("f")
	require.NoError(t, err)
	lam, ok := f.Lambda()
	require.True(t, ok)
	assert.Same(t, f, lam.Env["self"])

	interp.Heap.Collect()
	v, err := interp.LoadString("((f))")
	require.NoError(t, err)
	assert.Same(t, f, v)

	_, err = interp.LoadString("(define f 0)")
	require.NoError(t, err)
	assert.Positive(t, interp.Heap.Collect())
}

func TestEval_passThrough(t *testing.T) {
	interp, err := skeemtest.NewInterp()
	require.NoError(t, err)
	_, err = interp.LoadString(`
		(define k (lambda () 0))
		(define id (lambda (f) f))
		(define k2 (id k))`)
	require.NoError(t, err)
	k, err := interp.Env.Lookup("k")
	require.NoError(t, err)
	k2, err := interp.Env.Lookup("k2")
	require.NoError(t, err)
	assert.Same(t, k, k2)
}

func TestEval_noReader(t *testing.T) {
	interp, err := lisp.NewInterp()
	require.NoError(t, err)
	_, err = interp.LoadString("1")
	assert.Error(t, err)
}

func TestEval_logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	interp, err := skeemtest.NewInterp(lisp.WithLogger(logger))
	require.NoError(t, err)
	_, err = interp.LoadString("((lambda (x) x) 1) (gc)")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=call")
	assert.Contains(t, buf.String(), "msg=gc")

	_, err = skeemtest.NewInterp(lisp.WithLogger(nil))
	assert.Error(t, err)
	_, err = skeemtest.NewInterp(lisp.WithGCThreshold(-1))
	assert.Error(t, err)
}

func TestEval_gcDisabled(t *testing.T) {
	interp, err := skeemtest.NewInterp(lisp.WithGCDisabled(), lisp.WithGCThreshold(0))
	require.NoError(t, err)
	n := interp.Heap.Len()
	_, err = interp.LoadString("(+ 1 2) (+ 3 4)")
	require.NoError(t, err)
	assert.Greater(t, interp.Heap.Len(), n)
	assert.Equal(t, 0, interp.Heap.Stats().Collections)
}
