package lisp_test

import (
	"testing"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/skeemtest"
)

var builtinTests = skeemtest.TestSuite{
	{"arithmetic", skeemtest.TestSequence{
		// arithmetic functions w/o args
		{"(+)", "0", ""},
		{"(-)", "0", ""},
		{"(*)", "1", ""},
		{"(/)", "1", ""},
		// arithmetic functions w/ one arg
		{"(+ 2)", "2", ""},
		{"(+ 2.0)", "2.0", ""},
		{"(- 2)", "-2", ""},
		{"(- 2.5)", "-2.5", ""},
		{"(* 2)", "2", ""},
		{"(/ 2)", "0", ""},
		{"(/ 2.0)", "0.5", ""},
		// arithmetic functions w/ two or more args
		{"(+ 2 3.0)", "5.0", ""},
		{"(+ 1 2 3)", "6", ""},
		{"(+ 1 (* 2 3))", "7", ""},
		{"(+ 1 1.5)", "2.5", ""},
		{"(- 10 1 2)", "7", ""},
		{"(- 0.5 1)", "-0.5", ""},
		{"(* 2 0.75)", "1.5", ""},
		{"(/ 7 2)", "3", ""},
		{"(/ -7 2)", "-3", ""},
		{"(/ 7 2.0)", "3.5", ""},
		{"(/ 1 0)", "division by zero (in /)", ""},
		{"(/ 1.0 0)", "+Inf", ""},
		{`(+ 1 "a")`, "wrong argument type: wanted numberp, got string (in +)", ""},
		{"(* 2 x)", "unbound symbol: x (in *)", ""},
	}},
	{"comparison", skeemtest.TestSequence{
		{"(< 1 2)", "#t", ""},
		{"(< 1 2 3)", "#t", ""},
		{"(< 1 3 2)", "#f", ""},
		{"(> 3 2 1)", "#t", ""},
		{"(<= 1 1 2)", "#t", ""},
		{"(>= 2 3)", "#f", ""},
		{"(= 1 1.0)", "#t", ""},
		{"(= 1 2)", "#f", ""},
		{"(< 1)", "too few arguments: wanted at least 2, got 1 (in <)", ""},
		{"(= 1 ?a)", "wrong argument type: wanted numberp, got character (in =)", ""},
	}},
	{"not", skeemtest.TestSequence{
		{"(not #f)", "#t", ""},
		{"(not ())", "#t", ""},
		{"(not 0)", "#f", ""},
		{"(not (< 2 1))", "#t", ""},
		{"(not 1 2)", "wrong number of arguments: wanted 1, got 2 (in not)", ""},
	}},
	{"list", skeemtest.TestSequence{
		{"(list)", "()", ""},
		{`(list 1 2.0 "s" ?c #t)`, `(1 2.0 "s" ?c #t)`, ""},
		{"(list (list 1) (+ 1 1))", "((1) 2)", ""},
		{"(list 1 y)", "unbound symbol: y (in list)", ""},
	}},
	{"primitives", skeemtest.TestSequence{
		{"+", "<primitive +>", ""},
		{"(if #t + -)", "<primitive +>", ""},
		{"((if #f + -) 5 2)", "3", ""},
	}},
}

func TestBuiltins(t *testing.T) {
	skeemtest.RunTestSuite(t, builtinTests)
}

func TestBuiltins_gcStress(t *testing.T) {
	skeemtest.RunTestSuite(t, builtinTests, lisp.WithGCThreshold(0))
}

func TestBuiltins_gc(t *testing.T) {
	skeemtest.RunTestSuite(t, skeemtest.TestSuite{
		{"gc", skeemtest.TestSequence{
			// Everything allocated so far is bound or being evaluated.
			{"(gc)", "0", ""},
			// The previous form, its symbol and its result.
			{"(gc)", "3", ""},
			{"(gc 1)", "wrong number of arguments: wanted 0, got 1 (in gc)", ""},
		}},
	})
}
