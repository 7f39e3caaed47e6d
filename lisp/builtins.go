package lisp

import (
	"math"
)

// LBuiltinDef is a built-in procedure
type LBuiltinDef interface {
	Name() string
	Eval(interp *Interp, args []*LVal) (*LVal, error)
}

type langBuiltin struct {
	name string
	fun  PrimitiveFunc
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Eval(interp *Interp, args []*LVal) (*LVal, error) {
	return fun.fun(interp, args)
}

var userBuiltins []*langBuiltin
var langBuiltins = []*langBuiltin{
	{"+", builtinAdd},
	{"-", builtinSub},
	{"*", builtinMul},
	{"/", builtinDiv},
	{"=", compareNum("=", func(c int) bool { return c == 0 })},
	{"<", compareNum("<", func(c int) bool { return c < 0 })},
	{">", compareNum(">", func(c int) bool { return c > 0 })},
	{"<=", compareNum("<=", func(c int) bool { return c <= 0 })},
	{">=", compareNum(">=", func(c int) bool { return c >= 0 })},
	{"not", evaluated(builtinNot)},
	{"list", evaluated(builtinList)},
	{"gc", builtinGC},
	{"debug-stack", builtinDebugStack},
}

// RegisterDefaultBuiltin adds the given function to the list returned by
// DefaultBuiltins.
func RegisterDefaultBuiltin(name string, fn PrimitiveFunc) {
	userBuiltins = append(userBuiltins, &langBuiltin{name, fn})
}

// DefaultBuiltins returns the default set of LBuiltinDefs added to an Interp
// when AddBuiltins is called without arguments.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins)+len(userBuiltins))
	for i := range langBuiltins {
		ops[i] = langBuiltins[i]
	}
	offset := len(langBuiltins)
	for i := range userBuiltins {
		ops[offset+i] = userBuiltins[i]
	}
	return ops
}

// evaluated wraps fn so that it receives the values of its arguments instead
// of the raw argument expressions.  The values stay reachable while fn runs.
func evaluated(fn PrimitiveFunc) PrimitiveFunc {
	return func(interp *Interp, args []*LVal) (*LVal, error) {
		vals, release, err := interp.evalArgs(args)
		if err != nil {
			return nil, err
		}
		defer release()
		return fn(interp, vals)
	}
}

// evalArgs evaluates args in order.  The returned values are protected from
// collection until release is called.
func (interp *Interp) evalArgs(args []*LVal) (vals []*LVal, release func(), err error) {
	release = interp.Protect()
	vals = make([]*LVal, len(args))
	for i, arg := range args {
		vals[i], err = interp.Eval(arg)
		if err != nil {
			release()
			return nil, nil, err
		}
		interp.tmp.push(vals[i])
	}
	return vals, release, nil
}

// number is an unboxed LInt or LFloat.
type number struct {
	float bool
	i     int64
	f     float64
}

func (x number) toFloat() float64 {
	if x.float {
		return x.f
	}
	return float64(x.i)
}

func (interp *Interp) number(x number) *LVal {
	if x.float {
		return interp.Heap.Float(x.f)
	}
	return interp.Heap.Int(x.i)
}

// evalNumber evaluates expr and unboxes the result, which must be numeric.
func (interp *Interp) evalNumber(expr *LVal) (number, error) {
	v, err := interp.Eval(expr)
	if err != nil {
		return number{}, err
	}
	switch v.Type {
	case LInt:
		return number{i: v.Int}, nil
	case LFloat:
		return number{float: true, f: v.Float}, nil
	default:
		return number{}, WrongType("numberp", v.Type.String())
	}
}

type arithOp func(a, b number) (number, error)

// foldNumbers evaluates args from left to right and folds them with op.  When
// seed is nil the first operand is the seed.
func (interp *Interp) foldNumbers(args []*LVal, seed *number, op arithOp) (*LVal, error) {
	var acc number
	if seed != nil {
		acc = *seed
	} else {
		x, err := interp.evalNumber(args[0])
		if err != nil {
			return nil, err
		}
		acc = x
		args = args[1:]
	}
	for _, arg := range args {
		x, err := interp.evalNumber(arg)
		if err != nil {
			return nil, err
		}
		acc, err = op(acc, x)
		if err != nil {
			return nil, err
		}
	}
	return interp.number(acc), nil
}

func promote(a, b number, fi func(int64, int64) (int64, error), ff func(float64, float64) float64) (number, error) {
	if a.float || b.float {
		return number{float: true, f: ff(a.toFloat(), b.toFloat())}, nil
	}
	x, err := fi(a.i, b.i)
	return number{i: x}, err
}

func opAdd(a, b number) (number, error) {
	return promote(a, b,
		func(x, y int64) (int64, error) { return x + y, nil },
		func(x, y float64) float64 { return x + y })
}

func opSub(a, b number) (number, error) {
	return promote(a, b,
		func(x, y int64) (int64, error) { return x - y, nil },
		func(x, y float64) float64 { return x - y })
}

func opMul(a, b number) (number, error) {
	return promote(a, b,
		func(x, y int64) (int64, error) { return x * y, nil },
		func(x, y float64) float64 { return x * y })
}

func opDiv(a, b number) (number, error) {
	return promote(a, b,
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, DivideByZero()
			}
			return x / y, nil
		},
		func(x, y float64) float64 { return x / y })
}

func builtinAdd(interp *Interp, args []*LVal) (*LVal, error) {
	return interp.foldNumbers(args, &number{i: 0}, opAdd)
}

func builtinMul(interp *Interp, args []*LVal) (*LVal, error) {
	return interp.foldNumbers(args, &number{i: 1}, opMul)
}

// builtinSub subtracts its remaining operands from the first.  A single
// operand is negated.
func builtinSub(interp *Interp, args []*LVal) (*LVal, error) {
	switch len(args) {
	case 0:
		return interp.Heap.Int(0), nil
	case 1:
		return interp.foldNumbers(args, &number{i: 0}, opSub)
	}
	return interp.foldNumbers(args, nil, opSub)
}

// builtinDiv divides the first operand by the remaining ones.  A single
// operand is inverted.  Integer operands use truncated integer division.
func builtinDiv(interp *Interp, args []*LVal) (*LVal, error) {
	switch len(args) {
	case 0:
		return interp.Heap.Int(1), nil
	case 1:
		return interp.foldNumbers(args, &number{i: 1}, opDiv)
	}
	return interp.foldNumbers(args, nil, opDiv)
}

func compareNumbers(a, b number) int {
	if !a.float && !b.float {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	x, y := a.toFloat(), b.toFloat()
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	case math.IsNaN(x) || math.IsNaN(y):
		return 2
	}
	return 0
}

// compareNum returns a primitive that is true when every adjacent pair of its
// operands satisfies ok.
func compareNum(name string, ok func(c int) bool) PrimitiveFunc {
	return func(interp *Interp, args []*LVal) (*LVal, error) {
		if len(args) < 2 {
			return nil, WrongMinArgsNum(2, len(args))
		}
		prev, err := interp.evalNumber(args[0])
		if err != nil {
			return nil, err
		}
		result := true
		for _, arg := range args[1:] {
			x, err := interp.evalNumber(arg)
			if err != nil {
				return nil, err
			}
			c := compareNumbers(prev, x)
			if c == 2 || !ok(c) {
				result = false
			}
			prev = x
		}
		return interp.Heap.Bool(result), nil
	}
}

func builtinNot(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 1 {
		return nil, WrongArgsNum(1, len(args))
	}
	return interp.Heap.Bool(!args[0].IsTrue()), nil
}

func builtinList(interp *Interp, args []*LVal) (*LVal, error) {
	return interp.Heap.Cons(args...), nil
}

// builtinGC forces a collection and returns the number of values reclaimed.
func builtinGC(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 0 {
		return nil, WrongArgsNum(0, len(args))
	}
	n := interp.Heap.Collect()
	return interp.Heap.Int(int64(n)), nil
}

func builtinDebugStack(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 0 {
		return nil, WrongArgsNum(0, len(args))
	}
	interp.Stack.DebugPrint(interp.Stderr)
	return interp.Heap.Nil(), nil
}
