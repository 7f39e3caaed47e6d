package lisp

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Interp evaluates lisp values.  An Interp owns a Heap and the LEnv whose
// scopes are the heap's primary roots.
type Interp struct {
	Heap   *Heap
	Env    *LEnv
	Stack  *CallStack
	Reader Reader
	Stderr io.Writer

	logger *slog.Logger
	tmp    operandStack
	depth  int
}

// NewInterp initializes and returns a new Interp with the default special
// operators and builtin functions bound in its root scope.
func NewInterp(config ...Config) (*Interp, error) {
	interp := &Interp{
		Heap:   NewHeap(),
		Env:    NewEnv(),
		Stack:  &CallStack{},
		Stderr: os.Stderr,
		logger: slog.Default(),
	}
	interp.Heap.AddRoots(interp.Env)
	interp.Heap.AddRoots(&interp.tmp)
	for _, fn := range config {
		err := fn(interp)
		if err != nil {
			return nil, err
		}
	}
	interp.AddSpecialOps()
	interp.AddBuiltins()
	return interp, nil
}

// AddSpecialOps binds the given special operators to their names in the root
// scope.  When called with no arguments AddSpecialOps adds the
// DefaultSpecialOps.
func (interp *Interp) AddSpecialOps(ops ...LBuiltinDef) {
	if len(ops) == 0 {
		ops = DefaultSpecialOps()
	}
	interp.addPrimitives(ops)
}

// AddBuiltins binds the given functions to their names in the root scope.
// When called with no arguments AddBuiltins adds the DefaultBuiltins.
func (interp *Interp) AddBuiltins(funs ...LBuiltinDef) {
	if len(funs) == 0 {
		funs = DefaultBuiltins()
	}
	interp.addPrimitives(funs)
}

func (interp *Interp) addPrimitives(defs []LBuiltinDef) {
	for _, def := range defs {
		if _, err := interp.Env.Lookup(def.Name()); err == nil {
			panic("symbol already defined: " + def.Name())
		}
		interp.Env.PutGlobal(def.Name(), interp.Heap.Primitive(def.Name(), def.Eval))
	}
}

// Protect keeps vs reachable by the collector until the returned function is
// called.  Primitives use Protect for values they hold across an allocation
// which are not bound in any scope.
func (interp *Interp) Protect(vs ...*LVal) (release func()) {
	mark := interp.tmp.len()
	for _, v := range vs {
		interp.tmp.push(v)
	}
	return func() { interp.tmp.truncate(mark) }
}

// Read parses text with the interp's Reader.  Collection is disabled while
// the returned values are constructed.
func (interp *Interp) Read(text string) ([]*LVal, error) {
	if interp.Reader == nil {
		return nil, errNoReader
	}
	if interp.Heap.Enabled() {
		interp.Heap.Disable()
		defer interp.Heap.Enable()
	}
	return interp.Reader.Read(interp.Heap, text)
}

// LoadString reads the expressions in text and evaluates them in order.  The
// value of the last expression is returned.
func (interp *Interp) LoadString(text string) (*LVal, error) {
	vs, err := interp.Read(text)
	if err != nil {
		return nil, err
	}
	return interp.EvalAll(vs)
}

// EvalAll evaluates vs in order and returns the value of the last one.  All
// of vs are kept reachable until evaluation completes.  Evaluation stops at
// the first error.
func (interp *Interp) EvalAll(vs []*LVal) (*LVal, error) {
	defer interp.Protect(vs...)()
	return interp.evalSeq(vs)
}

// Eval evaluates v and returns the resulting value.  If evaluation fails the
// returned error carries the call trace at the point of failure.
func (interp *Interp) Eval(v *LVal) (*LVal, error) {
	interp.depth++
	mark := interp.tmp.push(v)
	r, err := interp.eval(v)
	interp.tmp.truncate(mark)
	interp.depth--
	if err != nil {
		setTrace(err, interp.Stack.Names)
		if interp.depth == 0 {
			// The trace of a failed evaluation is never unwound frame by
			// frame.
			interp.Stack.Reset()
		}
		return nil, err
	}
	return r, nil
}

func (interp *Interp) eval(v *LVal) (*LVal, error) {
	switch v.Type {
	case LSymbol:
		return interp.Env.Lookup(v.Str)
	case LCons:
		return interp.evalCons(v)
	default:
		return v, nil
	}
}

func (interp *Interp) evalCons(v *LVal) (*LVal, error) {
	if len(v.Cells) == 0 {
		return interp.Heap.Nil(), nil
	}
	head := v.Cells[0]
	f, err := interp.Eval(head)
	if err != nil {
		return nil, err
	}
	if f.Type != LProc {
		return nil, NotCallable(f.Type.String())
	}
	defer interp.Protect(f)()

	named := head.Type == LSymbol
	if named {
		interp.Stack.Push(head.Str)
	}
	var r *LVal
	switch p := f.Proc.(type) {
	case *Primitive:
		r, err = p.Fn(interp, v.Cells[1:])
	case *Lambda:
		r, err = interp.callLambda(p, v.Cells[1:])
	default:
		panic(fmt.Sprintf("procedure value without a procedure: %T", f.Proc))
	}
	if err != nil {
		return nil, err
	}
	if named {
		interp.Stack.Pop()
	}
	return r, nil
}

// callLambda evaluates args, binds them to the parameters of lam in a new
// scope and evaluates the body of lam.  Every scope pushed by callLambda is
// popped before it returns.
func (interp *Interp) callLambda(lam *Lambda, args []*LVal) (*LVal, error) {
	params := lam.Params.Cells
	if len(params) != len(args) {
		return nil, WrongArgsNum(len(params), len(args))
	}
	mark := interp.tmp.len()
	defer interp.tmp.truncate(mark)
	vals := make([]*LVal, len(args))
	for i, arg := range args {
		x, err := interp.Eval(arg)
		if err != nil {
			return nil, err
		}
		interp.tmp.push(x)
		vals[i] = x
	}

	npush := 0
	defer func() {
		for ; npush > 0; npush-- {
			interp.Env.Pop()
		}
	}()
	if lam.Env != nil {
		interp.Env.PushScope(lam.Env)
		npush++
	}
	interp.Env.Push()
	npush++
	start := interp.Heap.serial
	for i, p := range params {
		interp.Env.Insert(p.Str, vals[i])
	}

	interp.logger.Debug("call",
		slog.Int("argument-count", len(vals)),
		slog.Int("stack-height", interp.Stack.Height()))
	result, err := interp.evalSeq(lam.Body.Cells)
	if err != nil {
		return nil, err
	}
	// Only procedures created by this call capture its bindings.
	inner, ok := result.Lambda()
	if ok && inner.Env == nil && interp.Heap.allocatedSince(result, start) {
		result = interp.closure(result, inner, lam)
	}
	return result, nil
}

// closure allocates a copy of fn that captures the bindings of the call to
// outer that returned fn.  Captured bindings that refer to fn are rebound to
// the closure so a procedure defined locally can still call itself.
func (interp *Interp) closure(fn *LVal, inner *Lambda, outer *Lambda) *LVal {
	env := make(Scope, len(outer.Env))
	for k, v := range outer.Env {
		env[k] = v
	}
	for k, v := range interp.Env.Snapshot() {
		env[k] = v
	}
	defer interp.Protect(fn)()
	c := interp.Heap.Lambda(inner.Params, inner.Body, env)
	for k, v := range env {
		if v == fn {
			env[k] = c
		}
	}
	return c
}

// operandStack holds values that are in use by the evaluator but may not be
// reachable from any scope, such as the expression being evaluated or
// arguments that have been evaluated but not yet bound.
type operandStack struct {
	vals []*LVal
}

var _ RootSet = (*operandStack)(nil)

// push adds v to the stack and returns the stack height before the push.
func (s *operandStack) push(v *LVal) int {
	n := len(s.vals)
	s.vals = append(s.vals, v)
	return n
}

func (s *operandStack) len() int {
	return len(s.vals)
}

func (s *operandStack) set(i int, v *LVal) {
	s.vals[i] = v
}

func (s *operandStack) truncate(n int) {
	for i := n; i < len(s.vals); i++ {
		s.vals[i] = nil
	}
	s.vals = s.vals[:n]
}

// MarkRoots implements RootSet.
func (s *operandStack) MarkRoots(mark func(*LVal)) {
	for _, v := range s.vals {
		mark(v)
	}
}
