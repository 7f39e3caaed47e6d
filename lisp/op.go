package lisp

var userSpecialOps []*langBuiltin
var langSpecialOps = []*langBuiltin{
	{"quote", opQuote},
	{"lambda", opLambda},
	{"define", opDefine},
	{"set!", opSet},
	{"if", opIf},
	{"begin", opBegin},
	{"while", opWhile},
}

// RegisterDefaultSpecialOp adds the given function to the list returned by
// DefaultSpecialOps.
func RegisterDefaultSpecialOp(name string, fn PrimitiveFunc) {
	userSpecialOps = append(userSpecialOps, &langBuiltin{name, fn})
}

// DefaultSpecialOps returns the default set of LBuiltinDef added to an Interp
// when AddSpecialOps is called without arguments.
func DefaultSpecialOps() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langSpecialOps)+len(userSpecialOps))
	for i := range langSpecialOps {
		ops[i] = langSpecialOps[i]
	}
	offset := len(langSpecialOps)
	for i := range userSpecialOps {
		ops[offset+i] = userSpecialOps[i]
	}
	return ops
}

func opQuote(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 1 {
		return nil, WrongArgsNum(1, len(args))
	}
	return args[0], nil
}

func opLambda(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) < 2 {
		return nil, WrongMinArgsNum(2, len(args))
	}
	params := args[0]
	if params.Type != LCons {
		return nil, WrongType("list", params.Type.String())
	}
	for _, p := range params.Cells {
		if p.Type != LSymbol {
			return nil, WrongType("symbol", p.Type.String())
		}
	}
	body := interp.Heap.Cons(args[1:]...)
	defer interp.Protect(body)()
	return interp.Heap.Lambda(params, body, nil), nil
}

func opDefine(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 2 {
		return nil, WrongArgsNum(2, len(args))
	}
	sym := args[0]
	if sym.Type != LSymbol {
		return nil, WrongType("symbol", sym.Type.String())
	}
	v, err := interp.Eval(args[1])
	if err != nil {
		return nil, err
	}
	interp.Env.Insert(sym.Str, v)
	return interp.Heap.Nil(), nil
}

func opSet(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 2 {
		return nil, WrongArgsNum(2, len(args))
	}
	sym := args[0]
	if sym.Type != LSymbol {
		return nil, WrongType("symbol", sym.Type.String())
	}
	// Report an unbound symbol before the value expression has any effect.
	if _, err := interp.Env.Lookup(sym.Str); err != nil {
		return nil, err
	}
	v, err := interp.Eval(args[1])
	if err != nil {
		return nil, err
	}
	err = interp.Env.Set(sym.Str, v)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func opIf(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) < 2 {
		return nil, WrongMinArgsNum(2, len(args))
	}
	if len(args) > 3 {
		return nil, WrongArgsNum(3, len(args))
	}
	ok, err := interp.Eval(args[0])
	if err != nil {
		return nil, err
	}
	if ok.IsTrue() {
		return interp.Eval(args[1])
	}
	if len(args) == 3 {
		return interp.Eval(args[2])
	}
	return interp.Heap.Nil(), nil
}

func opBegin(interp *Interp, args []*LVal) (*LVal, error) {
	return interp.evalSeq(args)
}

// opWhile evaluates its body as long as the condition is true.  A body whose
// first element is a list is a sequence of forms.
func opWhile(interp *Interp, args []*LVal) (*LVal, error) {
	if len(args) != 2 {
		return nil, WrongArgsNum(2, len(args))
	}
	cond, body := args[0], args[1]
	forms := []*LVal{body}
	if body.Type == LCons && len(body.Cells) > 0 && body.Cells[0].Type == LCons {
		forms = body.Cells
	}

	// The value of the last iteration is not bound anywhere.
	slot := interp.tmp.push(interp.Heap.Nil())
	defer interp.tmp.truncate(slot)
	for {
		ok, err := interp.Eval(cond)
		if err != nil {
			return nil, err
		}
		if !ok.IsTrue() {
			break
		}
		last, err := interp.evalSeq(forms)
		if err != nil {
			return nil, err
		}
		interp.tmp.set(slot, last)
	}
	return interp.tmp.vals[slot], nil
}

// evalSeq evaluates forms in order and returns the value of the last one, or
// nil if there are no forms.
func (interp *Interp) evalSeq(forms []*LVal) (*LVal, error) {
	result := interp.Heap.Nil()
	for _, form := range forms {
		r, err := interp.Eval(form)
		if err != nil {
			return nil, err
		}
		result = r
	}
	return result, nil
}
