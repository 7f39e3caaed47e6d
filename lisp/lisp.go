package lisp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// LValType is the type of an LVal
type LValType uint

// Possible LValType values
const (
	LInvalid LValType = iota
	LBool
	LInt
	LFloat
	LChar
	LString
	LSymbol
	LCons
	LProc
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LBool:    "boolean",
	LInt:     "integer",
	LFloat:   "float",
	LChar:    "character",
	LString:  "string",
	LSymbol:  "symbol",
	LCons:    "list",
	LProc:    "procedure",
}

func (t LValType) String() string {
	if int(t) >= len(lvalTypeStrings) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LVal is a lisp value.  LVals are only created by a Heap, which owns them
// until they are reclaimed by a collection.  Every other structure holds
// non-owning references.
type LVal struct {
	Type  LValType
	Bool  bool
	Int   int64
	Float float64
	Char  rune
	Str   string // string contents or symbol name
	Cells []*LVal
	Proc  Procedure

	size   int
	serial uint64 // allocation order
	marked bool
	freed  bool
}

// Procedure is the payload of an LProc value, either a *Primitive or a
// *Lambda.
type Procedure interface {
	procedure()
}

// PrimitiveFunc implements a primitive procedure.  It receives the raw,
// unevaluated arguments of the call and evaluates any operands it needs
// through interp.
type PrimitiveFunc func(interp *Interp, args []*LVal) (*LVal, error)

// Primitive is a procedure implemented in Go.
type Primitive struct {
	Name string
	Fn   PrimitiveFunc
}

func (*Primitive) procedure() {}

// Lambda is a user defined procedure.  Params is a list of symbols and Body a
// list of forms.  Env is non-nil only for closures, procedures returned from
// the call of another lambda.
type Lambda struct {
	Params *LVal
	Body   *LVal
	Env    Scope
}

func (*Lambda) procedure() {}

// IsNil returns true if v is the empty list.
func (v *LVal) IsNil() bool {
	return v.Type == LCons && len(v.Cells) == 0
}

// IsTrue returns false if v is #f or nil and true otherwise.
func (v *LVal) IsTrue() bool {
	if v.Type == LBool {
		return v.Bool
	}
	return !v.IsNil()
}

// IsNumeric returns true if v is an integer or a float.
func (v *LVal) IsNumeric() bool {
	return v.Type == LInt || v.Type == LFloat
}

// Len returns the number of cells in a list.
func (v *LVal) Len() int {
	return len(v.Cells)
}

// Lambda returns the Lambda payload of v, if it has one.
func (v *LVal) Lambda() (*Lambda, bool) {
	if v.Type != LProc {
		return nil, false
	}
	lam, ok := v.Proc.(*Lambda)
	return lam, ok
}

func (v *LVal) String() string {
	switch v.Type {
	case LBool:
		if v.Bool {
			return "#t"
		}
		return "#f"
	case LInt:
		return strconv.FormatInt(v.Int, 10)
	case LFloat:
		return formatFloat(v.Float)
	case LChar:
		return "?" + string(v.Char)
	case LString:
		return strconv.Quote(v.Str)
	case LSymbol:
		return v.Str
	case LCons:
		return exprString(v.Cells, "(", ")")
	case LProc:
		switch p := v.Proc.(type) {
		case *Primitive:
			return fmt.Sprintf("<primitive %s>", p.Name)
		case *Lambda:
			return fmt.Sprintf("(lambda %v%s", p.Params, exprString(p.Body.Cells, " ", ")"))
		}
	}
	return fmt.Sprintf("%#v", v)
}

func formatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func exprString(cells []*LVal, left string, right string) string {
	if len(cells) == 0 {
		if left == " " {
			return right
		}
		return left + right
	}
	var buf bytes.Buffer
	buf.WriteString(left)
	for i, c := range cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.String())
	}
	buf.WriteString(right)
	return buf.String()
}
