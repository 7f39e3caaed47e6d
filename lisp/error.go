package lisp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies evaluation errors.
type ErrorKind uint

// Possible ErrorKind values
const (
	ErrWrongType ErrorKind = iota
	ErrWrongArgsNum
	ErrWrongMinArgsNum
	ErrNotCallable
	ErrSymbolNotFound
	ErrDivideByZero
)

var errorKindStrings = []string{
	ErrWrongType:       "wrong-type",
	ErrWrongArgsNum:    "wrong-args-num",
	ErrWrongMinArgsNum: "wrong-min-args-num",
	ErrNotCallable:     "not-callable",
	ErrSymbolNotFound:  "symbol-not-found",
	ErrDivideByZero:    "divide-by-zero",
}

func (k ErrorKind) String() string {
	if int(k) >= len(errorKindStrings) {
		return "unknown-error"
	}
	return errorKindStrings[k]
}

// Error is an error raised during evaluation.  Trace holds the names of the
// procedures that were executing when the error was raised, innermost first.
type Error struct {
	Kind   ErrorKind
	Wanted string // type name for ErrWrongType
	Got    string // type name for ErrWrongType and ErrNotCallable
	Want   int    // argument count for ErrWrongArgsNum and ErrWrongMinArgsNum
	Count  int    // argument count for ErrWrongArgsNum and ErrWrongMinArgsNum
	Symbol string // symbol name for ErrSymbolNotFound
	Trace  []string

	traced bool
}

// WrongType returns an error for an argument of type got where a value
// satisfying wanted was required.
func WrongType(wanted, got string) *Error {
	return &Error{Kind: ErrWrongType, Wanted: wanted, Got: got}
}

// WrongArgsNum returns an error for a call with got arguments to a procedure
// that takes exactly wanted.
func WrongArgsNum(wanted, got int) *Error {
	return &Error{Kind: ErrWrongArgsNum, Want: wanted, Count: got}
}

// WrongMinArgsNum returns an error for a call with got arguments to a
// procedure that takes a minimum of least arguments.
func WrongMinArgsNum(least, got int) *Error {
	return &Error{Kind: ErrWrongMinArgsNum, Want: least, Count: got}
}

// NotCallable returns an error for the application of a value of type typ.
func NotCallable(typ string) *Error {
	return &Error{Kind: ErrNotCallable, Got: typ}
}

// SymbolNotFound returns an error for a reference to an unbound symbol.
func SymbolNotFound(name string) *Error {
	return &Error{Kind: ErrSymbolNotFound, Symbol: name}
}

// DivideByZero returns an error for integer division by zero.
func DivideByZero() *Error {
	return &Error{Kind: ErrDivideByZero}
}

// Message returns the error message without the call trace.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrWrongType:
		return fmt.Sprintf("wrong argument type: wanted %s, got %s", e.Wanted, e.Got)
	case ErrWrongArgsNum:
		return fmt.Sprintf("wrong number of arguments: wanted %d, got %d", e.Want, e.Count)
	case ErrWrongMinArgsNum:
		return fmt.Sprintf("too few arguments: wanted at least %d, got %d", e.Want, e.Count)
	case ErrNotCallable:
		return fmt.Sprintf("type %s is not callable", e.Got)
	case ErrSymbolNotFound:
		return fmt.Sprintf("unbound symbol: %s", e.Symbol)
	case ErrDivideByZero:
		return "division by zero"
	default:
		return e.Kind.String()
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Trace) == 0 {
		return e.Message()
	}
	return fmt.Sprintf("%s (in %s)", e.Message(), strings.Join(e.Trace, " <- "))
}

// setTrace attaches trace to err if it is an *Error that has not been given
// a trace yet.
func setTrace(err error, trace func() []string) {
	var lerr *Error
	if errors.As(err, &lerr) && !lerr.traced {
		lerr.traced = true
		lerr.Trace = trace()
	}
}

// IsKind returns true if err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.Kind == kind
}
