package lisp

import "errors"

var errNoReader = errors.New("no reader configured")

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the expressions in text and return them as values allocated by
	// heap.  Read is called with collection disabled.
	Read(heap *Heap, text string) ([]*LVal, error)
}
