package parser_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/parser"
	"github.com/luthersystems/skeem/parser/lexer"
	"github.com/luthersystems/skeem/skeemtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, text string) ([]*lisp.LVal, *lisp.Heap) {
	heap := lisp.NewHeap()
	heap.Disable()
	vs, err := parser.NewReader().Read(heap, text)
	require.NoError(t, err)
	return vs, heap
}

func TestRead(t *testing.T) {
	tests := []struct {
		text   string
		result []string
	}{
		{"", nil},
		{"; nothing here", nil},
		{"1", []string{"1"}},
		{"-12 +3", []string{"-12", "3"}},
		{"1.5 2. -0.25", []string{"1.5", "2.0", "-0.25"}},
		{`"a string"`, []string{`"a string"`}},
		{"?c ?λ", []string{"?c", "?λ"}},
		{"#t #f", []string{"#t", "#f"}},
		{"sym set! null? - +", []string{"sym", "set!", "null?", "-", "+"}},
		{"()", []string{"()"}},
		{"(1 2.5 \"s\" ?c #t sym ())", []string{`(1 2.5 "s" ?c #t sym ())`}},
		{"(a (b (c)))", []string{"(a (b (c)))"}},
		{"1 2 ; two\n 3", []string{"1", "2", "3"}},
		{"(1 ; one\n 2)", []string{"(1 2)"}},
		{"(1)(2)", []string{"(1)", "(2)"}},
		{"1;c\n2", []string{"1", "2"}},
		{"(define f\n  (lambda (x)\n    (+ x 1)))", []string{"(define f (lambda (x) (+ x 1)))"}},
	}
	for i, test := range tests {
		vs, _ := read(t, test.text)
		var result []string
		for _, v := range vs {
			result = append(result, v.String())
		}
		assert.Equal(t, test.result, result, "test %d: %q", i, test.text)
	}
}

func TestRead_singletons(t *testing.T) {
	vs, heap := read(t, "(() #t #f)")
	require.Len(t, vs, 1)
	require.Equal(t, 3, vs[0].Len())
	assert.Same(t, heap.Nil(), vs[0].Cells[0])
	assert.Same(t, heap.True(), vs[0].Cells[1])
	assert.Same(t, heap.False(), vs[0].Cells[2])

	vs, heap = read(t, "()")
	require.Len(t, vs, 1)
	assert.Same(t, heap.Nil(), vs[0])
}

func TestRead_types(t *testing.T) {
	vs, _ := read(t, `1 1.0 "1" ?1 a (a)`)
	types := make([]lisp.LValType, len(vs))
	for i, v := range vs {
		types[i] = v.Type
	}
	assert.Equal(t, []lisp.LValType{
		lisp.LInt, lisp.LFloat, lisp.LString, lisp.LChar, lisp.LSymbol, lisp.LCons,
	}, types)
	assert.Equal(t, '1', vs[3].Char)
	assert.Equal(t, "1", vs[2].Str)
}

func TestRead_errors(t *testing.T) {
	tests := []struct {
		text string
		err  error
	}{
		{"(1 2", io.ErrUnexpectedEOF},
		{`"abc`, io.ErrUnexpectedEOF},
		{"(1 2))", lexer.ErrUnmatchedParen},
		{"?ab", lexer.ErrInvalidChar},
		{"1abc", lexer.ErrInvalidNumber},
		{"(list 1.5.2)", lexer.ErrInvalidNumber},
	}
	for i, test := range tests {
		heap := lisp.NewHeap()
		_, err := parser.NewReader().Read(heap, test.text)
		assert.True(t, errors.Is(err, test.err), "test %d: %v", i, err)
	}

	heap := lisp.NewHeap()
	_, err := parser.NewReader().Read(heap, "99999999999999999999")
	assert.ErrorContains(t, err, "bad number")
}

func TestRead_fixtures(t *testing.T) {
	tests := []struct {
		file   string
		result string
	}{
		{"fact.lisp", `(3628800 1 2 "done" ?x 1.5 #t)`},
		{"loop.lisp", "5050"},
	}
	for _, test := range tests {
		source, err := os.ReadFile(filepath.Join(fixtureDir, test.file))
		require.NoError(t, err)
		for _, config := range [][]lisp.Config{nil, {lisp.WithGCThreshold(0)}} {
			interp, err := skeemtest.NewInterp(config...)
			require.NoError(t, err)
			v, err := interp.LoadString(string(source))
			require.NoError(t, err, test.file)
			assert.Equal(t, test.result, v.String(), test.file)
		}
	}
}
