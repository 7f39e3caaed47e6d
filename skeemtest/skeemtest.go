package skeemtest

import (
	"bytes"
	"os"
	"testing"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/parser"
)

// TestSequence is a sequence of lisp expressions which are evaluated sequentially
// by a lisp.Interp.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result or error message
	Output string // debugging output written during evaluation
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewInterp returns an Interp that reads with parser.NewReader, configured
// further by config.
func NewInterp(config ...lisp.Config) (*lisp.Interp, error) {
	config = append([]lisp.Config{lisp.WithReader(parser.NewReader())}, config...)
	return lisp.NewInterp(config...)
}

// RunTestSuite runs each TestSequence in tests on isolated lisp.Interps
// created with config.
func RunTestSuite(t *testing.T, tests TestSuite, config ...lisp.Config) {
	for i, test := range tests {
		var stderr bytes.Buffer
		config := append(config[:len(config):len(config)], lisp.WithStderr(&stderr))
		interp, err := NewInterp(config...)
		if err != nil {
			t.Fatalf("test %d %q: %v", i, test.Name, err)
		}
		for j, expr := range test.TestSequence {
			v, err := interp.Read(expr.Expr)
			if err != nil {
				t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
				continue
			}
			if len(v) == 0 {
				t.Errorf("test %d %q: expr %d: no expression parsed", i, test.Name, j)
				continue
			}
			if len(v) != 1 {
				t.Errorf("test %d %q: expr %d: more than one expression parsed (%d)", i, test.Name, j, len(v))
				continue
			}
			var result string
			r, err := interp.Eval(v[0])
			if err != nil {
				result = err.Error()
			} else {
				result = r.String()
			}
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if stderr.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, stderr.String())
			}
			stderr.Reset()
		}
	}
}

// BenchmarkParse returns a benchmark that reads the source file at path with
// readers constructed by newReader.
func BenchmarkParse(path string, newReader func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		source, err := os.ReadFile(path)
		if err != nil {
			b.Fatalf("Unable to read source file: %v", err)
		}
		text := string(source)
		reader := newReader()
		heap := lisp.NewHeap()
		heap.Disable()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := reader.Read(heap, text)
			if err != nil {
				b.Fatal(err)
			}
			heap.Enable()
			heap.Collect()
			heap.Disable()
		}
	}
}
