package lisp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallStack(t *testing.T) {
	var s CallStack
	assert.Nil(t, s.Top())
	s.Push("f")
	s.Push("g")
	assert.Equal(t, 2, s.Height())
	assert.Equal(t, "g", s.Top().Name)
	assert.Equal(t, []string{"g", "f"}, s.Names())

	cp := s.Copy()
	assert.Equal(t, "g", s.Pop().Name)
	assert.Equal(t, 1, s.Height())
	assert.Equal(t, 2, cp.Height())

	s.Reset()
	assert.Equal(t, 0, s.Height())
	assert.Panics(t, func() { s.Pop() })
}

func TestCallStack_DebugPrint(t *testing.T) {
	s := &CallStack{}
	s.Push("f")
	s.Push("debug-stack")
	var buf bytes.Buffer
	_, err := s.DebugPrint(&buf)
	assert.NoError(t, err)
	assert.Equal(t, `Stack Trace [2 frames -- entrypoint last]:
  height 1: debug-stack
  height 0: f
`, buf.String())
}
