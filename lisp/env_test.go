package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_shadowing(t *testing.T) {
	h, env := newTestHeap()
	root := h.Int(1)
	child := h.Int(2)
	env.Insert("x", root)
	env.Push()
	env.Insert("x", child)

	v, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Same(t, child, v)

	env.Pop()
	v, err = env.Lookup("x")
	require.NoError(t, err)
	assert.Same(t, root, v)
}

func TestEnv_lookupUnbound(t *testing.T) {
	env := NewEnv()
	_, err := env.Lookup("nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrSymbolNotFound))
	assert.Equal(t, "unbound symbol: nope", err.Error())
}

func TestEnv_popRoot(t *testing.T) {
	env := NewEnv()
	env.Push()
	assert.Equal(t, 2, env.Depth())
	env.Pop()
	assert.Equal(t, 1, env.Depth())
	assert.Panics(t, func() { env.Pop() })
}

func TestEnv_set(t *testing.T) {
	h, env := newTestHeap()
	env.Insert("x", h.Int(1))
	env.Push()
	two := h.Int(2)
	require.NoError(t, env.Set("x", two))
	env.Pop()

	// The binding in the root scope was changed, not shadowed.
	v, err := env.Lookup("x")
	require.NoError(t, err)
	assert.Same(t, two, v)

	err = env.Set("y", two)
	assert.True(t, IsKind(err, ErrSymbolNotFound))
}

func TestEnv_snapshot(t *testing.T) {
	h, env := newTestHeap()
	env.Push()
	env.Insert("a", h.Int(1))
	s := env.Snapshot()
	env.Insert("b", h.Int(2))
	assert.Len(t, s, 1)
	assert.Contains(t, s, "a")

	env.PushScope(s)
	_, err := env.Lookup("a")
	assert.NoError(t, err)
	env.Insert("c", h.Int(3))
	assert.Contains(t, s, "c")
}

func TestEnv_markRoots(t *testing.T) {
	h, env := newTestHeap()
	env.Insert("a", h.Int(1))
	env.Push()
	env.Insert("b", h.Int(2))
	env.Insert("a", h.Int(3))

	var marked []*LVal
	env.MarkRoots(func(v *LVal) { marked = append(marked, v) })
	assert.Len(t, marked, 3)
}

func TestEnv_insertNil(t *testing.T) {
	env := NewEnv()
	assert.Panics(t, func() { env.Insert("x", nil) })
}
