package lisp

import (
	"log/slog"
)

// Scope maps symbol names to values.
type Scope map[string]*LVal

// LEnv is a lisp environment, a stack of scopes.  The bottom scope is the
// root (global) scope and is never popped.  LEnv is also the primary source
// of garbage collection roots.
type LEnv struct {
	scopes []Scope
	logger *slog.Logger
}

var _ RootSet = (*LEnv)(nil)

// NewEnv returns an LEnv containing an empty root scope.
func NewEnv() *LEnv {
	return &LEnv{
		scopes: []Scope{make(Scope)},
		logger: slog.Default(),
	}
}

// Depth returns the number of scopes in env, including the root scope.
func (env *LEnv) Depth() int {
	return len(env.scopes)
}

// Push appends an empty scope to env.
func (env *LEnv) Push() {
	env.PushScope(make(Scope))
}

// PushScope appends s to env.  Bindings inserted while s is innermost are
// written into s.
func (env *LEnv) PushScope(s Scope) {
	env.scopes = append(env.scopes, s)
	env.logger.Debug("push scope", slog.Int("depth", len(env.scopes)))
}

// Pop removes the innermost scope and returns it.  Pop panics if it would
// remove the root scope.
func (env *LEnv) Pop() Scope {
	if len(env.scopes) <= 1 {
		panic("pop called on the root scope")
	}
	s := env.scopes[len(env.scopes)-1]
	env.scopes[len(env.scopes)-1] = nil
	env.scopes = env.scopes[:len(env.scopes)-1]
	env.logger.Debug("pop scope", slog.Int("depth", len(env.scopes)))
	return s
}

// Insert binds name to v in the innermost scope, replacing any binding name
// already has there.
func (env *LEnv) Insert(name string, v *LVal) {
	if v == nil {
		panic("nil value")
	}
	env.scopes[len(env.scopes)-1][name] = v
}

// PutGlobal binds name to v in the root scope.
func (env *LEnv) PutGlobal(name string, v *LVal) {
	if v == nil {
		panic("nil value")
	}
	env.scopes[0][name] = v
}

// Lookup returns the value bound to name in the nearest scope that binds it.
// Lookup returns a SymbolNotFound error if no scope binds name.
func (env *LEnv) Lookup(name string) (*LVal, error) {
	for i := len(env.scopes) - 1; i >= 0; i-- {
		v, ok := env.scopes[i][name]
		if ok {
			return v, nil
		}
	}
	return nil, SymbolNotFound(name)
}

// Set rebinds name in the nearest scope that binds it.  Set returns a
// SymbolNotFound error if no scope binds name.
func (env *LEnv) Set(name string, v *LVal) error {
	for i := len(env.scopes) - 1; i >= 0; i-- {
		if _, ok := env.scopes[i][name]; ok {
			env.scopes[i][name] = v
			return nil
		}
	}
	return SymbolNotFound(name)
}

// Snapshot returns a copy of the innermost scope.
func (env *LEnv) Snapshot() Scope {
	s := env.scopes[len(env.scopes)-1]
	cp := make(Scope, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// MarkRoots implements RootSet.  Every value bound in every scope is a root.
func (env *LEnv) MarkRoots(mark func(*LVal)) {
	for _, s := range env.scopes {
		for _, v := range s {
			mark(v)
		}
	}
}
