package lisp

import (
	"fmt"
	"log/slog"
)

// DefaultGCThreshold is the smallest collection threshold a Heap uses unless
// configured otherwise with WithGCThreshold.
const DefaultGCThreshold = 64 << 10

// Accounted sizes of heap values in bytes.  They approximate the memory held
// by a value and only need to be consistent between allocation and sweep.
const (
	valueSize = 96
	wordSize  = 8
)

// RootSet is a source of garbage collection roots.  MarkRoots must call mark
// on every value it holds.
type RootSet interface {
	MarkRoots(mark func(*LVal))
}

// HeapStats is a snapshot of Heap accounting.
type HeapStats struct {
	Live        int // values in the live set
	Allocated   int // accounted bytes of live values
	Threshold   int // allocation level that triggers the next collection
	Collections int // completed collection cycles
	Reclaimed   int // values reclaimed across all cycles
}

// Heap is the sole owner of every lisp value.  Values are allocated through
// the Heap and reclaimed by its mark-sweep collector once they are no longer
// reachable from a root.
type Heap struct {
	live         []*LVal
	roots        []RootSet
	pinned       []*LVal
	lnil         *LVal
	ltrue        *LVal
	lfalse       *LVal
	disabled     bool
	allocated    int
	threshold    int
	minThreshold int
	collections  int
	reclaimed    int
	serial       uint64
	logger       *slog.Logger
}

// NewHeap initializes and returns a new Heap containing the nil, true and
// false singletons.
func NewHeap() *Heap {
	h := &Heap{
		threshold:    DefaultGCThreshold,
		minThreshold: DefaultGCThreshold,
		logger:       slog.Default(),
	}
	h.lnil = h.pin(LVal{Type: LCons})
	h.ltrue = h.pin(LVal{Type: LBool, Bool: true})
	h.lfalse = h.pin(LVal{Type: LBool, Bool: false})
	return h
}

func (h *Heap) pin(v LVal) *LVal {
	obj := h.Alloc(v)
	h.pinned = append(h.pinned, obj)
	return obj
}

// AddRoots registers rs as a source of roots for every following collection.
func (h *Heap) AddRoots(rs RootSet) {
	h.roots = append(h.roots, rs)
}

// SetMinThreshold sets the floor below which the collection threshold is
// never lowered.
func (h *Heap) SetMinThreshold(n int) {
	h.minThreshold = n
	h.threshold = max(h.allocated/2, n)
}

// Disable prevents collections until Enable is called.  Callers disable
// collection while they hold values that are not yet reachable from a root,
// such as a partially read expression.
func (h *Heap) Disable() {
	h.disabled = true
}

// Enable allows collections again after a call to Disable.
func (h *Heap) Enable() {
	h.disabled = false
}

// Enabled returns true unless collection has been disabled.
func (h *Heap) Enabled() bool {
	return !h.disabled
}

// Len returns the number of values in the live set.
func (h *Heap) Len() int {
	return len(h.live)
}

// Allocated returns the accounted size of the live set.
func (h *Heap) Allocated() int {
	return h.allocated
}

// Threshold returns the allocation level that triggers the next collection.
func (h *Heap) Threshold() int {
	return h.threshold
}

// allocatedSince reports whether v was allocated after the heap had made n
// allocations.
func (h *Heap) allocatedSince(v *LVal, n uint64) bool {
	return v.serial > n
}

// Stats returns a snapshot of the heap's accounting.
func (h *Heap) Stats() HeapStats {
	return HeapStats{
		Live:        len(h.live),
		Allocated:   h.allocated,
		Threshold:   h.threshold,
		Collections: h.collections,
		Reclaimed:   h.reclaimed,
	}
}

// Alloc adds a copy of v to the live set and returns it.  If the accounted
// size of the heap exceeds the collection threshold a collection runs before
// the new value joins the live set.
func (h *Heap) Alloc(v LVal) *LVal {
	obj := &LVal{}
	*obj = v
	obj.marked = false
	obj.freed = false
	obj.size = accountedSize(obj)
	h.serial++
	obj.serial = h.serial
	h.allocated += obj.size
	if h.allocated > h.threshold {
		// obj is not in the live set yet but the values it refers to are.
		h.collect(obj)
		obj.marked = false
	}
	h.live = append(h.live, obj)
	return obj
}

func accountedSize(v *LVal) int {
	n := valueSize
	switch v.Type {
	case LString, LSymbol:
		n += len(v.Str)
	case LCons:
		n += wordSize * len(v.Cells)
	case LProc:
		switch p := v.Proc.(type) {
		case *Primitive:
			n += 2*wordSize + len(p.Name)
		case *Lambda:
			n += 3 * wordSize
			for k := range p.Env {
				n += 2*wordSize + len(k)
			}
		}
	}
	return n
}

// Collect runs a full mark-sweep cycle and returns the number of values
// reclaimed.  Collect returns 0 without doing anything when collection is
// disabled.
//
// Collect panics if a reclaimed value is found to be reachable from a root.
// That can only happen when a value was held outside of every root set while
// the collector ran, which is a bug in the caller and not a recoverable
// condition.
func (h *Heap) Collect() int {
	return h.collect(nil)
}

func (h *Heap) collect(extra *LVal) int {
	if h.disabled {
		return 0
	}
	h.mark(extra)
	for _, v := range h.pinned {
		h.mark(v)
	}
	for _, rs := range h.roots {
		rs.MarkRoots(h.mark)
	}

	n := 0
	kept := h.live[:0]
	for _, v := range h.live {
		if !v.marked {
			h.allocated -= v.size
			v.freed = true
			n++
			continue
		}
		v.marked = false
		kept = append(kept, v)
	}
	for i := len(kept); i < len(h.live); i++ {
		h.live[i] = nil
	}
	h.live = kept

	h.threshold = max(h.allocated/2, h.minThreshold)
	h.collections++
	h.reclaimed += n
	h.logger.Debug("gc",
		slog.Int("reclaimed", n),
		slog.Int("live", len(h.live)),
		slog.Int("allocated", h.allocated),
		slog.Int("threshold", h.threshold))
	return n
}

func (h *Heap) mark(v *LVal) {
	if v == nil || v.marked {
		return
	}
	if v.freed {
		panic(fmt.Sprintf("heap: reclaimed %s value is reachable: %v", v.Type, v))
	}
	v.marked = true
	switch v.Type {
	case LCons:
		for _, c := range v.Cells {
			h.mark(c)
		}
	case LProc:
		lam, ok := v.Proc.(*Lambda)
		if !ok {
			return
		}
		h.mark(lam.Params)
		h.mark(lam.Body)
		for _, b := range lam.Env {
			h.mark(b)
		}
	}
}

// Nil returns the empty list singleton.
func (h *Heap) Nil() *LVal {
	return h.lnil
}

// True returns the true singleton.
func (h *Heap) True() *LVal {
	return h.ltrue
}

// False returns the false singleton.
func (h *Heap) False() *LVal {
	return h.lfalse
}

// Bool returns the boolean singleton for ok.
func (h *Heap) Bool(ok bool) *LVal {
	if ok {
		return h.ltrue
	}
	return h.lfalse
}

// Int allocates an LInt value.
func (h *Heap) Int(x int64) *LVal {
	return h.Alloc(LVal{Type: LInt, Int: x})
}

// Float allocates an LFloat value.
func (h *Heap) Float(x float64) *LVal {
	return h.Alloc(LVal{Type: LFloat, Float: x})
}

// Char allocates an LChar value.
func (h *Heap) Char(c rune) *LVal {
	return h.Alloc(LVal{Type: LChar, Char: c})
}

// String allocates an LString value.
func (h *Heap) String(s string) *LVal {
	return h.Alloc(LVal{Type: LString, Str: s})
}

// Symbol allocates an LSymbol value.
func (h *Heap) Symbol(name string) *LVal {
	return h.Alloc(LVal{Type: LSymbol, Str: name})
}

// Cons allocates a list containing cells.  An empty list is always the nil
// singleton.
func (h *Heap) Cons(cells ...*LVal) *LVal {
	if len(cells) == 0 {
		return h.lnil
	}
	cp := make([]*LVal, len(cells))
	copy(cp, cells)
	return h.Alloc(LVal{Type: LCons, Cells: cp})
}

// Primitive allocates a procedure implemented by fn.
func (h *Heap) Primitive(name string, fn PrimitiveFunc) *LVal {
	return h.Alloc(LVal{Type: LProc, Proc: &Primitive{Name: name, Fn: fn}})
}

// Lambda allocates a user defined procedure.  The env argument is nil for
// anything but a closure.
func (h *Heap) Lambda(params, body *LVal, env Scope) *LVal {
	return h.Alloc(LVal{Type: LProc, Proc: &Lambda{Params: params, Body: body, Env: env}})
}
