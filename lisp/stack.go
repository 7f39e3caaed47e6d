package lisp

import (
	"fmt"
	"io"
)

// CallStack is the trace of named procedure calls that are executing.  It is
// diagnostic only and has no effect on evaluation.
type CallStack struct {
	Frames []CallFrame
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	Name string
}

// Height returns the number of frames on the stack.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Push pushes a new stack frame for the procedure bound to name.
func (s *CallStack) Push(name string) {
	s.Frames = append(s.Frames, CallFrame{Name: name})
}

// Pop removes the top CallFrame from the stack and returns it.  Pop panics if
// the stack is empty.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// Reset removes all frames from the stack.
func (s *CallStack) Reset() {
	s.Frames = s.Frames[:0]
}

// Names returns the names of the procedures on the stack, innermost first.
func (s *CallStack) Names() []string {
	names := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		names[len(names)-1-i] = f.Name
	}
	return names
}

// Copy creates a copy of the current stack so that it can be inspected after
// the stack has changed.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{frames}
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, s.Frames[i].Name)
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
