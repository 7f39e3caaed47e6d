package repl

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/parser/lexer"
)

// Prompts displayed by RunRepl.
const (
	Prompt     = "LISP> "
	ContPrompt = "> "
)

// Session evaluates lines of interactive input.  Lines are accumulated until
// they form complete expressions, which are then evaluated in order.
type Session struct {
	Interp *lisp.Interp
	Out    io.Writer

	scanner *lexer.Scanner
}

// NewSession returns a Session that evaluates with interp and writes results
// to out.
func NewSession(interp *lisp.Interp, out io.Writer) *Session {
	return &Session{
		Interp:  interp,
		Out:     out,
		scanner: lexer.NewScanner("stdin"),
	}
}

// Prompt returns the prompt for the next line of input.
func (s *Session) Prompt() string {
	if s.scanner.Scanning() {
		return ContPrompt
	}
	return Prompt
}

// Interrupt discards any incomplete expression.
func (s *Session) Interrupt() {
	s.scanner.Reset()
}

// ProcessLine adds line to the pending input.  Once the input is complete
// each expression is evaluated and its value, or error, is written to Out.
// Collection is disabled while input is read and enabled before evaluation.
func (s *Session) ProcessLine(line string) {
	heap := s.Interp.Heap
	enabled := heap.Enabled()
	heap.Disable()
	text, complete, err := s.scanner.Scan(line)
	if err != nil {
		s.restore(enabled)
		s.printErr(err)
		return
	}
	if !complete {
		s.restore(enabled)
		return
	}
	vs, err := s.Interp.Read(text)
	s.restore(enabled)
	if err != nil {
		s.printErr(err)
		return
	}
	defer s.Interp.Protect(vs...)()
	for _, v := range vs {
		r, err := s.Interp.Eval(v)
		if err != nil {
			s.printErr(err)
			return
		}
		fmt.Fprintf(s.Out, "=> %v\n", r)
	}
}

func (s *Session) restore(enabled bool) {
	if enabled {
		s.Interp.Heap.Enable()
	}
}

func (s *Session) printErr(err error) {
	fmt.Fprintf(s.Out, "error: %v\n", err)
}

// RunRepl runs an interactive loop on the terminal until the input ends.
func RunRepl(interp *lisp.Interp) error {
	rl, err := readline.New(Prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	session := NewSession(interp, rl.Stdout())
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			session.Interrupt()
			rl.SetPrompt(session.Prompt())
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		session.ProcessLine(line)
		rl.SetPrompt(session.Prompt())
	}
}
