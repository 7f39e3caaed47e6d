package token

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from source text held in
// memory.  Positions are tracked in bytes with lines and columns starting at
// 1.
type Scanner struct {
	file string
	text string

	start     int // start of the current token
	startLine int
	startCol  int

	pos  int // index of c in text
	next int // index of the rune following c
	line int // line of c
	col  int // column of c
	c    Rune
}

// NewScanner initializes and returns a new Scanner for text.  The file name
// is only used to annotate locations.
func NewScanner(file string, text string) *Scanner {
	return &Scanner{
		file:      file,
		text:      text,
		line:      1,
		startLine: 1,
		startCol:  1,
	}
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col + 1
	if s.c.C == '\n' {
		s.startLine++
		s.startCol = 1
	}
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.text[s.start:s.next]
}

// Rune returns the current unicode rune that is being scanned.  The rune
// returned by Rune is the last rune in a token returned by EmitToken.
func (s *Scanner) Rune() rune {
	return s.c.C
}

// Peek returns the next rune to be scanned, if there are any.  If an invalid
// utf-8 sequence or the end of the text prevents futher runes from being
// scanned Peek returns a false second value.
func (s *Scanner) Peek() (rune, bool) {
	if s.next >= len(s.text) {
		return 0, false
	}
	c, n := utf8.DecodeRuneInString(s.text[s.next:])
	if (Rune{c, n}).IsRuneError() {
		return utf8.RuneError, false
	}
	return c, true
}

// ScanRune attempts to scan a utf-8 rune from the input for inclusion in the
// current token.  ScanRune returns io.EOF at the end of the text.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.text) {
		return io.EOF
	}
	c, n := utf8.DecodeRuneInString(s.text[s.next:])
	r := Rune{c, n}
	if r.IsRuneError() {
		return fmt.Errorf("%v: invalid utf-8 sequence in source text starting with byte %q", s.Loc(), s.text[s.next])
	}
	if s.c.C == '\n' {
		s.line++
		s.col = 0
	}
	s.pos = s.next
	s.next += n
	s.col++
	s.c = r
	return nil
}

// LocStart returns a Location referencing the beginning of the current token,
// just beyond the end of the previous token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position, the last
// position of the current token.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Pos:  s.pos,
		Line: s.line,
		Col:  s.col,
	}
}

// Rune contains a rune that read by Scanner and its encoded length.
type Rune struct {
	C rune
	N int
}

// IsRuneError returns true if Rune represents an invalid utf-8 sequence read
// by utf8.DecodeRune.
func (r Rune) IsRuneError() bool {
	return r.C == utf8.RuneError && r.N == 1
}
