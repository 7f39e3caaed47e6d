package lexer

import (
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/skeem/parser/token"
)

// Scanner accumulates lines of input until they form a sequence of complete
// expressions.  Text is incomplete while a list is open or while it ends in
// the middle of a string or character literal.
type Scanner struct {
	file     string
	buf      string
	scanning bool
	charNext bool // the buffered text ends with the '?' of a character literal
}

// NewScanner returns a Scanner that annotates errors with the given file
// name.
func NewScanner(file string) *Scanner {
	return &Scanner{file: file}
}

// Scanning returns true if the Scanner holds an incomplete expression.
func (s *Scanner) Scanning() bool {
	return s.scanning
}

// Reset discards any incomplete expression held by the Scanner.
func (s *Scanner) Reset() {
	s.buf = ""
	s.scanning = false
	s.charNext = false
}

// Scan adds line to the buffered text.  When the buffered text is complete
// Scan returns it with a true second value and the Scanner is reset.  An
// incomplete text returns false and waits for more lines.  Text that can
// never be completed returns an error wrapping ErrUnmatchedParen or
// ErrInvalidChar, or another syntax error, and the buffered text is dropped.
func (s *Scanner) Scan(line string) (text string, complete bool, err error) {
	switch {
	case !s.scanning:
		s.buf = line
	case s.charNext:
		// A character literal split at the end of a line continues with the
		// first rune of the next line.
		s.buf += line
	default:
		s.buf += "\n" + line
	}
	depth, charNext, incomplete, err := balance(s.file, s.buf)
	if err != nil {
		s.Reset()
		return "", false, err
	}
	if depth > 0 || incomplete {
		s.scanning = true
		s.charNext = charNext
		return "", false, nil
	}
	text = s.buf
	s.Reset()
	return text, true, nil
}

// balance lexes text and returns the number of lists left open.  If the text
// ends inside of a literal incomplete is true and charNext reports whether the
// literal is a character literal.
func balance(file string, text string) (depth int, charNext bool, incomplete bool, err error) {
	lex := New(token.NewScanner(file, text))
	for {
		tok := lex.NextToken()
		switch tok.Type {
		case token.EOF:
			return depth, false, false, nil
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
			if depth < 0 {
				return 0, false, false, fmt.Errorf("%v: %w", tok.Source, ErrUnmatchedParen)
			}
		case token.ERROR:
			if errors.Is(lex.Err(), io.ErrUnexpectedEOF) {
				pos := tok.Source.Pos
				return depth, pos < len(text) && text[pos] == '?', true, nil
			}
			return 0, false, false, lex.Err()
		}
	}
}
