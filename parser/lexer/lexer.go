package lexer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/skeem/parser/token"
)

// Errors reported for text that can never form a valid expression.
var (
	ErrUnmatchedParen = errors.New("unmatched parenthesis")
	ErrInvalidChar    = errors.New("invalid character literal")
	ErrInvalidNumber  = errors.New("invalid number literal")
)

// symbolDelims are the runes that end a symbol.
const symbolDelims = "()\";"

// Lexer splits source text into tokens.  When the text ends inside of a
// string or character literal the lexer emits an ERROR token and Err returns
// an error wrapping io.ErrUnexpectedEOF.
type Lexer struct {
	scanner *token.Scanner
	ch      rune // current unicode rune

	err error
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
	}
	return lex
}

// Err returns the error behind the last ERROR token, if any.
func (lex *Lexer) Err() error {
	return lex.err
}

func (lex *Lexer) NextToken() *token.Token {
	if lex.err != nil {
		return lex.emit(token.ERROR, lex.err.Error())
	}
	err := lex.skipWhitespace()
	if err != nil {
		return lex.emitError(err, true)
	}
	err = lex.readChar()
	if err != nil {
		return lex.emitError(err, true)
	}
	switch lex.ch {
	case '(':
		return lex.scanner.EmitToken(token.PAREN_L)
	case ')':
		return lex.scanner.EmitToken(token.PAREN_R)
	case ';':
		for lex.peekRune() != '\n' {
			err := lex.readChar()
			if err == io.EOF {
				return lex.scanner.EmitToken(token.COMMENT)
			}
			if err != nil {
				return lex.emitError(err, false)
			}
		}
		return lex.scanner.EmitToken(token.COMMENT)
	case '#':
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
		switch lex.ch {
		case 't', 'f':
			if !isDelim(lex.peekRune()) {
				return lex.errorf("invalid boolean literal")
			}
			return lex.scanner.EmitToken(token.BOOL)
		default:
			return lex.errorf("invalid meta character %q", lex.ch)
		}
	case '?':
		return lex.readCharLiteral()
	case '"':
		for lex.peekRune() != '"' {
			err := lex.readChar()
			if err != nil {
				return lex.emitError(err, false)
			}
			if lex.ch == '\\' {
				// Wait until parsing to check the escaped character
				err := lex.readChar()
				if err != nil {
					return lex.emitError(err, false)
				}
			}
		}
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
		return lex.scanner.EmitToken(token.STRING)
	case '+', '-':
		if isDigit(lex.peekRune()) {
			return lex.readNumber()
		}
		return lex.readSymbol()
	default:
		if isDigit(lex.ch) {
			return lex.readNumber()
		}
		return lex.readSymbol()
	}
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

// emitError emits an ERROR token for err.  The end of the text is only
// expected between tokens.
func (lex *Lexer) emitError(err error, expectEOF bool) *token.Token {
	if err == io.EOF {
		if expectEOF {
			return lex.emit(token.EOF, "")
		}
		err = fmt.Errorf("%v: %w", lex.scanner.LocStart(), io.ErrUnexpectedEOF)
	}
	lex.err = err
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emitError(fmt.Errorf("%v: "+format, append([]interface{}{lex.scanner.LocStart()}, v...)...), false)
}

// readCharLiteral reads the rune following '?'.  The literal must be followed
// by whitespace, a parenthesis or the end of the text.
func (lex *Lexer) readCharLiteral() *token.Token {
	c, ok := lex.scanner.Peek()
	if !ok {
		return lex.emitError(lex.readChar(), false)
	}
	if unicode.IsSpace(c) || c == '(' || c == ')' {
		return lex.emitError(fmt.Errorf("%v: %w", lex.scanner.LocStart(), ErrInvalidChar), false)
	}
	err := lex.readChar()
	if err != nil {
		return lex.emitError(err, false)
	}
	next, ok := lex.scanner.Peek()
	if ok && !unicode.IsSpace(next) && next != '(' && next != ')' {
		return lex.emitError(fmt.Errorf("%v: %w", lex.scanner.LocStart(), ErrInvalidChar), false)
	}
	return lex.scanner.EmitToken(token.CHAR)
}

func (lex *Lexer) readSymbol() *token.Token {
	for !isDelim(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, true)
		}
	}
	return lex.scanner.EmitToken(token.SYMBOL)
}

func (lex *Lexer) readNumber() *token.Token {
	for isDigit(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
	}
	if lex.peekRune() != '.' {
		return lex.endNumber(token.INT)
	}
	// A decimal point switches the literal to a float.
	err := lex.readChar()
	if err != nil {
		return lex.emitError(err, false)
	}
	for isDigit(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return lex.emitError(err, false)
		}
	}
	return lex.endNumber(token.FLOAT)
}

// endNumber emits a number token.  A number must be followed by a delimiter.
func (lex *Lexer) endNumber(typ token.Type) *token.Token {
	if !isDelim(lex.peekRune()) {
		return lex.emitError(fmt.Errorf("%v: %w", lex.scanner.LocStart(), ErrInvalidNumber), false)
	}
	return lex.scanner.EmitToken(typ)
}

func (lex *Lexer) skipWhitespace() error {
	for unicode.IsSpace(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return err
		}
	}
	lex.scanner.Ignore()
	return nil
}

// peekRune returns the next rune or 0 at the end of the text.
func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) readChar() error {
	err := lex.scanner.ScanRune()
	if err != nil {
		return err
	}
	lex.ch = lex.scanner.Rune()
	return nil
}

func isDelim(c rune) bool {
	return c == 0 || unicode.IsSpace(c) || strings.ContainsRune(symbolDelims, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
