// Package parser provides a lisp reader.
//
//	expr    := '(' <expr>* ')' | <term> | <comment>
//	term    := <string> | <bool> | <char> | <float> | <int> | <symbol>
//	bool    := /#[tf]/
//	char    := '?' /[^\s()]/
//	float   := /[+-]?[0-9]+\.[0-9]*/
//	int     := /[+-]?[0-9]+/
//	string  := '"' <strcontent> '"'
//	symbol  := /[^\s()";?#0-9][^\s()";]*/
//	comment := ';' /[^\n]*/
//
// Numbers end at whitespace, a parenthesis, a quote or a semicolon.  The
// text given to a Reader must be complete.  Use lexer.Scanner to determine
// when interactive input forms complete expressions.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/parser/lexer"
	parsec "github.com/prataprc/goparsec"
)

// ErrSyntax is returned for text that the lexer accepts but which does not
// form a sequence of expressions.
var ErrSyntax = errors.New("syntax error")

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeList
	nodeComment
)

var nodeTypeStrings = []string{
	nodeInvalid: "INVALID",
	nodeTerm:    "TERM",
	nodeList:    "LIST",
	nodeComment: "COMMENT",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// node is the syntax tree produced by the grammar.  Values are only allocated
// once a whole text has parsed.
type node struct {
	typ      nodeType
	term     string // terminal name for nodeTerm
	text     string
	children []*node
}

type reader struct {
	file string
}

// NewReader returns a lisp.Reader to use in a lisp.Interp.
func NewReader() lisp.Reader {
	return &reader{file: "input"}
}

// Read implements lisp.Reader.
func (r *reader) Read(heap *lisp.Heap, text string) ([]*lisp.LVal, error) {
	_, complete, err := lexer.NewScanner(r.file).Scan(text)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, fmt.Errorf("%s: %w", r.file, io.ErrUnexpectedEOF)
	}
	nodes, err := parse([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.file, err)
	}
	vs := make([]*lisp.LVal, 0, len(nodes))
	for _, n := range nodes {
		v, err := build(heap, n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.file, err)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// parse returns the top-level expressions in text.  Comments are discarded.
func parse(text []byte) ([]*node, error) {
	var nodes []*node
	s := parsec.NewScanner(text)
	p := newParsecParser()
	root, s := p(s)
	for root != nil {
		for _, c := range cleanParsecNodeList([]parsec.ParsecNode{root}) {
			n, ok := c.(*node)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected parse result %T", ErrSyntax, c)
			}
			if n.typ != nodeComment {
				nodes = append(nodes, n)
			}
		}
		root, s = p(s)
	}
	cursor := s.GetCursor()
	if rest := strings.TrimSpace(string(text[cursor:])); rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		return nil, fmt.Errorf("%w: unexpected text starting with %q at byte %d", ErrSyntax, r, cursor)
	}
	return nodes, nil
}

func newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	comment := parsec.Token(`;[^\n]*`, "COMMENT")
	boolean := parsec.Token(`#[tf]`, "BOOL")
	char := parsec.Token(`\?[^\s()]`, "CHAR")
	// Number tokens run to the next delimiter so that buildTerm can reject
	// literals like 1abc instead of splitting them.
	float := parsec.Token(`[+-]?[0-9]+\.[^\s()";]*`, "FLOAT")
	integer := parsec.Token(`[+-]?[0-9][^\s()";]*`, "INT")
	symbol := parsec.Token(`[^\s()";?#0-9][^\s()";]*`, "SYMBOL")
	term := parsec.OrdChoice(termNode,
		parsec.String(),
		boolean,
		char,
		float, // float must precede int, which matches its integer part
		integer,
		symbol, // symbol comes last because it swallows anything
	)
	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	list := parsec.And(listNode, openP, exprList, closeP)
	expr = parsec.OrdChoice(nil, parsec.OrdChoice(commentNode, comment), term, list)
	return expr
}

func termNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	switch term := nodes[0].(type) {
	case string:
		return &node{typ: nodeTerm, term: "STRING", text: term}
	case *parsec.Terminal:
		return &node{typ: nodeTerm, term: term.Name, text: term.Value}
	}
	panic(fmt.Sprintf("unknown term node: %T", nodes[0]))
}

func commentNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return &node{typ: nodeComment}
}

func listNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	n := &node{typ: nodeList}
	// We don't want terminal parsec nodes '(' and ')' or comments
	for _, c := range cleanParsecNodeList(nodes) {
		child, ok := c.(*node)
		if ok && child.typ != nodeComment {
			n.children = append(n.children, child)
		}
	}
	return n
}

func cleanParsecNodeList(lis []parsec.ParsecNode) []parsec.ParsecNode {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case []parsec.ParsecNode:
			nodes = append(nodes, cleanParsecNodeList(node)...)
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// build allocates the value for n and its children.  Collection must be
// disabled on heap while build runs.
func build(heap *lisp.Heap, n *node) (*lisp.LVal, error) {
	switch n.typ {
	case nodeList:
		if len(n.children) == 0 {
			return heap.Nil(), nil
		}
		cells := make([]*lisp.LVal, len(n.children))
		for i, c := range n.children {
			v, err := build(heap, c)
			if err != nil {
				return nil, err
			}
			cells[i] = v
		}
		return heap.Cons(cells...), nil
	case nodeTerm:
		return buildTerm(heap, n)
	default:
		return nil, fmt.Errorf("%w: unexpected %s node", ErrSyntax, n.typ)
	}
}

func buildTerm(heap *lisp.Heap, n *node) (*lisp.LVal, error) {
	switch n.term {
	case "STRING":
		return heap.String(unquoteString(n.text)), nil
	case "BOOL":
		return heap.Bool(n.text == "#t"), nil
	case "CHAR":
		c, _ := utf8.DecodeRuneInString(n.text[1:])
		return heap.Char(c), nil
	case "FLOAT":
		if !isNumber(n.text, true) {
			return nil, fmt.Errorf("%w: %q", lexer.ErrInvalidNumber, n.text)
		}
		x, err := strconv.ParseFloat(n.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number: %w", err)
		}
		return heap.Float(x), nil
	case "INT":
		if !isNumber(n.text, false) {
			return nil, fmt.Errorf("%w: %q", lexer.ErrInvalidNumber, n.text)
		}
		x, err := strconv.ParseInt(n.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number: %w", err)
		}
		return heap.Int(x), nil
	case "SYMBOL":
		return heap.Symbol(n.text), nil
	}
	return nil, fmt.Errorf("%w: unknown terminal %s", ErrSyntax, n.term)
}

// isNumber reports whether text is an optionally signed run of digits.  A
// float has a single decimal point after its first digit.
func isNumber(text string, float bool) bool {
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		text = text[1:]
	}
	digits, points := 0, 0
	for _, c := range text {
		switch {
		case '0' <= c && c <= '9':
			digits++
		case c == '.' && digits > 0:
			points++
		default:
			return false
		}
	}
	if float {
		return digits > 0 && points == 1
	}
	return digits > 0 && points == 0
}

// unquoteString removes the quotes surrounding a string literal.  The string
// terminal has already interpreted any escape sequences.
func unquoteString(s string) string {
	return s[1 : len(s)-1]
}
