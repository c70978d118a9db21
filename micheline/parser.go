// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package micheline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	errUnexpectedEOF = errors.New("unexpected end of input")
	errTrailingInput = errors.New("trailing input after expression")
)

type tokenKind byte

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokSemi
	tokInt
	tokString
	tokBytes
	tokIdent
	tokAnnot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError reports a malformed Micheline source
type SyntaxError struct {
	Pos int
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("micheline syntax error at offset %d: %s", e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Err: errUnexpectedEOF}
			}
			i += end + 4
		case c == '{':
			toks = append(toks, token{kind: tokLBrace, pos: i})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokRBrace, pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c == ';':
			toks = append(toks, token{kind: tokSemi, pos: i})
			i++
		case c == '"':
			s, n, err := scanString(src[i:])
			if err != nil {
				return nil, &SyntaxError{Pos: i, Err: err}
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i += n
		case c == '0' && i+1 < len(src) && src[i+1] == 'x':
			j := i + 2
			for j < len(src) && isHex(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokBytes, text: src[i+2 : j], pos: i})
			i = j
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokInt, text: src[i:j], pos: i})
			i = j
		case c == '%' || c == ':' || c == '@':
			j := i + 1
			for j < len(src) && (isIdentChar(src[j]) || src[j] == '%' || src[j] == '@') {
				j++
			}
			toks = append(toks, token{kind: tokAnnot, text: src[i:j], pos: i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, &SyntaxError{Pos: i, Err: fmt.Errorf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// scanString reads a quoted string starting at s[0] and returns its
// unescaped value and the number of bytes consumed.
func scanString(s string) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return b.String(), i + 1, nil
		case '\n':
			return "", 0, errors.New("newline in string literal")
		case '\\':
			i++
			if i >= len(s) {
				return "", 0, errUnexpectedEOF
			}
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case '"', '\\':
				b.WriteByte(s[i])
			default:
				return "", 0, fmt.Errorf("invalid escape sequence \\%c", s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errUnexpectedEOF
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(t token, format string, args ...interface{}) error {
	if t.kind == tokEOF {
		return &SyntaxError{Pos: t.pos, Err: errUnexpectedEOF}
	}
	return &SyntaxError{Pos: t.pos, Err: fmt.Errorf(format, args...)}
}

// startsExpr reports whether [t] can begin an argument
func startsExpr(t token) bool {
	switch t.kind {
	case tokLBrace, tokLParen, tokInt, tokString, tokBytes, tokIdent:
		return true
	}
	return false
}

// expr parses one expression. Primitive applications only consume
// arguments when [app] is set, so that "pair int nat" parses as a single
// application while each of its arguments is atomic.
func (p *parser) expr(app bool) (Node, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		v, ok := new(big.Int).SetString(t.text, 10)
		if !ok {
			return Node{}, p.fail(t, "invalid integer %q", t.text)
		}
		return Node{Kind: KindInt, Int: v}, nil
	case tokString:
		return NewString(t.text), nil
	case tokBytes:
		if len(t.text)%2 != 0 {
			return Node{}, p.fail(t, "odd number of hex digits")
		}
		b, err := hex.DecodeString(t.text)
		if err != nil {
			return Node{}, p.fail(t, "invalid bytes: %s", err)
		}
		return Node{Kind: KindBytes, Bytes: b}, nil
	case tokLParen:
		n, err := p.expr(true)
		if err != nil {
			return Node{}, err
		}
		if c := p.next(); c.kind != tokRParen {
			return Node{}, p.fail(c, "expected ')'")
		}
		return n, nil
	case tokLBrace:
		items, err := p.seq(tokRBrace)
		if err != nil {
			return Node{}, err
		}
		return NewSeq(items...), nil
	case tokIdent:
		n := Node{Kind: KindPrim, Prim: t.text}
		for p.peek().kind == tokAnnot {
			n.Annots = append(n.Annots, p.next().text)
		}
		if !app {
			return n, nil
		}
		for startsExpr(p.peek()) {
			arg, err := p.expr(false)
			if err != nil {
				return Node{}, err
			}
			n.Args = append(n.Args, arg)
		}
		return n, nil
	default:
		return Node{}, p.fail(t, "unexpected token")
	}
}

// seq parses ';' separated expressions up to [end]
func (p *parser) seq(end tokenKind) ([]Node, error) {
	items := []Node{}
	for {
		if p.peek().kind == end {
			p.next()
			return items, nil
		}
		n, err := p.expr(true)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		switch t := p.peek(); t.kind {
		case tokSemi:
			p.next()
		case end:
		default:
			return nil, p.fail(t, "expected ';'")
		}
	}
}

// Parse parses a single expression from [src]
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return Node{}, err
	}
	p := &parser{toks: toks}
	n, err := p.expr(true)
	if err != nil {
		return Node{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return Node{}, &SyntaxError{Pos: t.pos, Err: errTrailingInput}
	}
	return n, nil
}

// ParseSeq parses a list of top level expressions separated by ';', as
// found in script and fixture files.
func ParseSeq(src string) ([]Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.seq(tokEOF)
}

// MustParse is like Parse but panics on error. It is meant for literals
// in tests and package level tables.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}
