package query

import (
	"errors"
	"fmt"
	"strings"
)

// maxDepth bounds nesting of parentheses and not.
const maxDepth = 64

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("query syntax error")

// SyntaxError reports where parsing failed, as a rune offset into the expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d: %s", ErrSyntax.Error(), e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

type parser struct {
	tokens []token
	pos    int
	end    int
	depth  int
}

// Parse compiles a boolean expression over field:value atoms.
//
// Grammar, lowest precedence first:
//
//	expr    = and { "or" and }
//	and     = unary { "and" unary }
//	unary   = "not" unary | primary
//	primary = atom | "True" | "False" | "(" expr ")"
//
// Keywords are lowercase; use Normalize for spaced uppercase forms.
func Parse(expr string) (*Expression, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}

	p := &parser{tokens: tokens, end: len([]rune(expr))}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peekToken(); tok != nil {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}

	atoms := make([]Atom, 0, len(tokens))
	for _, t := range tokens {
		if t.kind == tokAtom {
			atoms = append(atoms, t.atom)
		}
	}
	return &Expression{source: expr, root: root, atoms: atoms}, nil
}

func (p *parser) peekToken() *token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) readToken() *token {
	tok := p.peekToken()
	if tok != nil {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peekToken()
		if tok == nil || tok.kind != tokOr {
			return left, nil
		}
		p.readToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peekToken()
		if tok == nil || tok.kind != tokAnd {
			return left, nil
		}
		p.readToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	tok := p.peekToken()
	if tok != nil && tok.kind == tokNot {
		p.readToken()
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.readToken()
	if tok == nil {
		return nil, &SyntaxError{Pos: p.end, Msg: "unexpected end of expression"}
	}
	switch tok.kind {
	case tokAtom:
		return atomNode{atom: tok.atom}, nil
	case tokTrue:
		return literalNode(true), nil
	case tokFalse:
		return literalNode(false), nil
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.readToken()
		if closing == nil {
			return nil, &SyntaxError{Pos: p.end, Msg: "expected )"}
		}
		if closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: fmt.Sprintf("expected ), got %q", closing.text)}
		}
		return inner, nil
	default:
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > maxDepth {
		return &SyntaxError{Pos: pos, Msg: fmt.Sprintf("nesting deeper than %d", maxDepth)}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// describe renders a node tree for debugging and tests.
func describe(n node) string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}
