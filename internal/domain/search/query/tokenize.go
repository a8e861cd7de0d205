package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// atomPattern mirrors `\w+:\w+` with Unicode word characters.
const atomPattern = `[\p{L}\p{N}_]+:[\p{L}\p{N}_]+`

var (
	atomRegex     = regexp.MustCompile(atomPattern)
	fullAtomRegex = regexp.MustCompile(`^([\p{L}\p{N}_]+):([\p{L}\p{N}_]+)$`)
)

type tokenKind int

const (
	tokAtom tokenKind = iota
	tokTrue
	tokFalse
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
	atom Atom
}

// tokenize splits an expression into tokens. Parentheses split words; anything
// else that is not whitespace groups into a word which must be an atom, a
// keyword or a literal. Unknown words are rejected here, which is what keeps
// arbitrary text out of evaluation.
func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	for pos := 0; pos < len(runes); {
		c := runes[pos]
		switch {
		case unicode.IsSpace(c):
			pos++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: pos})
			pos++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: pos})
			pos++
		default:
			start := pos
			for pos < len(runes) && !unicode.IsSpace(runes[pos]) && runes[pos] != '(' && runes[pos] != ')' {
				pos++
			}
			word := string(runes[start:pos])
			tok, err := classify(word, start)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func classify(word string, pos int) (token, error) {
	switch word {
	case "and":
		return token{kind: tokAnd, text: word, pos: pos}, nil
	case "or":
		return token{kind: tokOr, text: word, pos: pos}, nil
	case "not":
		return token{kind: tokNot, text: word, pos: pos}, nil
	case "True":
		return token{kind: tokTrue, text: word, pos: pos}, nil
	case "False":
		return token{kind: tokFalse, text: word, pos: pos}, nil
	}
	if m := fullAtomRegex.FindStringSubmatch(word); m != nil {
		return token{kind: tokAtom, text: word, pos: pos, atom: Atom{Field: m[1], Value: m[2]}}, nil
	}
	return token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected %q", word)}
}

// Normalize lowercases the AND, OR and NOT keywords when surrounded by single spaces.
func Normalize(expr string) string {
	expr = strings.ReplaceAll(expr, " AND ", " and ")
	expr = strings.ReplaceAll(expr, " OR ", " or ")
	return strings.ReplaceAll(expr, " NOT ", " not ")
}

// Atoms extracts every field:value atom from free text, in order, keeping duplicates.
func Atoms(expr string) []Atom {
	matches := atomRegex.FindAllString(expr, -1)
	if len(matches) == 0 {
		return nil
	}
	atoms := make([]Atom, 0, len(matches))
	for _, m := range matches {
		field, value, _ := strings.Cut(m, ":")
		atoms = append(atoms, Atom{Field: field, Value: value})
	}
	return atoms
}
