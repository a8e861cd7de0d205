package query

import (
	"strings"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// Atom is a field:value condition. It holds when the record has the field and
// the value occurs in the field text, ignoring case.
type Atom struct {
	Field string
	Value string
}

// String returns the atom in field:value form.
func (a Atom) String() string { return a.Field + ":" + a.Value }

// Matches evaluates the atom against a record.
func (a Atom) Matches(rec record.Record) bool {
	text, ok := rec.Get(a.Field)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(a.Value))
}

// Expression is a compiled boolean query. It is immutable and safe for concurrent use.
type Expression struct {
	source string
	root   node
	atoms  []Atom
}

// Match evaluates the expression against one record.
func (e *Expression) Match(rec record.Record) bool {
	return e.root.eval(rec)
}

// Atoms returns the atoms in source order, duplicates included.
func (e *Expression) Atoms() []Atom {
	out := make([]Atom, len(e.atoms))
	copy(out, e.atoms)
	return out
}

// Source returns the text the expression was parsed from.
func (e *Expression) Source() string { return e.source }

// String renders the parsed tree with explicit grouping.
func (e *Expression) String() string { return describe(e.root) }

// Evaluate parses expr and matches it against rec. Any parse failure is a non-match.
func Evaluate(expr string, rec record.Record) bool {
	compiled, err := Parse(expr)
	if err != nil {
		return false
	}
	return compiled.Match(rec)
}

type node interface {
	eval(rec record.Record) bool
	write(b *strings.Builder)
}

type atomNode struct{ atom Atom }

func (n atomNode) eval(rec record.Record) bool { return n.atom.Matches(rec) }
func (n atomNode) write(b *strings.Builder)    { b.WriteString(n.atom.String()) }

type literalNode bool

func (n literalNode) eval(record.Record) bool { return bool(n) }
func (n literalNode) write(b *strings.Builder) {
	if n {
		b.WriteString("True")
		return
	}
	b.WriteString("False")
}

type notNode struct{ inner node }

func (n notNode) eval(rec record.Record) bool { return !n.inner.eval(rec) }
func (n notNode) write(b *strings.Builder) {
	b.WriteString("not ")
	n.inner.write(b)
}

type andNode struct{ left, right node }

func (n andNode) eval(rec record.Record) bool { return n.left.eval(rec) && n.right.eval(rec) }
func (n andNode) write(b *strings.Builder) {
	b.WriteByte('(')
	n.left.write(b)
	b.WriteString(" and ")
	n.right.write(b)
	b.WriteByte(')')
}

type orNode struct{ left, right node }

func (n orNode) eval(rec record.Record) bool { return n.left.eval(rec) || n.right.eval(rec) }
func (n orNode) write(b *strings.Builder) {
	b.WriteByte('(')
	n.left.write(b)
	b.WriteString(" or ")
	n.right.write(b)
	b.WriteByte(')')
}
