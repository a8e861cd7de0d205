package query

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

func testRecord() record.Record {
	return record.New(
		record.Field{Name: "nombre", Value: "Contrato A"},
		record.Field{Name: "tipo", Value: "ruc"},
		record.Field{Name: "año", Value: "2024"},
	)
}

func TestParse_Tree(t *testing.T) {
	tests := []struct {
		q    string
		want string
	}{
		{"tipo:ruc", "tipo:ruc"},
		{"(tipo:ruc)", "tipo:ruc"},
		{"a:1 and b:2", "(a:1 and b:2)"},
		{"a:1 or b:2 and c:3", "(a:1 or (b:2 and c:3))"},
		{"a:1 and b:2 or c:3", "((a:1 and b:2) or c:3)"},
		{"not a:1 and b:2", "(not a:1 and b:2)"},
		{"not (a:1 or b:2)", "not (a:1 or b:2)"},
		{"not not True", "not not True"},
		{"a:1 and(b:2)", "(a:1 and b:2)"},
		{"  False   or\ttipo:ruc ", "(False or tipo:ruc)"},
	}
	for _, tc := range tests {
		t.Run(tc.q, func(t *testing.T) {
			e, err := Parse(tc.q)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.q, err)
			}
			if got := e.String(); got != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.q, got, tc.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"tipo:ruc and import os",
		"tipo:ruc AND nombre:x",
		"contrato",
		"tipo:ruc nombre:x",
		"(tipo:ruc",
		"tipo:ruc)",
		"and tipo:ruc",
		"tipo:ruc and",
		"not",
		"()",
		"a:b:c",
		"tipo:ruc,nombre:x",
		"tipo:con espacio",
		"__import__('os')",
		"true",
	}
	for _, q := range bad {
		t.Run(q, func(t *testing.T) {
			_, err := Parse(q)
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) err = %v, want ErrSyntax", q, err)
			}
		})
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	_, err := Parse("tipo:ruc and import")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Pos != 13 {
		t.Errorf("Pos = %d, want 13", se.Pos)
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := strings.Repeat("(", maxDepth+1) + "a:1" + strings.Repeat(")", maxDepth+1)
	if _, err := Parse(deep); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected depth error, got %v", err)
	}

	ok := strings.Repeat("(", maxDepth) + "a:1" + strings.Repeat(")", maxDepth)
	if _, err := Parse(ok); err != nil {
		t.Errorf("unexpected error at max depth: %v", err)
	}

	nots := strings.Repeat("not ", maxDepth+1) + "a:1"
	if _, err := Parse(nots); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected depth error for not chain, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	rec := testRecord()
	tests := []struct {
		q    string
		want bool
	}{
		{"tipo:ruc", true},
		{"tipo:RUC", true},
		{"tipo:ru", true},
		{"tipo:obligado", false},
		{"missing:ruc", false},
		{"tipo:ruc and nombre:contrato", true},
		{"tipo:ruc and nombre:factura", false},
		{"tipo:obligado or nombre:contrato", true},
		{"not tipo:obligado", true},
		{"not (tipo:ruc or nombre:factura)", false},
		{"año:2024", true},
		{"True", true},
		{"False or tipo:ruc", true},
		{"tipo:ruc and import os", false},
		{"(tipo:ruc", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := Evaluate(tc.q, rec); got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestExpression_Atoms(t *testing.T) {
	e, err := Parse("tipo:ruc and (nombre:a or tipo:ruc)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Atom{{"tipo", "ruc"}, {"nombre", "a"}, {"tipo", "ruc"}}
	if got := e.Atoms(); !reflect.DeepEqual(got, want) {
		t.Errorf("Atoms() = %v, want %v", got, want)
	}
	if e.Source() != "tipo:ruc and (nombre:a or tipo:ruc)" {
		t.Errorf("Source() = %q", e.Source())
	}
}

func TestAtoms_FreeText(t *testing.T) {
	tests := []struct {
		q    string
		want []Atom
	}{
		{"tipo:ruc and import os", []Atom{{"tipo", "ruc"}}},
		{"a:b:c", []Atom{{"a", "b"}}},
		{"x tipo:ruc,nombre:contrato", []Atom{{"tipo", "ruc"}, {"nombre", "contrato"}}},
		{"año:2024", []Atom{{"año", "2024"}}},
		{"no atoms here", nil},
	}
	for _, tc := range tests {
		if got := Atoms(tc.q); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Atoms(%q) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a:1 AND b:2", "a:1 and b:2"},
		{"a:1 OR b:2 AND NOT c:3", "a:1 or b:2 and not c:3"},
		{"a:1 AND NOT(c:3)", "a:1 and NOT(c:3)"},
		{"a:1 OR b:2 AND  NOT c:3", "a:1 or b:2 and  not c:3"},
		{"NOT a:1", "NOT a:1"},
		{"a:1 And b:2", "a:1 And b:2"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAtom_Matches(t *testing.T) {
	rec := testRecord()
	if !(Atom{Field: "nombre", Value: "TRATO"}).Matches(rec) {
		t.Error("expected case-insensitive substring match")
	}
	if (Atom{Field: "Nombre", Value: "contrato"}).Matches(rec) {
		t.Error("field names are case-sensitive")
	}
}
