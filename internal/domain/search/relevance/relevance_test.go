package relevance

import (
	"math"
	"testing"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

func rec(pairs ...string) record.Record {
	fields := make([]record.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, record.Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return record.New(fields...)
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRecord(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		rec           record.Record
		caseSensitive bool
		want          float64
	}{
		{"prefix", "contrato", rec("nombre", "Contrato A", "tipo", "ruc"), false, 10.8},
		{"whole field", "ruc", rec("tipo", "ruc"), false, 20.3},
		{"prefix and suffix", "ab", rec("f", "abxab"), false, 15.2},
		{"suffix", "ab", rec("f", "xab"), false, 5.2},
		{"inside", "ab", rec("f", "xaby"), false, 2.2},
		{"no match", "zz", rec("f", "abc"), false, 0},
		{
			"multi word multi field", "contrato servicio",
			rec("nombre", "Contrato de Servicio B", "contenido", "024 contrato servicio prestación"),
			false, 19.2,
		},
		{"reserved ignored", "ruc", rec("_tipo", "ruc"), false, 0},
		{"rune length bonus", "acción", rec("f", "acción"), false, 20.6},
		{"case sensitive hit", "Contrato", rec("nombre", "Contrato A"), true, 10.8},
		{"case sensitive miss", "contrato", rec("nombre", "Contrato A"), true, 0},
		{"blank query", "   ", rec("f", "x"), false, 0},
		{"repeated word counts twice", "ruc ruc", rec("tipo", "ruc"), false, 40.6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Record(tc.query, tc.rec, tc.caseSensitive)
			if !almostEqual(got, tc.want) {
				t.Errorf("Record(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestField(t *testing.T) {
	tests := []struct {
		query, value string
		want         float64
	}{
		{"obligado", "obligado", 100},
		{"OBLIGADO", "Obligado", 100},
		{"obl", "obligado", 80},
		{"gado", "obligado", 60},
		{"lig", "obligado", 55},
		{"xy", "ññxyzz", 40 + 20*4.0/6.0},
		{"zz", "obligado", 0},
		{"x", "", 0},
	}
	for _, tc := range tests {
		got := Field(tc.query, tc.value)
		if !almostEqual(got, tc.want) {
			t.Errorf("Field(%q, %q) = %v, want %v", tc.query, tc.value, got, tc.want)
		}
	}
}

func TestField_EarlierMatchScoresHigher(t *testing.T) {
	early := Field("b", "abcdefgh")
	late := Field("g", "abcdefgh")
	if early <= late {
		t.Errorf("early=%v late=%v, want early > late", early, late)
	}
	if early < FieldInsideBase || early > FieldInsideBase+FieldInsideWeight {
		t.Errorf("inner score %v outside [40, 60]", early)
	}
}

func TestAdvanced(t *testing.T) {
	r := rec("nombre", "Contrato A", "tipo", "ruc")
	tests := []struct {
		query string
		want  float64
	}{
		{"tipo:ruc and nombre:contrato", 100},
		{"tipo:ruc or tipo:ruc", 100},
		{"tipo:RUC", 50},
		{"tipo:obligado", 0},
		{"missing:ruc", 0},
		{"no atoms", 0},
		{"not tipo:obligado or nombre:contr", 50},
	}
	for _, tc := range tests {
		if got := Advanced(tc.query, r); !almostEqual(got, tc.want) {
			t.Errorf("Advanced(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}
