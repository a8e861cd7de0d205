package result

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

func TestNew(t *testing.T) {
	rec := record.New(record.Field{Name: "nombre", Value: "Contrato A"})
	fields := []string{"nombre"}

	r := New(rec, fields, 12.5)
	fields[0] = "mutated"

	if r.Relevance() != 12.5 {
		t.Errorf("Relevance() = %f", r.Relevance())
	}
	if got := r.MatchFields(); len(got) != 1 || got[0] != "nombre" {
		t.Errorf("MatchFields() = %v", got)
	}
	if v, _ := r.Record().Get("nombre"); v != "Contrato A" {
		t.Errorf("Record().Get(nombre) = %q", v)
	}
}

func TestNew_NilMatchFields(t *testing.T) {
	r := New(record.Record{}, nil, 0)
	if r.MatchFields() != nil {
		t.Errorf("MatchFields() = %v, want nil", r.MatchFields())
	}
}

func TestMarshalJSON(t *testing.T) {
	rec := record.New(
		record.Field{Name: "nombre", Value: "Contrato A"},
		record.Field{Name: "tipo", Value: "ruc"},
		record.Field{Name: "_relevance", Value: "stale"},
	)
	r := New(rec, []string{"nombre"}, 100)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"nombre":"Contrato A","tipo":"ruc","_match_fields":["nombre"],"_relevance":100}`
	if string(data) != want {
		t.Errorf("Marshal = %s\nwant      %s", data, want)
	}
}

func TestMarshalJSON_EmptyMatchFields(t *testing.T) {
	r := New(record.New(record.Field{Name: "a", Value: "1"}), nil, 50)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":"1","_match_fields":[],"_relevance":50}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestRecords(t *testing.T) {
	a := record.New(record.Field{Name: "id", Value: "1"})
	b := record.New(record.Field{Name: "id", Value: "2"})
	out := Records([]Result{New(a, nil, 1), New(b, nil, 2)})
	if len(out) != 2 || !out[0].Equal(a) || !out[1].Equal(b) {
		t.Errorf("Records() = %v", out)
	}
}
