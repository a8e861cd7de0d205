package record

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"_relevance", true},
		{"_match_fields", true},
		{"_", true},
		{"nombre", false},
		{"EXP BN", false},
		{"a_b", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsReserved(tc.name); got != tc.want {
			t.Errorf("IsReserved(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNew_KeepsOrderAndLastValue(t *testing.T) {
	r := New(
		Field{Name: "b", Value: "1"},
		Field{Name: "a", Value: "2"},
		Field{Name: "b", Value: "3"},
	)
	if got := r.Names(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Names() = %v", got)
	}
	if v, _ := r.Get("b"); v != "3" {
		t.Errorf("Get(b) = %q, want 3", v)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}
}

func TestSet_DoesNotMutateReceiver(t *testing.T) {
	orig := New(Field{Name: "tipo", Value: "ruc"})
	updated := orig.Set("estado", "activo")

	if orig.Has("estado") {
		t.Error("Set mutated the original record")
	}
	if v, ok := updated.Get("estado"); !ok || v != "activo" {
		t.Errorf("updated Get(estado) = %q, %v", v, ok)
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	r := New(Field{Name: "a", Value: "1"})
	f := r.Fields()
	f[0].Value = "changed"
	if v, _ := r.Get("a"); v != "1" {
		t.Errorf("Fields() leaked internal slice, value = %q", v)
	}
}

func TestStrip(t *testing.T) {
	r := New(
		Field{Name: "nombre", Value: "x"},
		Field{Name: "_relevance", Value: "10"},
		Field{Name: "tipo", Value: "y"},
	)
	s := r.Strip()
	if got := s.Names(); !reflect.DeepEqual(got, []string{"nombre", "tipo"}) {
		t.Errorf("Strip().Names() = %v", got)
	}
	if !r.Has("_relevance") {
		t.Error("Strip mutated the original record")
	}
}

func TestColumns(t *testing.T) {
	records := []Record{
		New(Field{Name: "a", Value: "1"}, Field{Name: "_x", Value: "1"}),
		New(Field{Name: "c", Value: "1"}, Field{Name: "a", Value: "2"}, Field{Name: "b", Value: "3"}),
	}
	if got := Columns(records); !reflect.DeepEqual(got, []string{"a", "c", "b"}) {
		t.Errorf("Columns() = %v", got)
	}
	if got := Columns(nil); got != nil {
		t.Errorf("Columns(nil) = %v, want nil", got)
	}
}

func TestUnmarshalJSON_OrderAndTextRendering(t *testing.T) {
	data := []byte(`{"nombre":"Contrato A","monto":12.50,"activo":true,"nota":null,"tags":["a", "b"],"n":7}`)

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []Field{
		{Name: "nombre", Value: "Contrato A"},
		{Name: "monto", Value: "12.50"},
		{Name: "activo", Value: "true"},
		{Name: "nota", Value: ""},
		{Name: "tags", Value: `["a","b"]`},
		{Name: "n", Value: "7"},
	}
	if got := r.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %#v\nwant %#v", got, want)
	}
}

func TestUnmarshalJSON_RejectsNonObject(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`["a"]`), &r); err == nil {
		t.Fatal("expected error for array input")
	}
}

func TestMarshalJSON_PreservesOrder(t *testing.T) {
	r := New(
		Field{Name: "z", Value: "1"},
		Field{Name: "a", Value: "número"},
	)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"z":"1","a":"número"}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestAppendJSON(t *testing.T) {
	r := New(Field{Name: "a", Value: "1"})
	data, err := r.AppendJSON([]RawMember{{Name: "_relevance", Value: json.RawMessage(`100`)}})
	if err != nil {
		t.Fatalf("AppendJSON: %v", err)
	}
	if string(data) != `{"a":"1","_relevance":100}` {
		t.Errorf("AppendJSON = %s", data)
	}

	empty, err := Record{}.AppendJSON([]RawMember{{Name: "_x", Value: json.RawMessage(`1`)}})
	if err != nil {
		t.Fatalf("AppendJSON empty: %v", err)
	}
	if string(empty) != `{"_x":1}` {
		t.Errorf("AppendJSON empty = %s", empty)
	}
}

func TestRecordSliceRoundTrip(t *testing.T) {
	in := []byte(`[{"b":"2","a":"1"},{"c":"3"}]`)
	var records []Record
	if err := json.Unmarshal(in, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestEqualAndClone(t *testing.T) {
	r := New(Field{Name: "a", Value: "1"}, Field{Name: "b", Value: "2"})
	c := r.Clone()
	if !r.Equal(c) {
		t.Error("clone not equal")
	}
	if r.Equal(New(Field{Name: "b", Value: "2"}, Field{Name: "a", Value: "1"})) {
		t.Error("different order reported equal")
	}
}

func TestZeroValue(t *testing.T) {
	var r Record
	if r.Has("x") {
		t.Error("zero record has field")
	}
	r2 := r.Set("x", "1")
	if v, _ := r2.Get("x"); v != "1" {
		t.Errorf("Set on zero record = %q", v)
	}
}
