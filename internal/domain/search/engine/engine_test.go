package engine

import (
	"encoding/json"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/result"
)

func rec(pairs ...string) record.Record {
	fields := make([]record.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields = append(fields, record.Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return record.New(fields...)
}

func sampleData() []record.Record {
	return []record.Record{
		rec("nombre", "Contrato A", "tipo", "ruc"),
		rec("nombre", "Factura B", "tipo", "obligado"),
	}
}

func nombre(t *testing.T, r result.Result) string {
	t.Helper()
	v, _ := r.Record().Get("nombre")
	return v
}

func TestSimple_Example(t *testing.T) {
	got := New().Simple("contrato", sampleData(), false)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if n := nombre(t, got[0]); n != "Contrato A" {
		t.Errorf("nombre = %q", n)
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"nombre"}) {
		t.Errorf("match fields = %v", got[0].MatchFields())
	}
	if got[0].Relevance() <= 0 {
		t.Errorf("relevance = %v, want > 0", got[0].Relevance())
	}
}

func TestSimple_ListsEveryMatchingField(t *testing.T) {
	data := []record.Record{rec("a", "ruc 1", "b", "otro", "c", "RUC 2")}
	got := New().Simple("ruc", data, false)
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"a", "c"}) {
		t.Errorf("match fields = %v", got[0].MatchFields())
	}
}

func TestSimple_SortedByRelevance(t *testing.T) {
	data := []record.Record{
		rec("id", "1", "v", "xx ab yy"),
		rec("id", "2", "v", "ab"),
		rec("id", "3", "v", "ab yy"),
		rec("id", "4", "v", "zz ab yy"),
	}
	got := New().Simple("ab", data, false)
	if len(got) != 4 {
		t.Fatalf("len = %d", len(got))
	}
	var ids []string
	for i := range got {
		if i > 0 && got[i].Relevance() > got[i-1].Relevance() {
			t.Errorf("result %d relevance %v above previous %v", i, got[i].Relevance(), got[i-1].Relevance())
		}
		id, _ := got[i].Record().Get("id")
		ids = append(ids, id)
	}
	// ties keep collection order
	if !reflect.DeepEqual(ids, []string{"2", "3", "1", "4"}) {
		t.Errorf("order = %v", ids)
	}
}

func TestSimple_CaseSensitive(t *testing.T) {
	e := New()
	if got := e.Simple("contrato", sampleData(), true); len(got) != 0 {
		t.Errorf("case-sensitive lowercase query matched %d records", len(got))
	}
	if got := e.Simple("Contrato", sampleData(), true); len(got) != 1 {
		t.Errorf("case-sensitive exact-case query matched %d records", len(got))
	}
}

func TestSimple_IgnoresReservedFields(t *testing.T) {
	data := []record.Record{rec("nombre", "x", "_relevance", "contrato")}
	if got := New().Simple("contrato", data, false); len(got) != 0 {
		t.Errorf("matched reserved field: %d results", len(got))
	}
}

func TestExact_Example(t *testing.T) {
	data := sampleData()
	got := New().Exact("ruc", data, false)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].Record().Equal(data[0]) {
		t.Errorf("record = %v, want record 1", got[0].Record().Names())
	}
	if got[0].Relevance() != 100 {
		t.Errorf("relevance = %v, want 100", got[0].Relevance())
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"tipo"}) {
		t.Errorf("match fields = %v", got[0].MatchFields())
	}
}

func TestExact_FirstFieldOnlyAndCollectionOrder(t *testing.T) {
	data := []record.Record{
		rec("id", "1", "a", "zeta", "b", "zeta"),
		rec("id", "2", "b", "ZETA"),
		rec("id", "3", "a", "zetas"),
		rec("id", "4", "c", "zeta"),
	}
	got := New().Exact("zeta", data, false)
	var ids []string
	for _, r := range got {
		id, _ := r.Record().Get("id")
		ids = append(ids, id)
		if len(r.MatchFields()) != 1 {
			t.Errorf("record %s match fields = %v", id, r.MatchFields())
		}
	}
	if !reflect.DeepEqual(ids, []string{"1", "2", "4"}) {
		t.Errorf("ids = %v", ids)
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"a"}) {
		t.Errorf("first match = %v, want [a]", got[0].MatchFields())
	}
}

func TestExact_CaseSensitive(t *testing.T) {
	if got := New().Exact("RUC", sampleData(), true); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestField_Example(t *testing.T) {
	got := New().Field("tipo", "obl", sampleData(), false)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if n := nombre(t, got[0]); n != "Factura B" {
		t.Errorf("nombre = %q", n)
	}
	if got[0].Relevance() != 80 {
		t.Errorf("relevance = %v, want 80", got[0].Relevance())
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"tipo"}) {
		t.Errorf("match fields = %v", got[0].MatchFields())
	}
}

func TestField_NeverReturnsRecordsWithoutField(t *testing.T) {
	data := []record.Record{
		rec("nombre", "ruc"),
		rec("tipo", "ruc", "nombre", "x"),
	}
	got := New().Field("tipo", "ruc", data, false)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	for _, r := range got {
		if !r.Record().Has("tipo") {
			t.Error("result lacks the searched field")
		}
	}
	if got := New().Field("missing", "ruc", data, false); len(got) != 0 {
		t.Errorf("missing field returned %d results", len(got))
	}
}

func TestField_RankedByPosition(t *testing.T) {
	data := []record.Record{
		rec("id", "1", "v", "xxxxxxab"),
		rec("id", "2", "v", "xabxxxxx"),
		rec("id", "3", "v", "ab"),
	}
	got := New().Field("v", "ab", data, false)
	var ids []string
	for _, r := range got {
		id, _ := r.Record().Get("id")
		ids = append(ids, id)
	}
	if !reflect.DeepEqual(ids, []string{"3", "1", "2"}) {
		t.Errorf("order = %v", ids)
	}
}

func TestAdvanced_Example(t *testing.T) {
	got := New().Advanced("tipo:ruc and nombre:contrato", sampleData())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if n := nombre(t, got[0]); n != "Contrato A" {
		t.Errorf("nombre = %q", n)
	}
	if got[0].Relevance() != 100 {
		t.Errorf("relevance = %v, want 100", got[0].Relevance())
	}
	if !reflect.DeepEqual(got[0].MatchFields(), []string{"tipo", "nombre"}) {
		t.Errorf("match fields = %v", got[0].MatchFields())
	}
}

func TestAdvanced_UppercaseKeywords(t *testing.T) {
	got := New().Advanced("tipo:ruc OR tipo:obligado", sampleData())
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.Relevance() != 50 {
			t.Errorf("relevance = %v, want 50", r.Relevance())
		}
	}
}

func TestAdvanced_Not(t *testing.T) {
	got := New().Advanced("not tipo:ruc", sampleData())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if n := nombre(t, got[0]); n != "Factura B" {
		t.Errorf("nombre = %q", n)
	}
	if got[0].Relevance() != 0 {
		t.Errorf("relevance = %v, want 0", got[0].Relevance())
	}
	if got[0].MatchFields() == nil || len(got[0].MatchFields()) != 0 {
		t.Errorf("match fields = %#v, want empty", got[0].MatchFields())
	}
}

func TestAdvanced_InjectionFallsBackToSimple(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fallbacks := 0
	e := New().WithLogger(zap.New(core)).WithFallbackHook(func() { fallbacks++ })

	got := e.Advanced("tipo:ruc and import os", sampleData())
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
	if fallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", fallbacks)
	}
	if logs.Len() != 1 {
		t.Errorf("warn logs = %d, want 1", logs.Len())
	}
}

func TestAdvanced_FallbackRunsSimpleSearch(t *testing.T) {
	tests := []string{
		"Contrato",         // no atoms
		"(tipo:ruc",        // unbalanced
		"tipo:ruc and and", // dangling operator
	}
	for _, q := range tests {
		fallbacks := 0
		e := New().WithFallbackHook(func() { fallbacks++ })
		got := e.Advanced(q, sampleData())
		want := e.Simple(q, sampleData(), false)
		if !sameJSON(t, got, want) {
			t.Errorf("Advanced(%q) differs from Simple", q)
		}
		if fallbacks != 1 {
			t.Errorf("Advanced(%q) fallbacks = %d", q, fallbacks)
		}
	}
}

func TestBlankQuery(t *testing.T) {
	e := New()
	data := sampleData()
	for _, q := range []string{"", "   "} {
		if n := len(e.Simple(q, data, false)); n != 0 {
			t.Errorf("Simple(%q) = %d results", q, n)
		}
		if n := len(e.Exact(q, data, false)); n != 0 {
			t.Errorf("Exact(%q) = %d results", q, n)
		}
		if n := len(e.Field("tipo", q, data, false)); n != 0 {
			t.Errorf("Field(%q) = %d results", q, n)
		}
		if n := len(e.Advanced(q, data)); n != 0 {
			t.Errorf("Advanced(%q) = %d results", q, n)
		}
	}
}

func TestRun_Dispatch(t *testing.T) {
	e := New()
	data := sampleData()
	tests := []struct {
		m     mode.Mode
		field string
		query string
		want  float64
	}{
		{mode.Simple, "", "contrato", 10.8},
		{mode.Exact, "", "ruc", 100},
		{mode.Field, "tipo", "obl", 80},
		{mode.Advanced, "", "tipo:ruc", 50},
	}
	for _, tc := range tests {
		req, err := request.New(tc.query, tc.m, tc.field, false)
		if err != nil {
			t.Fatalf("request.New: %v", err)
		}
		got := e.Run(req, data)
		if len(got) != 1 {
			t.Fatalf("%s: len = %d, want 1", tc.m, len(got))
		}
		if diff := got[0].Relevance() - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: relevance = %v, want %v", tc.m, got[0].Relevance(), tc.want)
		}
	}
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	e := New()
	data := sampleData()
	before := snapshot(t, data)

	e.Simple("contrato", data, false)
	e.Exact("ruc", data, false)
	e.Field("tipo", "obl", data, false)
	e.Advanced("tipo:ruc", data)
	e.Advanced("import os", data)

	if after := snapshot(t, data); after != before {
		t.Errorf("input changed:\nbefore %s\nafter  %s", before, after)
	}
	for _, r := range data {
		for _, name := range r.Names() {
			if record.IsReserved(name) {
				t.Errorf("reserved field %q added to input", name)
			}
		}
	}
}

func TestSearch_Idempotent(t *testing.T) {
	e := New()
	data := sampleData()
	runs := []func() []result.Result{
		func() []result.Result { return e.Simple("a", data, false) },
		func() []result.Result { return e.Exact("ruc", data, false) },
		func() []result.Result { return e.Field("nombre", "a", data, false) },
		func() []result.Result { return e.Advanced("nombre:a or tipo:ruc", data) },
	}
	for i, run := range runs {
		if !sameJSON(t, run(), run()) {
			t.Errorf("run %d not idempotent", i)
		}
	}
}

func TestSimple_ResultsAreSubsetOfInput(t *testing.T) {
	data := sampleData()
	for _, r := range New().Simple("a", data, false) {
		found := false
		for _, d := range data {
			if r.Record().Equal(d) {
				found = true
			}
		}
		if !found {
			t.Errorf("result %v not in input", r.Record().Names())
		}
	}
}

func snapshot(t *testing.T, data []record.Record) string {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func sameJSON(t *testing.T, a, b []result.Result) bool {
	t.Helper()
	ja, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(ja) == string(jb)
}
