package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	domhist "github.com/kailas-cloud/buscadoc/internal/domain/history"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
	"github.com/kailas-cloud/buscadoc/internal/domain/search/request"
	domsess "github.com/kailas-cloud/buscadoc/internal/domain/session"
	fileexport "github.com/kailas-cloud/buscadoc/internal/export"
)

type mockMatcher struct {
	records []record.Record
	err     error
	gotReq  request.Request
	gotSrc  domhist.Source
}

func (m *mockMatcher) Matching(
	_ context.Context, _ domsess.Session, req request.Request, src domhist.Source,
) ([]record.Record, error) {
	m.gotReq, m.gotSrc = req, src
	return m.records, m.err
}

var (
	now  = time.Date(2024, 7, 4, 16, 5, 9, 0, time.UTC)
	sess = domsess.New("s1", "ana", now)
)

func TestExport_CSV(t *testing.T) {
	m := &mockMatcher{records: []record.Record{
		record.New(record.Field{Name: "id", Value: "1"}, record.Field{Name: "nombre", Value: "Ñandú"}),
	}}
	req, _ := request.New("ñandú", mode.Simple, "", false)

	var buf bytes.Buffer
	f, err := New(m).WithClock(func() time.Time { return now }).
		Export(context.Background(), sess, req, domhist.Uploaded, fileexport.CSV, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "export_20240704_160509.csv" || f.Records != 1 {
		t.Errorf("file = %+v", f)
	}
	if !strings.HasPrefix(f.ContentType, "text/csv") {
		t.Errorf("content type = %q", f.ContentType)
	}
	if got := buf.String(); got != "id,nombre\n1,Ñandú\n" {
		t.Errorf("csv = %q", got)
	}
	if m.gotSrc != domhist.Uploaded || m.gotReq.Query() != "ñandú" {
		t.Errorf("matcher got %q/%q", m.gotSrc, m.gotReq.Query())
	}
}

func TestExport_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	req, _ := request.New("", mode.Simple, "", false)
	f, err := New(&mockMatcher{}).Export(context.Background(), sess, req, domhist.Internal, fileexport.JSON, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Records != 0 {
		t.Errorf("records = %d", f.Records)
	}
	var out []any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
}

func TestExport_MatcherError(t *testing.T) {
	var buf bytes.Buffer
	req, _ := request.New("x", mode.Simple, "", false)
	_, err := New(&mockMatcher{err: domain.ErrInvalidQuery}).
		Export(context.Background(), sess, req, domhist.Internal, fileexport.CSV, &buf)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("err = %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on error")
	}
}
