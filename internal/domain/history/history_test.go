package history

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/buscadoc/internal/domain"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"", Internal, false},
		{"internal", Internal, false},
		{"excel", Uploaded, false},
		{"EXCEL", "", true},
		{"s3", "", true},
	}
	for _, tc := range tests {
		got, err := ParseSource(tc.in)
		if tc.wantErr {
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("ParseSource(%q) err = %v, want ErrInvalidRequest", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseSource(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
