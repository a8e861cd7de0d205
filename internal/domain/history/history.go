// Package history holds the append-only search and upload logs entries.
package history

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain"

	"github.com/kailas-cloud/buscadoc/internal/domain/search/mode"
)

// Source names the record set a search ran against.
type Source string

// Data sources.
const (
	// Internal is the shared dataset loaded from disk.
	Internal Source = "internal"
	// Uploaded is the spreadsheet held by the caller's session.
	// The wire value stays "excel" for compatibility with existing clients.
	Uploaded Source = "excel"
)

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	return s == Internal || s == Uploaded
}

// ParseSource validates a source name. Empty means Internal.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return Internal, nil
	}
	src := Source(s)
	if !src.IsValid() {
		return "", domain.NewFieldError("dataSource", fmt.Sprintf("unknown data source %q", s))
	}
	return src, nil
}

// SearchEntry records one executed search.
type SearchEntry struct {
	Query     string    `json:"query"`
	Mode      mode.Mode `json:"mode"`
	Source    Source    `json:"source"`
	Results   int       `json:"results"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadEntry records one accepted upload.
type UploadEntry struct {
	Filename  string    `json:"filename"`
	Records   int       `json:"records"`
	Columns   int       `json:"columns"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}
