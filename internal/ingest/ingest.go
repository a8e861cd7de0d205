// Package ingest turns uploaded spreadsheets into records.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// DefaultExtensions are the upload extensions accepted when none are configured.
var DefaultExtensions = []string{"xlsx", "xls", "csv"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Extension returns the lowercase extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// AllowedFile reports whether filename carries one of the allowed extensions.
// A nil list means DefaultExtensions.
func AllowedFile(filename string, allowed []string) bool {
	if allowed == nil {
		allowed = DefaultExtensions
	}
	ext := Extension(filename)
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimPrefix(a, "."), ext)
	})
}

// SecureFilename makes filename safe for storage and prefixes it with a timestamp:
// YYYYMMDD_HHMMSS_<name>. Accents are folded to ASCII, path separators and
// whitespace become underscores, anything else outside [A-Za-z0-9_.-] is dropped.
func SecureFilename(filename string, now time.Time) string {
	name := sanitize(filename)
	if name == "" {
		name = "upload"
	}
	return now.Format("20060102_150405") + "_" + name
}

func sanitize(name string) string {
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Read parses an upload by extension and cleans the result.
// An upload that yields no record fails with domain.ErrEmptyDataset.
func Read(filename string, r io.Reader) ([]record.Record, error) {
	var (
		records []record.Record
		err     error
	)
	switch ext := Extension(filename); ext {
	case "csv":
		records, err = ReadCSV(r)
	case "xlsx", "xls", "xlsm":
		records, err = ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: extension %q", domain.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	records = Clean(records)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDataset, filename)
	}
	return records, nil
}

// Clean trims field names and values and drops records whose values are all empty.
func Clean(records []record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		fields := rec.Fields()
		empty := true
		for i := range fields {
			fields[i].Name = strings.TrimSpace(fields[i].Name)
			fields[i].Value = strings.TrimSpace(fields[i].Value)
			if fields[i].Value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, record.New(fields...))
	}
	return out
}

// tableRecords converts a header row plus data rows into records. Every record
// carries every column; short rows are padded with empty values and extra cells
// are dropped.
func tableRecords(rows [][]string) []record.Record {
	if len(rows) == 0 {
		return nil
	}
	header := headerNames(rows[0])
	out := make([]record.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make([]record.Field, len(header))
		for i, name := range header {
			fields[i].Name = name
			if i < len(row) {
				fields[i].Value = row[i]
			}
		}
		out = append(out, record.New(fields...))
	}
	return out
}

// headerNames names blank headers "Unnamed: <index>" and suffixes repeats with
// ".1", ".2" and so on, so every column keeps a distinct field.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}
