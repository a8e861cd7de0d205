// Package export writes record sets as CSV, XLSX or JSON documents.
// Reserved fields are always stripped; the column set is the union of
// record fields in first-seen order.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// DefaultSheetName names the single worksheet of XLSX exports.
const DefaultSheetName = "Datos"

// ParseFormat validates a format name, ignoring case. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return CSV, nil
	case CSV, XLSX, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// FileName builds export_YYYYMMDD_HHMMSS.<ext>.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("export_%s.%s", now.Format("20060102_150405"), f)
}

// Write encodes records to w in the given format.
func Write(w io.Writer, f Format, records []record.Record) error {
	switch f {
	case CSV:
		return WriteCSV(w, records)
	case XLSX:
		return WriteXLSX(w, records, DefaultSheetName)
	case JSON:
		return WriteJSON(w, records)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}
}

// rows lays records out as a header plus one row per record. Missing fields are empty.
func rows(records []record.Record) (header []string, body [][]string) {
	header = record.Columns(records)
	body = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i], _ = rec.Get(col)
		}
		body = append(body, row)
	}
	return header, body
}
