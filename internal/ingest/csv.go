package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

const (
	sniffBytes = 10 << 10
	sniffLines = 5
)

var separators = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a delimited text file whose first row is the header.
// Content that is not valid UTF-8 is decoded as Windows-1252. The separator is
// the candidate among , ; tab | giving the most columns over the first five lines.
func ReadCSV(r io.Reader) ([]record.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnsupportedFile, err)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectSeparator(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", domain.ErrUnsupportedFile, err)
	}
	return tableRecords(rows), nil
}

func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(decoded), nil
}

func detectSeparator(text string) rune {
	if len(text) > sniffBytes {
		text = text[:sniffBytes]
	}
	lines := strings.SplitN(text, "\n", sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}

	best, bestColumns := ',', 0
	for _, sep := range separators {
		columns := 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			columns = max(columns, strings.Count(line, string(sep))+1)
		}
		if columns > bestColumns {
			best, bestColumns = sep, columns
		}
	}
	return best
}
