package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// WriteCSV writes a comma-separated document with a header row.
func WriteCSV(w io.Writer, records []record.Record) error {
	header, body := rows(records)
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := cw.WriteAll(body); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
