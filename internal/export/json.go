package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// WriteJSON writes an indented array of records. Non-ASCII text is kept as is.
func WriteJSON(w io.Writer, records []record.Record) error {
	clean := make([]record.Record, len(records))
	for i, rec := range records {
		clean[i] = rec.Strip()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(clean); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
