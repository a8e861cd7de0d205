package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/buscadoc/internal/domain"
	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// ReadXLSX parses the first worksheet of a workbook; its first row is the header.
func ReadXLSX(r io.Reader) ([]record.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", domain.ErrUnsupportedFile, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrUnsupportedFile)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", domain.ErrUnsupportedFile, sheets[0], err)
	}
	return tableRecords(rows), nil
}
