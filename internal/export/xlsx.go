package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/buscadoc/internal/domain/record"
)

// WriteXLSX writes a workbook with a single sheet: header row, then one row per record.
func WriteXLSX(w io.Writer, records []record.Record, sheet string) (err error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, body := rows(records)
	if len(header) > 0 {
		if err = setRow(f, sheet, 1, header); err != nil {
			return err
		}
	}
	for i, row := range body {
		if err = setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err = f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}
