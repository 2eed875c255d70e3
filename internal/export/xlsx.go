package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter implements SheetWriter by saving a local xlsx report.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer that saves the summary to the given path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

func (w *XLSXWriter) Write(_ context.Context, grid [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Resumo"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving summary workbook: %w", err)
	}
	return nil
}
