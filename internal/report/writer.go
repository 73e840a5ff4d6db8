// Package report renders query result tables to spreadsheet files.
package report

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"reportpipe/internal/table"
)

const sheetName = "Sheet1"

// Writer persists tables as .xlsx workbooks.
type Writer struct {
	// HeaderBold styles the first row when set.
	HeaderBold bool

	// ColumnWidth, when positive, is applied to every data column.
	ColumnWidth float64
}

// Write renders t to path, creating parent directories and overwriting any
// existing file. The header row comes from t.Columns; a table with zero
// rows still produces a workbook with the header.
func (w Writer) Write(path string, t table.Table) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create report directory %s", dir)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return errors.Wrapf(err, "failed to name header cell %d", i)
		}
		if err = f.SetCellValue(sheetName, cell, col); err != nil {
			return errors.Wrapf(err, "failed to set header %s", col)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return errors.Wrapf(err, "failed to name cell %d,%d", c, r)
			}
			if err = f.SetCellValue(sheetName, cell, v); err != nil {
				return errors.Wrapf(err, "failed to set cell %s", cell)
			}
		}
	}

	if w.HeaderBold && len(t.Columns) > 0 {
		styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "failed to create header style")
		}
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return errors.Wrap(err, "failed to name last header cell")
		}
		if err = f.SetCellStyle(sheetName, "A1", last, styleID); err != nil {
			return errors.Wrap(err, "failed to style header row")
		}
	}

	if w.ColumnWidth > 0 && len(t.Columns) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(t.Columns))
		if err != nil {
			return errors.Wrap(err, "failed to name last column")
		}
		if err = f.SetColWidth(sheetName, "A", lastCol, w.ColumnWidth); err != nil {
			return errors.Wrap(err, "failed to set column widths")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save report %s", path)
	}
	return nil
}
