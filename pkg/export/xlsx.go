package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/filmlens/filmlens/internal/model"
)

const sheetName = "Cleaned Data"

// WriteXLSX writes the table as a single-sheet XLSX workbook. Numeric
// columns are written as numbers so spreadsheet formulas work on them.
// A table with no rows produces a header-only sheet.
func WriteXLSX(w io.Writer, t *model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("export: remove default sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := writeRow(sw, 1, header); err != nil {
		return err
	}

	for i := range t.Rows {
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			row[j] = xlsxValue(&t.Rows[i], col)
		}
		if err := writeRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeRow(sw *excelize.StreamWriter, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("export: cell name: %w", err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("export: write row %d: %w", rowNum, err)
	}
	return nil
}

// xlsxValue picks a typed cell value so numeric columns stay numeric in
// the workbook. Nil derived fields become empty cells.
func xlsxValue(r *model.Record, column string) interface{} {
	switch column {
	case model.ColViewerRate:
		return r.ViewerRate
	case model.ColNumberOfViews:
		return r.NumberOfViews
	case model.ColEngagementScore:
		return r.EngagementScore
	case model.ColReleaseYear:
		return intCell(r.ReleaseYear)
	case model.ColReleaseMonth:
		return intCell(r.ReleaseMonth)
	case model.ColViewingYear:
		return intCell(r.ViewingYear)
	case model.ColViewingMonthNum:
		return intCell(r.ViewingMonthNum)
	default:
		return cellValue(r, column)
	}
}

func intCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
