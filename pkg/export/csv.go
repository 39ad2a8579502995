package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/filmlens/filmlens/internal/model"
)

// WriteCSV writes the table as RFC 4180 CSV with a header row. A table
// with no rows produces a header-only file.
func WriteCSV(w io.Writer, t *model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j, col := range t.Columns {
			record[j] = cellValue(&t.Rows[i], col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
