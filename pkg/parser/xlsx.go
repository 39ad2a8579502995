package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/filmlens/filmlens/internal/model"
)

// XLSXParser parses Excel workbooks using the first sheet.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse implements the Parser interface.
func (p *XLSXParser) Parse(data []byte) (*model.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXLSX, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: no sheets", ErrInvalidXLSX)
		}
		sheet = list[0]
	}

	// Streaming row reader keeps memory flat on large workbooks.
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXLSX, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrEmptyInput
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidXLSX, err)
	}
	if len(header) == 0 {
		return nil, ErrEmptyInput
	}

	table := &model.RawTable{Columns: header}

	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidXLSX, err)
		}
		if isBlank(cols) {
			continue
		}
		// Pad ragged rows so downstream indexing stays in bounds.
		for len(cols) < len(header) {
			cols = append(cols, "")
		}
		table.Rows = append(table.Rows, cols)
	}

	return table, nil
}
