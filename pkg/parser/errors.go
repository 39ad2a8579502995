package parser

import "errors"

var (
	// ErrUnsupportedFormat is returned when the input format is not
	// recognized as delimited text or a spreadsheet.
	ErrUnsupportedFormat = errors.New("parser: unsupported format")

	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("parser: empty input")

	// ErrInvalidCSV is returned when the CSV structure is malformed.
	ErrInvalidCSV = errors.New("parser: invalid CSV format")

	// ErrInvalidXLSX is returned when the workbook cannot be opened.
	ErrInvalidXLSX = errors.New("parser: invalid XLSX workbook")
)
