package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/filmlens/filmlens/internal/model"
)

// CSVParser parses comma-delimited uploads.
type CSVParser struct {
	// Delimiter is the field separator (default: comma).
	Delimiter rune
}

// NewCSVParser creates a new CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{Delimiter: ','}
}

// Parse implements the Parser interface.
func (p *CSVParser) Parse(data []byte) (*model.RawTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = p.Delimiter
	r.FieldsPerRecord = -1 // ragged rows are handled downstream
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	table := &model.RawTable{Columns: trimBOM(header)}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, perr.Line, perr.Err)
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if isBlank(rec) {
			continue
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nil
}

// trimBOM removes a UTF-8 byte order mark from the first column name.
func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header
}

// isBlank reports whether every cell of a record is empty.
func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
