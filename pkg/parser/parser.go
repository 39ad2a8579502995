// Package parser provides interfaces and implementations for parsing
// tabular film-viewing datasets (CSV, XLSX).
package parser

import (
	"path/filepath"
	"strings"

	"github.com/filmlens/filmlens/internal/model"
)

// Parser defines the interface for parsing an uploaded dataset into a
// raw table. Implementations must not retain the input bytes.
type Parser interface {
	// Parse reads the full upload and returns the raw table.
	Parse(data []byte) (*model.RawTable, error)
}

// Format represents a supported input format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format string.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV
	case "xlsx", "excel":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// DetectFormat determines the input format from the file name extension.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// NewParser creates a parser for the given format.
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatCSV:
		return NewCSVParser(), nil
	case FormatXLSX:
		return NewXLSXParser(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Parse detects the format from name and parses data in one step.
func Parse(data []byte, name string) (*model.RawTable, error) {
	p, err := NewParser(DetectFormat(name))
	if err != nil {
		return nil, err
	}
	return p.Parse(data)
}
