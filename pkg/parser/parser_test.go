package parser

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		want Format
	}{
		{"views.csv", FormatCSV},
		{"VIEWS.CSV", FormatCSV},
		{"december.xlsx", FormatXLSX},
		{"data.json", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tc := range cases {
		if got := DetectFormat(tc.name); got != tc.want {
			t.Errorf("DetectFormat(%q): expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("CSV"); got != FormatCSV {
		t.Errorf("Expected FormatCSV, got %v", got)
	}
	if got := ParseFormat("xlsx"); got != FormatXLSX {
		t.Errorf("Expected FormatXLSX, got %v", got)
	}
	if got := ParseFormat("parquet"); got != FormatUnknown {
		t.Errorf("Expected FormatUnknown, got %v", got)
	}
}

func TestNewParser_Unsupported(t *testing.T) {
	_, err := NewParser(FormatUnknown)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCSVParser_Basic(t *testing.T) {
	csv := "Film_Name,Viewer_Rate,Number_of_Views\nA,8.5,1000\nB,7.0,500\n"

	table, err := NewCSVParser().Parse([]byte(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Columns) != 3 {
		t.Errorf("Expected 3 columns, got %d", len(table.Columns))
	}
	if len(table.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(table.Rows))
	}
	if table.Columns[0] != "Film_Name" {
		t.Errorf("Expected Film_Name, got %q", table.Columns[0])
	}
}

func TestCSVParser_BOMHeader(t *testing.T) {
	csv := "\uFEFFFilm_Name,Viewer_Rate\nA,8.5\n"

	table, err := NewCSVParser().Parse([]byte(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Columns[0] != "Film_Name" {
		t.Errorf("Expected BOM stripped from header, got %q", table.Columns[0])
	}
}

func TestCSVParser_SkipsBlankRows(t *testing.T) {
	csv := "Film_Name,Viewer_Rate\nA,8.5\n,\n\nB,7.0\n"

	table, err := NewCSVParser().Parse([]byte(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Expected 2 rows after skipping blanks, got %d", len(table.Rows))
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	csv := "Film_Name,Viewer_Rate,Number_of_Views\nA,8.5\nB,7.0,500,extra\n"

	table, err := NewCSVParser().Parse([]byte(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(table.Rows))
	}
	if len(table.Rows[0]) != 2 {
		t.Errorf("Expected short row preserved with 2 cells, got %d", len(table.Rows[0]))
	}
}

func TestCSVParser_EmptyInput(t *testing.T) {
	_, err := NewCSVParser().Parse([]byte{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestCSVParser_QuotedFields(t *testing.T) {
	csv := "Film_Name,Category\n\"The Film, Part 2\",Drama\n"

	table, err := NewCSVParser().Parse([]byte(csv))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := table.Rows[0][0]; got != "The Film, Part 2" {
		t.Errorf("Expected quoted field preserved, got %q", got)
	}
}

func TestXLSXParser_InvalidInput(t *testing.T) {
	_, err := NewXLSXParser().Parse([]byte("this is not a workbook"))
	if !errors.Is(err, ErrInvalidXLSX) {
		t.Errorf("Expected ErrInvalidXLSX, got %v", err)
	}
}

func TestPackageParse_UnknownExtension(t *testing.T) {
	_, err := Parse([]byte("a,b\n1,2\n"), "data.unknown")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
