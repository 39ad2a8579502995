package pipeline

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when coercing a date cell. Mirrors the
// permissive coercion of the upload surface: unparseable values become
// missing, never an error.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2006-01",
	"January 2006",
	"Jan 2006",
	"January 2, 2006",
}

// parseDate coerces a cell to a date. Returns nil for empty or
// unparseable values.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Numeric cells are either bare years or Excel serials. A plausible
	// year integer means January 1 of that year; everything else is a
	// serial counting days since 1899-12-30, where serials below 60
	// predate the phantom 1900-02-29 and sit one day behind the epoch
	// offset.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if year := int(serial); serial == float64(year) && year >= 1900 && year <= 2200 {
			t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			return &t
		}
		if serial <= 1 {
			return nil
		}
		days := serial
		if serial < 60 {
			days++
		}
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(days*24) * time.Hour)
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseNumeric coerces a cell to a float. Returns nil for empty or
// non-numeric values.
func parseNumeric(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
