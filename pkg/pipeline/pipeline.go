// Package pipeline implements the dataset preparation pipeline: a fixed
// ordered sequence of cleaning and feature-derivation steps applied to a
// raw upload, producing a cleaned table and a preprocessing summary.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/filmlens/filmlens/internal/model"
)

// futureYearCutoff: rows whose Release_Date or Viewing_Month falls in
// this year or later are removed entirely.
const futureYearCutoff = 2026

// state is the working representation flowing between stages.
type state struct {
	columns []string
	rows    []row

	// Resolved column positions, -1 when absent.
	filmNameIdx     int
	categoryIdx     int
	languageIdx     int
	releaseDateIdx  int
	viewingMonthIdx int
	viewerRateIdx   int
	numViewsIdx     int
}

// row carries the raw cells plus coerced values as stages fill them in.
type row struct {
	cells []string

	releaseDate   *time.Time
	viewingMonth  *time.Time
	viewerRate    *float64
	numberOfViews *float64
}

// Stage is one ordered step of the pipeline.
type Stage struct {
	Name  string
	Apply func(ctx context.Context, s *state) error
}

// stages returns the fixed cleaning sequence. Order matters: each
// stage's output is the next stage's input.
func stages() []Stage {
	return []Stage{
		{Name: "coerce_dates", Apply: coerceDates},
		{Name: "drop_future_dates", Apply: dropFutureDates},
		{Name: "dedupe", Apply: dedupe},
		{Name: "require_film_name", Apply: requireFilmName},
		{Name: "coerce_numerics", Apply: coerceNumerics},
		{Name: "require_numerics", Apply: requireNumerics},
	}
}

// newState builds the working state from a raw table, resolving column
// positions once so stages never re-scan the header.
func newState(raw *model.RawTable) *state {
	s := &state{
		columns:         raw.Columns,
		filmNameIdx:     raw.ColumnIndex(model.ColFilmName),
		categoryIdx:     raw.ColumnIndex(model.ColCategory),
		languageIdx:     raw.ColumnIndex(model.ColLanguage),
		releaseDateIdx:  raw.ColumnIndex(model.ColReleaseDate),
		viewingMonthIdx: raw.ColumnIndex(model.ColViewingMonth),
		viewerRateIdx:   raw.ColumnIndex(model.ColViewerRate),
		numViewsIdx:     raw.ColumnIndex(model.ColNumberOfViews),
	}
	s.rows = make([]row, len(raw.Rows))
	for i, cells := range raw.Rows {
		s.rows[i] = row{cells: cells}
	}
	return s
}

// cell returns a raw cell value, "" when the row is ragged or the column
// is absent.
func (r *row) cell(idx int) string {
	if idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return r.cells[idx]
}

// coerceDates parses the Release_Date and Viewing_Month columns when
// present. Unparseable values become missing, not errors.
func coerceDates(_ context.Context, s *state) error {
	for i := range s.rows {
		r := &s.rows[i]
		if s.releaseDateIdx >= 0 {
			r.releaseDate = parseDate(r.cell(s.releaseDateIdx))
		}
		if s.viewingMonthIdx >= 0 {
			r.viewingMonth = parseDate(r.cell(s.viewingMonthIdx))
		}
	}
	return nil
}

// dropFutureDates removes rows with an explicit date in 2026 or later in
// either date column. Missing dates never trigger this filter.
func dropFutureDates(_ context.Context, s *state) error {
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.releaseDate != nil && r.releaseDate.Year() >= futureYearCutoff {
			continue
		}
		if r.viewingMonth != nil && r.viewingMonth.Year() >= futureYearCutoff {
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return nil
}

// dedupe removes exact full-row duplicates, keeping the first
// occurrence. Date cells compare by their coerced value so equivalent
// spellings of the same date collapse.
func dedupe(_ context.Context, s *state) error {
	seen := make(map[string]struct{}, len(s.rows))
	kept := s.rows[:0]
	for _, r := range s.rows {
		key := dedupeKey(s, &r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	s.rows = kept
	return nil
}

// dedupeKey builds a comparison key over every column of the row.
func dedupeKey(s *state, r *row) string {
	var b strings.Builder
	for i := range s.columns {
		switch i {
		case s.releaseDateIdx:
			b.WriteString(canonicalDate(r.releaseDate))
		case s.viewingMonthIdx:
			b.WriteString(canonicalDate(r.viewingMonth))
		default:
			b.WriteString(r.cell(i))
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

func canonicalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// requireFilmName drops rows with a missing film name.
func requireFilmName(_ context.Context, s *state) error {
	if s.filmNameIdx < 0 {
		return ErrMissingColumn
	}
	kept := s.rows[:0]
	for _, r := range s.rows {
		if strings.TrimSpace(r.cell(s.filmNameIdx)) == "" {
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return nil
}

// coerceNumerics parses Viewer_Rate and Number_of_Views to floats.
// Non-numeric values become missing.
func coerceNumerics(_ context.Context, s *state) error {
	for i := range s.rows {
		r := &s.rows[i]
		if s.viewerRateIdx >= 0 {
			r.viewerRate = parseNumeric(r.cell(s.viewerRateIdx))
		}
		if s.numViewsIdx >= 0 {
			r.numberOfViews = parseNumeric(r.cell(s.numViewsIdx))
		}
	}
	return nil
}

// requireNumerics drops rows missing either numeric field after
// coercion. Both columns must exist in the upload.
func requireNumerics(_ context.Context, s *state) error {
	if s.viewerRateIdx < 0 || s.numViewsIdx < 0 {
		return ErrMissingColumn
	}
	kept := s.rows[:0]
	for _, r := range s.rows {
		if r.viewerRate == nil || r.numberOfViews == nil {
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return nil
}
