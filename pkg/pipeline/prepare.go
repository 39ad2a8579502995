package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/filmlens/filmlens/internal/model"
	"github.com/filmlens/filmlens/pkg/parser"
)

// Prepare runs the full dataset preparation pipeline on a raw upload:
// parse, clean, derive features, summarize. It is a pure function of the
// input bytes: identical input yields identical output. On any failure
// both outputs are nil and the error is a single *LoadError carrying the
// underlying cause.
func Prepare(ctx context.Context, data []byte, name string) (table *model.Table, summary *model.Summary, err error) {
	tracer := otel.Tracer("filmlens/pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.Prepare")
	defer span.End()

	// The whole run is guarded: no step is individually retried and no
	// partial result escapes.
	defer func() {
		if r := recover(); r != nil {
			table, summary = nil, nil
			err = &LoadError{Err: fmt.Errorf("panic: %v", r)}
		} else if err != nil {
			table, summary = nil, nil
			if _, ok := AsLoadError(err); !ok {
				err = &LoadError{Err: err}
			}
		}
	}()

	raw, err := parser.Parse(data, name)
	if err != nil {
		return nil, nil, err
	}

	st := newState(raw)
	originalRows := len(st.rows)
	originalCols := len(st.columns)

	for _, stage := range stages() {
		_, stageSpan := tracer.Start(ctx, "pipeline."+stage.Name)
		stageErr := stage.Apply(ctx, st)
		stageSpan.SetAttributes(attribute.Int("rows", len(st.rows)))
		stageSpan.End()
		if stageErr != nil {
			return nil, nil, fmt.Errorf("%s: %w", stage.Name, stageErr)
		}
	}

	table = materialize(st)
	summary = &model.Summary{
		OriginalRows: originalRows,
		OriginalCols: originalCols,
		FinalRows:    len(table.Rows),
		FinalCols:    len(table.Columns),
		RemovedRows:  originalRows - len(table.Rows),
	}

	span.SetAttributes(
		attribute.Int("rows.original", originalRows),
		attribute.Int("rows.final", summary.FinalRows),
	)
	return table, summary, nil
}

// materialize derives features and converts the working state into the
// cleaned table. Derived columns are appended after the raw columns in
// fixed order, each group only when its source column exists.
func materialize(s *state) *model.Table {
	columns := append([]string(nil), s.columns...)
	if s.releaseDateIdx >= 0 {
		columns = append(columns,
			model.ColReleaseYear, model.ColReleaseMonth, model.ColReleaseMonthName)
	}
	if s.viewingMonthIdx >= 0 {
		columns = append(columns,
			model.ColViewingYear, model.ColViewingMonthNum, model.ColViewingMonthName)
	}
	columns = append(columns, model.ColEngagementScore)

	recognized := map[int]bool{
		s.filmNameIdx: true, s.categoryIdx: true, s.languageIdx: true,
		s.releaseDateIdx: true, s.viewingMonthIdx: true,
		s.viewerRateIdx: true, s.numViewsIdx: true,
	}

	rows := make([]model.Record, 0, len(s.rows))
	for _, r := range s.rows {
		rec := model.Record{
			FilmName:      r.cell(s.filmNameIdx),
			Category:      r.cell(s.categoryIdx),
			Language:      r.cell(s.languageIdx),
			ReleaseDate:   r.releaseDate,
			ViewingMonth:  r.viewingMonth,
			ViewerRate:    *r.viewerRate,
			NumberOfViews: *r.numberOfViews,
		}

		if r.releaseDate != nil {
			rec.ReleaseYear, rec.ReleaseMonth, rec.ReleaseMonthName = dateParts(r.releaseDate)
		}
		if r.viewingMonth != nil {
			rec.ViewingYear, rec.ViewingMonthNum, rec.ViewingMonthName = dateParts(r.viewingMonth)
		}

		// Rewards both rating and view volume, with diminishing returns
		// on raw view count.
		rec.EngagementScore = rec.ViewerRate * math.Log1p(rec.NumberOfViews)

		for i, col := range s.columns {
			if recognized[i] {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = r.cell(i)
		}

		rows = append(rows, rec)
	}

	return &model.Table{Columns: columns, Rows: rows}
}

func dateParts(t *time.Time) (*int, *int, *string) {
	year := t.Year()
	month := int(t.Month())
	name := t.Month().String()
	return &year, &month, &name
}
