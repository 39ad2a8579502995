package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/filmlens/filmlens/internal/model"
)

const fullHeader = "Film_Name,Category,Language,Release_Date,Viewing_Month,Viewer_Rate,Number_of_Views\n"

func TestPrepare_WorkedExample(t *testing.T) {
	csv := fullHeader +
		"Good Film,Drama,English,2024-05-01,2024-12-01,8.5,1000\n" +
		"Future Film,Drama,English,2026-01-01,2024-12-01,7.0,500\n" +
		"Good Film,Drama,English,2024-05-01,2024-12-01,8.5,1000\n" +
		",Drama,English,2024-03-01,2024-11-01,6.0,200\n"

	table, summary, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if summary.OriginalRows != 4 {
		t.Errorf("Expected 4 original rows, got %d", summary.OriginalRows)
	}
	if summary.FinalRows != 1 {
		t.Errorf("Expected 1 final row, got %d", summary.FinalRows)
	}
	if summary.RemovedRows != 3 {
		t.Errorf("Expected 3 removed rows, got %d", summary.RemovedRows)
	}
	if summary.OriginalCols != 7 {
		t.Errorf("Expected 7 original columns, got %d", summary.OriginalCols)
	}
	// 7 raw + 3 release-derived + 3 viewing-derived + engagement
	if summary.FinalCols != 14 {
		t.Errorf("Expected 14 final columns, got %d", summary.FinalCols)
	}

	if table.Len() != 1 {
		t.Fatalf("Expected 1 row in table, got %d", table.Len())
	}
	r := table.Rows[0]
	if r.FilmName != "Good Film" {
		t.Errorf("Expected film %q, got %q", "Good Film", r.FilmName)
	}
	want := 8.5 * math.Log1p(1000)
	if math.Abs(r.EngagementScore-want) > 1e-9 {
		t.Errorf("Expected engagement %.6f, got %.6f", want, r.EngagementScore)
	}
}

func TestPrepare_DerivedColumns(t *testing.T) {
	csv := fullHeader +
		"A,Drama,English,2024-05-01,2024-12-15,8.0,100\n"

	table, _, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	for _, col := range []string{
		model.ColReleaseYear, model.ColReleaseMonth, model.ColReleaseMonthName,
		model.ColViewingYear, model.ColViewingMonthNum, model.ColViewingMonthName,
		model.ColEngagementScore,
	} {
		if !table.HasColumn(col) {
			t.Errorf("Missing derived column %q", col)
		}
	}

	r := table.Rows[0]
	if r.ReleaseYear == nil || *r.ReleaseYear != 2024 {
		t.Errorf("Expected release year 2024, got %v", r.ReleaseYear)
	}
	if r.ViewingMonthNum == nil || *r.ViewingMonthNum != 12 {
		t.Errorf("Expected viewing month 12, got %v", r.ViewingMonthNum)
	}
	if r.ViewingMonthName == nil || *r.ViewingMonthName != "December" {
		t.Errorf("Expected viewing month name December, got %v", r.ViewingMonthName)
	}
}

func TestPrepare_NoDateColumns(t *testing.T) {
	csv := "Film_Name,Viewer_Rate,Number_of_Views\n" +
		"A,8.0,100\n"

	table, summary, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if table.HasColumn(model.ColReleaseYear) {
		t.Error("Release_Year should not appear without Release_Date")
	}
	if table.HasColumn(model.ColViewingMonthName) {
		t.Error("Viewing_Month_Name should not appear without Viewing_Month")
	}
	if !table.HasColumn(model.ColEngagementScore) {
		t.Error("Engagement_Score should always appear")
	}
	if summary.FinalCols != 4 {
		t.Errorf("Expected 4 final columns, got %d", summary.FinalCols)
	}
}

func TestPrepare_MissingDatesSurviveFutureFilter(t *testing.T) {
	csv := fullHeader +
		"A,Drama,English,,,8.0,100\n" +
		"B,Drama,English,not a date,n/a,7.0,200\n"

	table, _, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows kept, got %d", table.Len())
	}
	if table.Rows[0].ReleaseDate != nil {
		t.Error("Expected missing release date to stay nil")
	}
}

func TestPrepare_BareYearHitsFutureFilter(t *testing.T) {
	// A bare-year cell is January 1 of that year, not an Excel serial.
	csv := fullHeader +
		"A,Drama,English,2026,,8.0,100\n" +
		"B,Drama,English,2024,,7.0,200\n"

	table, _, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Expected 1 row after future filter, got %d", table.Len())
	}
	if table.Rows[0].FilmName != "B" {
		t.Errorf("Expected row B kept, got %q", table.Rows[0].FilmName)
	}
	if d := table.Rows[0].ReleaseDate; d == nil || d.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("Expected release date 2024-01-01, got %v", d)
	}
}

func TestPrepare_DedupeByCoercedDate(t *testing.T) {
	// Same row with two spellings of the same date collapses.
	csv := fullHeader +
		"A,Drama,English,2024-05-01,2024-12-01,8.0,100\n" +
		"A,Drama,English,05/01/2024,2024-12-01,8.0,100\n"

	table, _, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 row after dedupe, got %d", table.Len())
	}
}

func TestPrepare_NonNumericRowsDropped(t *testing.T) {
	csv := "Film_Name,Viewer_Rate,Number_of_Views\n" +
		"A,8.0,100\n" +
		"B,high,100\n" +
		"C,7.0,\n"

	table, summary, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 row kept, got %d", table.Len())
	}
	if summary.RemovedRows != 2 {
		t.Errorf("Expected 2 removed rows, got %d", summary.RemovedRows)
	}
}

func TestPrepare_MissingRequiredColumn(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"no film name", "Category,Viewer_Rate,Number_of_Views\nDrama,8.0,100\n"},
		{"no viewer rate", "Film_Name,Number_of_Views\nA,100\n"},
		{"no views", "Film_Name,Viewer_Rate\nA,8.0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, summary, err := Prepare(context.Background(), []byte(tc.csv), "views.csv")
			if err == nil {
				t.Fatal("Expected error for missing required column")
			}
			if table != nil || summary != nil {
				t.Error("Expected nil outputs on failure")
			}
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("Expected *LoadError, got %T", err)
			}
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("Expected ErrMissingColumn in chain, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), "error loading data: ") {
				t.Errorf("Unexpected error message: %q", err.Error())
			}
		})
	}
}

func TestPrepare_ParseFailureWrapped(t *testing.T) {
	table, summary, err := Prepare(context.Background(), []byte{}, "views.csv")
	if err == nil {
		t.Fatal("Expected error for empty input")
	}
	if table != nil || summary != nil {
		t.Error("Expected nil outputs on failure")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *LoadError, got %T", err)
	}
}

func TestPrepare_Deterministic(t *testing.T) {
	csv := fullHeader +
		"A,Drama,English,2024-05-01,2024-12-01,8.5,1000\n" +
		"B,Comedy,Spanish,2023-01-15,2024-06-01,6.5,3000\n"

	t1, s1, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	t2, s2, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if *s1 != *s2 {
		t.Errorf("Expected identical summaries, got %+v and %+v", s1, s2)
	}
	if t1.Len() != t2.Len() {
		t.Errorf("Expected identical row counts, got %d and %d", t1.Len(), t2.Len())
	}
	for i := range t1.Rows {
		if t1.Rows[i].FilmName != t2.Rows[i].FilmName ||
			t1.Rows[i].EngagementScore != t2.Rows[i].EngagementScore {
			t.Errorf("Row %d differs between runs", i)
		}
	}
}

func TestPrepare_ExtraColumnsPassThrough(t *testing.T) {
	csv := "Film_Name,Viewer_Rate,Number_of_Views,Studio\n" +
		"A,8.0,100,Acme\n"

	table, _, err := Prepare(context.Background(), []byte(csv), "views.csv")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !table.HasColumn("Studio") {
		t.Error("Expected Studio column preserved")
	}
	if got := table.Rows[0].Extra["Studio"]; got != "Acme" {
		t.Errorf("Expected Studio=Acme, got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string // "" means nil
	}{
		{"2024-05-01", "2024-05-01"},
		{"2024-05-01 10:30:00", "2024-05-01"},
		{"05/01/2024", "2024-05-01"},
		{"2024-05", "2024-05-01"},
		{"May 2024", "2024-05-01"},
		{"45292", "2024-01-01"}, // Excel serial
		{"61", "1900-03-01"}, // first serial after the phantom Feb 29
		{"2026", "2026-01-01"}, // bare year, not a serial
		{"1999", "1999-01-01"},
		{"2026.5", "1905-07-18"}, // fractional, so a serial after all
		{"", ""},
		{"not a date", ""},
	}

	for _, tc := range cases {
		got := parseDate(tc.in)
		if tc.want == "" {
			if got != nil {
				t.Errorf("parseDate(%q): expected nil, got %v", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("parseDate(%q): expected %s, got nil", tc.in, tc.want)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("parseDate(%q): expected %s, got %s", tc.in, tc.want, got.Format("2006-01-02"))
		}
	}
}

func TestParseNumeric(t *testing.T) {
	if v := parseNumeric(" 8.5 "); v == nil || *v != 8.5 {
		t.Errorf("Expected 8.5, got %v", v)
	}
	if v := parseNumeric("1e3"); v == nil || *v != 1000 {
		t.Errorf("Expected 1000, got %v", v)
	}
	if v := parseNumeric("abc"); v != nil {
		t.Errorf("Expected nil for non-numeric, got %v", v)
	}
	if v := parseNumeric(""); v != nil {
		t.Errorf("Expected nil for empty, got %v", v)
	}
}
