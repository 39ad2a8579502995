// Package model defines the core data structures for FilmLens.
package model

import "time"

// Canonical column names recognized in uploaded datasets.
const (
	ColFilmName      = "Film_Name"
	ColCategory      = "Category"
	ColLanguage      = "Language"
	ColReleaseDate   = "Release_Date"
	ColViewingMonth  = "Viewing_Month"
	ColViewerRate    = "Viewer_Rate"
	ColNumberOfViews = "Number_of_Views"
)

// Derived column names appended by the cleaning pipeline.
const (
	ColReleaseYear      = "Release_Year"
	ColReleaseMonth     = "Release_Month"
	ColReleaseMonthName = "Release_Month_Name"
	ColViewingYear      = "Viewing_Year"
	ColViewingMonthNum  = "Viewing_Month_Num"
	ColViewingMonthName = "Viewing_Month_Name"
	ColEngagementScore  = "Engagement_Score"
)

// Record is a single cleaned, feature-enriched row. FilmName, ViewerRate
// and NumberOfViews are always present after cleaning; date-derived fields
// are nil when the source date was missing.
type Record struct {
	FilmName      string     `json:"film_name"`
	Category      string     `json:"category,omitempty"`
	Language      string     `json:"language,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	ViewingMonth  *time.Time `json:"viewing_month,omitempty"`
	ViewerRate    float64    `json:"viewer_rate"`
	NumberOfViews float64    `json:"number_of_views"`

	ReleaseYear      *int    `json:"release_year,omitempty"`
	ReleaseMonth     *int    `json:"release_month,omitempty"`
	ReleaseMonthName *string `json:"release_month_name,omitempty"`
	ViewingYear      *int    `json:"viewing_year,omitempty"`
	ViewingMonthNum  *int    `json:"viewing_month_num,omitempty"`
	ViewingMonthName *string `json:"viewing_month_name,omitempty"`
	EngagementScore  float64 `json:"engagement_score"`

	// Extra holds unrecognized columns, passed through unchanged.
	Extra map[string]string `json:"extra,omitempty"`
}

// Table is the cleaned dataset: rows plus the ordered column list
// (raw upload columns followed by derived columns).
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Summary records the row/column accounting of one pipeline run.
// It is computed once per upload and read-only afterward.
type Summary struct {
	OriginalRows int `json:"original_rows"`
	OriginalCols int `json:"original_cols"`
	FinalRows    int `json:"final_rows"`
	FinalCols    int `json:"final_cols"`
	RemovedRows  int `json:"removed_rows"`
}
