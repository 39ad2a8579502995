// Package export serializes cleaned tables back to CSV and XLSX for
// download. Column order matches the table's column list exactly.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/filmlens/filmlens/internal/model"
)

// Format identifies an export output format.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

// String returns the file extension for the format.
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

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Write serializes the table to w in the given format.
func Write(w io.Writer, t *model.Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("export: unsupported format %d", int(format))
	}
}

// cellValue renders one column of a record as its textual export form.
// Dates use ISO-8601, numbers keep their shortest round-trip form, and
// nil derived fields render empty.
func cellValue(r *model.Record, column string) string {
	switch column {
	case model.ColFilmName:
		return r.FilmName
	case model.ColCategory:
		return r.Category
	case model.ColLanguage:
		return r.Language
	case model.ColReleaseDate:
		return formatDate(r.ReleaseDate)
	case model.ColViewingMonth:
		return formatDate(r.ViewingMonth)
	case model.ColViewerRate:
		return formatFloat(r.ViewerRate)
	case model.ColNumberOfViews:
		return formatFloat(r.NumberOfViews)
	case model.ColReleaseYear:
		return formatInt(r.ReleaseYear)
	case model.ColReleaseMonth:
		return formatInt(r.ReleaseMonth)
	case model.ColReleaseMonthName:
		return formatString(r.ReleaseMonthName)
	case model.ColViewingYear:
		return formatInt(r.ViewingYear)
	case model.ColViewingMonthNum:
		return formatInt(r.ViewingMonthNum)
	case model.ColViewingMonthName:
		return formatString(r.ViewingMonthName)
	case model.ColEngagementScore:
		return formatFloat(r.EngagementScore)
	default:
		return r.Extra[column]
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// Filename builds a download filename like "film_data_cleaned.csv" with
// an optional suffix segment.
func Filename(suffix string, format Format) string {
	name := "film_data_cleaned"
	if suffix != "" {
		name += "_" + strings.ReplaceAll(suffix, " ", "_")
	}
	return name + "." + format.String()
}
