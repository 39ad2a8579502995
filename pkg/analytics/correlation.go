package analytics

import (
	"math"
	"strconv"

	"github.com/filmlens/filmlens/internal/model"
)

// CorrelationMatrix holds the Pearson correlations between the numeric
// columns of the table.
type CorrelationMatrix struct {
	Columns []string      `json:"columns"`
	Values  [][]CorrValue `json:"values"`
}

// CorrValue is a correlation coefficient that serializes NaN (undefined
// correlation) as JSON null.
type CorrValue float64

// MarshalJSON implements json.Marshaler.
func (v CorrValue) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(v), 'g', -1, 64), nil
}

// numericColumn extracts one numeric column as values plus a validity
// mask (date-derived columns are missing where the date was).
type numericColumn struct {
	name   string
	values []float64
	valid  []bool
}

// Correlation computes the pairwise-complete Pearson correlation matrix
// over the numeric columns present in the table. Pairs with no
// overlapping rows or zero variance yield NaN, which serializes as null.
func Correlation(t *model.Table) *CorrelationMatrix {
	cols := numericColumns(t)

	m := &CorrelationMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]CorrValue, len(cols)),
	}
	for i, c := range cols {
		m.Columns[i] = c.name
		m.Values[i] = make([]CorrValue, len(cols))
	}
	for i := range cols {
		for j := range cols {
			if j < i {
				m.Values[i][j] = m.Values[j][i]
				continue
			}
			m.Values[i][j] = CorrValue(pearson(cols[i], cols[j]))
		}
	}
	return m
}

func numericColumns(t *model.Table) []numericColumn {
	n := t.Len()
	var cols []numericColumn

	full := func(name string, get func(*model.Record) float64) {
		c := numericColumn{name: name, values: make([]float64, n), valid: make([]bool, n)}
		for i := range t.Rows {
			c.values[i] = get(&t.Rows[i])
			c.valid[i] = true
		}
		cols = append(cols, c)
	}
	optional := func(name string, get func(*model.Record) *int) {
		if !t.HasColumn(name) {
			return
		}
		c := numericColumn{name: name, values: make([]float64, n), valid: make([]bool, n)}
		for i := range t.Rows {
			if v := get(&t.Rows[i]); v != nil {
				c.values[i] = float64(*v)
				c.valid[i] = true
			}
		}
		cols = append(cols, c)
	}

	full(model.ColViewerRate, func(r *model.Record) float64 { return r.ViewerRate })
	full(model.ColNumberOfViews, func(r *model.Record) float64 { return r.NumberOfViews })
	optional(model.ColReleaseYear, func(r *model.Record) *int { return r.ReleaseYear })
	optional(model.ColReleaseMonth, func(r *model.Record) *int { return r.ReleaseMonth })
	optional(model.ColViewingYear, func(r *model.Record) *int { return r.ViewingYear })
	optional(model.ColViewingMonthNum, func(r *model.Record) *int { return r.ViewingMonthNum })
	full(model.ColEngagementScore, func(r *model.Record) float64 { return r.EngagementScore })
	return cols
}

// pearson computes the correlation over rows where both columns are
// present.
func pearson(a, b numericColumn) float64 {
	var n float64
	var sumA, sumB float64
	for i := range a.values {
		if a.valid[i] && b.valid[i] {
			n++
			sumA += a.values[i]
			sumB += b.values[i]
		}
	}
	if n < 2 {
		return math.NaN()
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for i := range a.values {
		if a.valid[i] && b.valid[i] {
			da := a.values[i] - meanA
			db := b.values[i] - meanB
			cov += da * db
			varA += da * da
			varB += db * db
		}
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}
