package analytics

import (
	"sort"

	"github.com/filmlens/filmlens/internal/model"
)

// Quadrant is one of four mutually exclusive performance buckets from
// splitting views and rating at their dataset-wide medians.
type Quadrant string

const (
	QuadrantStar       Quadrant = "Star Performers"
	QuadrantHighViews  Quadrant = "High Views, Low Rating"
	QuadrantHiddenGems Quadrant = "Hidden Gems"
	QuadrantLow        Quadrant = "Low Performance"
)

// QuadrantReport classifies every row against the median split. The
// labels are a display annotation over the cleaned table, never written
// back into it.
type QuadrantReport struct {
	MedianViews  float64    `json:"median_views"`
	MedianRating float64    `json:"median_rating"`
	Labels       []Quadrant `json:"labels"` // parallel to table rows
	Counts       []CountItem `json:"counts"`
}

// ClassifyQuadrant assigns a row's bucket given the medians. Values
// equal to the median classify as ">=".
func ClassifyQuadrant(views, rating, medianViews, medianRating float64) Quadrant {
	highViews := views >= medianViews
	highRating := rating >= medianRating
	switch {
	case highViews && highRating:
		return QuadrantStar
	case highViews:
		return QuadrantHighViews
	case highRating:
		return QuadrantHiddenGems
	default:
		return QuadrantLow
	}
}

// Quadrants computes the median split and classifies every row.
func Quadrants(t *model.Table) *QuadrantReport {
	views := make([]float64, t.Len())
	ratings := make([]float64, t.Len())
	for i, r := range t.Rows {
		views[i] = r.NumberOfViews
		ratings[i] = r.ViewerRate
	}

	rep := &QuadrantReport{
		MedianViews:  median(views),
		MedianRating: median(ratings),
		Labels:       make([]Quadrant, t.Len()),
	}

	counts := make(map[Quadrant]int)
	for i, r := range t.Rows {
		q := ClassifyQuadrant(r.NumberOfViews, r.ViewerRate, rep.MedianViews, rep.MedianRating)
		rep.Labels[i] = q
		counts[q]++
	}
	for _, q := range []Quadrant{QuadrantStar, QuadrantHighViews, QuadrantHiddenGems, QuadrantLow} {
		if counts[q] > 0 {
			rep.Counts = append(rep.Counts, CountItem{Key: string(q), Count: counts[q]})
		}
	}
	sort.SliceStable(rep.Counts, func(i, j int) bool {
		return rep.Counts[i].Count > rep.Counts[j].Count
	})
	return rep
}

// median returns the middle value of vs, interpolating between the two
// middle values for even lengths. Returns 0 for empty input.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
