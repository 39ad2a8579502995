// Package analytics provides the descriptive aggregations computed over
// a cleaned dataset: distributions, monthly totals, leaderboards,
// quadrant classification and cross-tabulations. Every function is a
// pure, stateless query over the table.
package analytics

import (
	"sort"
	"time"

	"github.com/filmlens/filmlens/internal/model"
)

// Overview summarizes the whole dataset.
type Overview struct {
	TotalFilms int     `json:"total_films"`
	TotalViews float64 `json:"total_views"`
	AvgRating  float64 `json:"avg_rating"`
	Categories int     `json:"categories"`
	Languages  int     `json:"languages"`
}

// ComputeOverview returns headline metrics for the table.
func ComputeOverview(t *model.Table) Overview {
	o := Overview{TotalFilms: t.Len()}
	cats := make(map[string]struct{})
	langs := make(map[string]struct{})

	var ratingSum float64
	for _, r := range t.Rows {
		o.TotalViews += r.NumberOfViews
		ratingSum += r.ViewerRate
		if r.Category != "" {
			cats[r.Category] = struct{}{}
		}
		if r.Language != "" {
			langs[r.Language] = struct{}{}
		}
	}
	if t.Len() > 0 {
		o.AvgRating = ratingSum / float64(t.Len())
	}
	o.Categories = len(cats)
	o.Languages = len(langs)
	return o
}

// CountItem is one key with its row count.
type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CategoryDistribution counts rows per category, sorted by count
// descending (ties alphabetical).
func CategoryDistribution(t *model.Table) []CountItem {
	return countBy(t, func(r *model.Record) string { return r.Category })
}

// LanguageDistribution counts rows per language, sorted by count
// descending, limited to the top n (n <= 0 means all).
func LanguageDistribution(t *model.Table, n int) []CountItem {
	items := countBy(t, func(r *model.Record) string { return r.Language })
	return topN(items, n)
}

func countBy(t *model.Table, key func(*model.Record) string) []CountItem {
	counts := make(map[string]int)
	for i := range t.Rows {
		k := key(&t.Rows[i])
		if k == "" {
			continue
		}
		counts[k]++
	}
	items := make([]CountItem, 0, len(counts))
	for k, c := range counts {
		items = append(items, CountItem{Key: k, Count: c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Key < items[j].Key
	})
	return items
}

func topN(items []CountItem, n int) []CountItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// MonthTotal is the total views recorded for one calendar month.
type MonthTotal struct {
	Month string  `json:"month"`
	Views float64 `json:"views"`
	Films int     `json:"films"`
}

// MonthlyViews sums views per viewing month in calendar order
// January..December. Months without data appear with zero totals.
func MonthlyViews(t *model.Table) []MonthTotal {
	totals := make([]MonthTotal, 12)
	for m := time.January; m <= time.December; m++ {
		totals[m-1].Month = m.String()
	}
	for _, r := range t.Rows {
		if r.ViewingMonthNum == nil {
			continue
		}
		i := *r.ViewingMonthNum - 1
		totals[i].Views += r.NumberOfViews
		totals[i].Films++
	}
	return totals
}

// KeyValue is one aggregation key with its value.
type KeyValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AvgRatingByCategory averages Viewer_Rate per category, sorted
// descending by value.
func AvgRatingByCategory(t *model.Table) []KeyValue {
	return meanBy(t, func(r *model.Record) float64 { return r.ViewerRate })
}

// AvgEngagementByCategory averages Engagement_Score per category,
// sorted descending by value.
func AvgEngagementByCategory(t *model.Table) []KeyValue {
	return meanBy(t, func(r *model.Record) float64 { return r.EngagementScore })
}

func meanBy(t *model.Table, value func(*model.Record) float64) []KeyValue {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Category == "" {
			continue
		}
		sums[r.Category] += value(r)
		counts[r.Category]++
	}
	items := make([]KeyValue, 0, len(sums))
	for k := range sums {
		items = append(items, KeyValue{Key: k, Value: sums[k] / float64(counts[k])})
	}
	sortKeyValuesDesc(items)
	return items
}

func sortKeyValuesDesc(items []KeyValue) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Key < items[j].Key
	})
}

// TopByEngagement returns the n rows with the highest engagement score.
func TopByEngagement(t *model.Table, n int) []model.Record {
	return nlargest(t, n, func(r *model.Record) float64 { return r.EngagementScore })
}

// TopByViews returns the n rows with the highest view count.
func TopByViews(t *model.Table, n int) []model.Record {
	return nlargest(t, n, func(r *model.Record) float64 { return r.NumberOfViews })
}

// TopByRating returns the n rows with the highest viewer rating.
func TopByRating(t *model.Table, n int) []model.Record {
	return nlargest(t, n, func(r *model.Record) float64 { return r.ViewerRate })
}

// nlargest copies the rows and returns the top n by value, preserving
// original order among ties.
func nlargest(t *model.Table, n int, value func(*model.Record) float64) []model.Record {
	rows := append([]model.Record(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return value(&rows[i]) > value(&rows[j])
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// FilterByMonth returns the rows whose viewing month name matches.
// When the table has no viewing-month data the whole table is returned
// unchanged, so downstream aggregations still have something to show.
func FilterByMonth(t *model.Table, monthName string) *model.Table {
	if !t.HasColumn(model.ColViewingMonthName) {
		return t
	}
	out := &model.Table{Columns: t.Columns}
	for _, r := range t.Rows {
		if r.ViewingMonthName != nil && *r.ViewingMonthName == monthName {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// GroupPerformance summarizes one category or language.
type GroupPerformance struct {
	Key        string  `json:"key"`
	TotalViews float64 `json:"total_views"`
	AvgRating  float64 `json:"avg_rating"`
	Films      int     `json:"films"`
}

// PerformanceByCategory aggregates views, rating and film count per
// category, sorted by total views descending.
func PerformanceByCategory(t *model.Table) []GroupPerformance {
	return performanceBy(t, func(r *model.Record) string { return r.Category })
}

// PerformanceByLanguage aggregates views, rating and film count per
// language, sorted by total views descending.
func PerformanceByLanguage(t *model.Table) []GroupPerformance {
	return performanceBy(t, func(r *model.Record) string { return r.Language })
}

func performanceBy(t *model.Table, key func(*model.Record) string) []GroupPerformance {
	type acc struct {
		views, rating float64
		films         int
	}
	groups := make(map[string]*acc)
	for i := range t.Rows {
		r := &t.Rows[i]
		k := key(r)
		if k == "" {
			continue
		}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.views += r.NumberOfViews
		a.rating += r.ViewerRate
		a.films++
	}
	items := make([]GroupPerformance, 0, len(groups))
	for k, a := range groups {
		items = append(items, GroupPerformance{
			Key:        k,
			TotalViews: a.views,
			AvgRating:  a.rating / float64(a.films),
			Films:      a.films,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalViews != items[j].TotalViews {
			return items[i].TotalViews > items[j].TotalViews
		}
		return items[i].Key < items[j].Key
	})
	return items
}

// CrossTab holds views summed by category x language.
type CrossTab struct {
	Categories []string    `json:"categories"`
	Languages  []string    `json:"languages"`
	Values     [][]float64 `json:"values"` // [category][language]
}

// CrossTabViews cross-tabulates total views by category and language.
// Axes are sorted alphabetically.
func CrossTabViews(t *model.Table) *CrossTab {
	catSet := make(map[string]struct{})
	langSet := make(map[string]struct{})
	for _, r := range t.Rows {
		if r.Category != "" {
			catSet[r.Category] = struct{}{}
		}
		if r.Language != "" {
			langSet[r.Language] = struct{}{}
		}
	}

	ct := &CrossTab{
		Categories: sortedKeys(catSet),
		Languages:  sortedKeys(langSet),
	}
	catIdx := indexOf(ct.Categories)
	langIdx := indexOf(ct.Languages)

	ct.Values = make([][]float64, len(ct.Categories))
	for i := range ct.Values {
		ct.Values[i] = make([]float64, len(ct.Languages))
	}
	for _, r := range t.Rows {
		ci, ok1 := catIdx[r.Category]
		li, ok2 := langIdx[r.Language]
		if ok1 && ok2 {
			ct.Values[ci][li] += r.NumberOfViews
		}
	}
	return ct
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}
