package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/filmlens/filmlens/internal/model"
)

// MonthInsights summarizes one viewing month for campaign planning.
type MonthInsights struct {
	Month         string  `json:"month"`
	Films         int     `json:"films"`
	TotalViews    float64 `json:"total_views"`
	AvgRating     float64 `json:"avg_rating"`
	AvgEngagement float64 `json:"avg_engagement"`
	TopCategory   string  `json:"top_category"`
	TopLanguage   string  `json:"top_language"`

	// MonthRank is the month's position among all months by total views
	// (1 = best). Zero when the table has no viewing-month data.
	MonthRank int `json:"month_rank,omitempty"`

	// CategoryMix is each category's share of the month's views, in
	// percent, sorted descending.
	CategoryMix []KeyValue `json:"category_mix"`
}

// InsightsForMonth computes campaign insights for the named month.
// Without viewing-month data the whole table stands in for the month.
func InsightsForMonth(t *model.Table, monthName string) *MonthInsights {
	slice := FilterByMonth(t, monthName)

	ins := &MonthInsights{Month: monthName, Films: slice.Len()}

	var ratingSum, engagementSum float64
	for _, r := range slice.Rows {
		ins.TotalViews += r.NumberOfViews
		ratingSum += r.ViewerRate
		engagementSum += r.EngagementScore
	}
	if slice.Len() > 0 {
		ins.AvgRating = ratingSum / float64(slice.Len())
		ins.AvgEngagement = engagementSum / float64(slice.Len())
	}

	// idxmax over view sums per category / language.
	if perf := PerformanceByCategory(slice); len(perf) > 0 {
		ins.TopCategory = perf[0].Key
	}
	if perf := PerformanceByLanguage(slice); len(perf) > 0 {
		ins.TopLanguage = perf[0].Key
	}

	if t.HasColumn(model.ColViewingMonthName) {
		ins.MonthRank = monthRank(t, monthName)
	}

	if ins.TotalViews > 0 {
		for _, p := range PerformanceByCategory(slice) {
			ins.CategoryMix = append(ins.CategoryMix, KeyValue{
				Key:   p.Key,
				Value: p.TotalViews / ins.TotalViews * 100,
			})
		}
	}
	return ins
}

// monthRank ranks the named month among all months by total views.
func monthRank(t *model.Table, monthName string) int {
	totals := MonthlyViews(t)
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Views > totals[j].Views
	})
	for i, mt := range totals {
		if mt.Month == monthName {
			return i + 1
		}
	}
	return 0
}

// Recommendation is one canned campaign recommendation.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// Recommendations derives the December-campaign recommendation set from
// the month's aggregates.
func Recommendations(t *model.Table) []Recommendation {
	ins := InsightsForMonth(t, time.December.String())

	return []Recommendation{
		{
			Title: "Focus on Top Category",
			Description: fmt.Sprintf(
				"Prioritize %s content in December campaigns. This category has historically performed best during this month.",
				ins.TopCategory),
			Action: fmt.Sprintf("Allocate 40%% of marketing budget to promote %s films", ins.TopCategory),
		},
		{
			Title: "Language Strategy",
			Description: fmt.Sprintf(
				"%s language content shows highest engagement in December.", ins.TopLanguage),
			Action: fmt.Sprintf("Create targeted campaigns for %s-speaking audiences", ins.TopLanguage),
		},
		{
			Title: "Quality Focus",
			Description: fmt.Sprintf(
				"December average rating is %.2f. Focus on high-quality content.", ins.AvgRating),
			Action: "Promote films with ratings above 7.0 to maintain brand reputation",
		},
		{
			Title:       "Engagement Optimization",
			Description: "Star Performer films show best ROI with high views and ratings.",
			Action:      "Feature 'Star Performer' quadrant films prominently on the homepage",
		},
	}
}

// CalendarWeek is one week of the December marketing calendar.
type CalendarWeek struct {
	Week        string `json:"week"`
	Focus       string `json:"focus"`
	ContentType string `json:"content_type"`
	Budget      string `json:"budget"`
}

// MarketingCalendar lays out the four-week December plan around the top
// category.
func MarketingCalendar(topCategory string) []CalendarWeek {
	return []CalendarWeek{
		{
			Week:        "Week 1 (Dec 1-7)",
			Focus:       fmt.Sprintf("Launch %s campaign", topCategory),
			ContentType: "New releases announcement",
			Budget:      "30%",
		},
		{
			Week:        "Week 2 (Dec 8-14)",
			Focus:       "Mid-month engagement push",
			ContentType: "User-generated content campaign",
			Budget:      "25%",
		},
		{
			Week:        "Week 3 (Dec 15-21)",
			Focus:       "Holiday season special promotions",
			ContentType: "Gift subscription promotions",
			Budget:      "25%",
		},
		{
			Week:        "Week 4 (Dec 22-31)",
			Focus:       "Year-end celebration content",
			ContentType: "New Year preview teasers",
			Budget:      "20%",
		},
	}
}
