// Package tui renders cleaning summaries and analytics reports for the
// terminal. Simple streaming output, no interactive widgets.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/filmlens/filmlens/internal/model"
	"github.com/filmlens/filmlens/pkg/analytics"
)

// Colors (Swiss minimal)
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

const rule = "  ─────────────────────────────────────"

// Header renders the product banner.
func Header(version string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  FILMLENS") + mutedStyle.Render(" v"+version) + "\n")
	b.WriteString(mutedStyle.Render("  Film viewing analytics and campaign planner") + "\n")
	return b.String()
}

// Summary renders the row/column accounting of a cleaning run.
func Summary(s *model.Summary) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ CLEANING SUMMARY") + "\n")
	b.WriteString(mutedStyle.Render(rule) + "\n")
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Original rows:"),
		titleStyle.Render(fmt.Sprintf("%d", s.OriginalRows)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Final rows:"),
		titleStyle.Render(fmt.Sprintf("%d", s.FinalRows)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Removed rows:"),
		accentStyle.Render(fmt.Sprintf("%d", s.RemovedRows)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Columns:"),
		titleStyle.Render(fmt.Sprintf("%d → %d", s.OriginalCols, s.FinalCols)))
	b.WriteString(mutedStyle.Render(rule) + "\n")
	return b.String()
}

// Overview renders the headline dataset metrics.
func Overview(o *analytics.Overview) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ OVERVIEW") + "\n")
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Films:"),
		titleStyle.Render(fmt.Sprintf("%d", o.TotalFilms)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Total views:"),
		titleStyle.Render(fmt.Sprintf("%.0f", o.TotalViews)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Avg rating:"),
		titleStyle.Render(fmt.Sprintf("%.2f", o.AvgRating)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Categories:"),
		titleStyle.Render(fmt.Sprintf("%d", o.Categories)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Languages:"),
		titleStyle.Render(fmt.Sprintf("%d", o.Languages)))
	return b.String()
}

// Distribution renders a key/value breakdown as aligned rows.
func Distribution(title string, items []analytics.KeyValue) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ "+strings.ToUpper(title)) + "\n")
	width := 0
	for _, it := range items {
		if len(it.Key) > width {
			width = len(it.Key)
		}
	}
	for _, it := range items {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, it.Key,
			titleStyle.Render(fmt.Sprintf("%.2f", it.Value)))
	}
	return b.String()
}

// Quadrants renders the performance quadrant counts.
func Quadrants(r *analytics.QuadrantReport) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ PERFORMANCE QUADRANTS") + "\n")
	fmt.Fprintf(&b, "  %s %s   %s %s\n",
		mutedStyle.Render("Median views:"),
		titleStyle.Render(fmt.Sprintf("%.0f", r.MedianViews)),
		mutedStyle.Render("Median rating:"),
		titleStyle.Render(fmt.Sprintf("%.2f", r.MedianRating)))
	for _, c := range r.Counts {
		style := mutedStyle
		if c.Key == string(analytics.QuadrantStar) {
			style = successStyle
		}
		fmt.Fprintf(&b, "  %s %s\n", style.Render(c.Key+":"),
			titleStyle.Render(fmt.Sprintf("%d", c.Count)))
	}
	return b.String()
}

// Recommendations renders the campaign recommendation cards.
func Recommendations(recs []analytics.Recommendation) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ CAMPAIGN RECOMMENDATIONS") + "\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "\n  %s %s\n", successStyle.Render(fmt.Sprintf("%d.", i+1)),
			titleStyle.Render(r.Title))
		fmt.Fprintf(&b, "     %s\n", mutedStyle.Render(r.Description))
		fmt.Fprintf(&b, "     %s %s\n", accentStyle.Render("→"), r.Action)
	}
	return b.String()
}

// Calendar renders the four-week campaign calendar.
func Calendar(weeks []analytics.CalendarWeek) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(accentStyle.Render("▸ MARKETING CALENDAR") + "\n")
	for _, w := range weeks {
		fmt.Fprintf(&b, "\n  %s %s\n", titleStyle.Render(w.Week),
			mutedStyle.Render("budget "+w.Budget))
		fmt.Fprintf(&b, "     %s\n", w.Focus)
		fmt.Fprintf(&b, "     %s\n", mutedStyle.Render(w.ContentType))
	}
	return b.String()
}

// NewProgressBar builds the progress bar used while cleaning a file.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
