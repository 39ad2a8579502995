package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/filmlens/filmlens/internal/model"
	"github.com/filmlens/filmlens/pkg/analytics"
	"github.com/filmlens/filmlens/pkg/export"
)

// handleSession dispatches /api/session/{id}[/{action}] requests.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/session/")
	if rest == "" {
		jsonError(w, "Session ID required", http.StatusBadRequest)
		return
	}

	id, action := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, action = rest[:i], rest[i+1:]
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		jsonError(w, "Session not found", http.StatusNotFound)
		return
	}

	if action == "" {
		if r.Method == "DELETE" {
			s.sessions.Delete(id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		jsonResponse(w, sess.snapshot())
		return
	}

	table := sess.Table()
	if table == nil {
		jsonError(w, "Session not ready", http.StatusConflict)
		return
	}

	switch action {
	case "table":
		s.handleTable(w, r, table)
	case "overview":
		jsonResponse(w, analytics.ComputeOverview(table))
	case "categories":
		jsonResponse(w, analytics.CategoryDistribution(table))
	case "languages":
		jsonResponse(w, analytics.LanguageDistribution(table, queryInt(r, "n", 10)))
	case "monthly-views":
		jsonResponse(w, analytics.MonthlyViews(table))
	case "rating-by-category":
		jsonResponse(w, analytics.AvgRatingByCategory(table))
	case "engagement-by-category":
		jsonResponse(w, analytics.AvgEngagementByCategory(table))
	case "performance-by-category":
		jsonResponse(w, analytics.PerformanceByCategory(table))
	case "performance-by-language":
		jsonResponse(w, analytics.PerformanceByLanguage(table))
	case "top":
		s.handleTop(w, r, table)
	case "quadrants":
		jsonResponse(w, analytics.Quadrants(table))
	case "correlation":
		jsonResponse(w, analytics.Correlation(table))
	case "crosstab":
		jsonResponse(w, analytics.CrossTabViews(table))
	case "insights":
		month := r.URL.Query().Get("month")
		if month == "" {
			month = "December"
		}
		jsonResponse(w, analytics.InsightsForMonth(table, month))
	case "recommendations":
		jsonResponse(w, analytics.Recommendations(table))
	case "calendar":
		ins := analytics.InsightsForMonth(table, "December")
		jsonResponse(w, analytics.MarketingCalendar(ins.TopCategory))
	case "download":
		s.handleDownload(w, r, table)
	default:
		jsonError(w, "Unknown endpoint", http.StatusNotFound)
	}
}

// handleTable returns a page of cleaned rows.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request, table *model.Table) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)

	if offset < 0 {
		offset = 0
	}
	if offset > table.Len() {
		offset = table.Len()
	}
	end := offset + limit
	if limit <= 0 || end > table.Len() {
		end = table.Len()
	}

	jsonResponse(w, map[string]interface{}{
		"columns": table.Columns,
		"rows":    table.Rows[offset:end],
		"total":   table.Len(),
		"offset":  offset,
	})
}

// handleTop returns the top-N films by the requested metric.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request, table *model.Table) {
	n := queryInt(r, "n", 10)

	var rows []model.Record
	switch by := r.URL.Query().Get("by"); by {
	case "", "engagement":
		rows = analytics.TopByEngagement(table, n)
	case "views":
		rows = analytics.TopByViews(table, n)
	case "rating":
		rows = analytics.TopByRating(table, n)
	default:
		jsonError(w, "Unknown metric: "+by, http.StatusBadRequest)
		return
	}
	jsonResponse(w, rows)
}

// handleDownload serves the cleaned dataset as CSV or XLSX.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, table *model.Table) {
	format := export.FormatCSV
	if f := r.URL.Query().Get("format"); f == "xlsx" {
		format = export.FormatXLSX
	} else if f != "" && f != "csv" {
		jsonError(w, "Unknown format: "+f, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename("", format)))

	if err := export.Write(w, table, format); err != nil {
		// Headers are out, best we can do is log-free abort.
		return
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
