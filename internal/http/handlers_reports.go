package http

import (
	"net/http"
	"time"

	"padaria/internal/core"
	applog "padaria/internal/log"
	"padaria/internal/report"
)

// Report views are memoized per kind and day; any order mutation purges them.

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "daily", report.Daily)
}

func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "weekly", report.Weekly)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	s.serveReport(w, r, "monthly", report.Monthly)
}

func (s *Server) serveReport(w http.ResponseWriter, r *http.Request, kind string, build func([]core.Order, time.Time, []core.Variant) []report.Bucket) {
	now := time.Now()
	key := kind + ":" + core.FormatDay(now)

	if buckets, found := s.reportCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit", "kind", kind)
		writeJSON(w, http.StatusOK, buckets)
		return
	}

	orders, err := s.backend.ListOrders(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report list error", "error", err, "kind", kind)
		writeError(w, http.StatusInternalServerError, "erro ao carregar relatório")
		return
	}

	buckets := build(orders, now, core.Variants())
	s.reportCache.Set(key, buckets)

	writeJSON(w, http.StatusOK, buckets)
}
