package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vjbravo123/portfolio-cms/internal/services"
)

// DashboardHandler serves the admin overview page.
type DashboardHandler struct {
	dashboard *services.DashboardService
	log       *logrus.Entry
}

func NewDashboardHandler(dashboard *services.DashboardService, log *logrus.Entry) *DashboardHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DashboardHandler{dashboard: dashboard, log: log}
}

// Overview returns the aggregate post counters.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	totals, err := h.dashboard.Overview(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

// Recent returns the latest posts for the dashboard table, drafts included.
func (h *DashboardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 5)
	posts, err := h.dashboard.RecentPosts(r.Context(), limit)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Chart returns the simulated daily traffic series.
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	days := parsePositiveInt(r.URL.Query().Get("days"), 7)
	points, err := h.dashboard.TrafficChart(r.Context(), days)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}
