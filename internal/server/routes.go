package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/next-update", s.handleNextUpdate)

	// Update cycle manual trigger, same contract as the scheduler
	mux.HandleFunc("/api/update-all-portfolios", s.handleUpdateAll)

	// Assets
	mux.HandleFunc("/api/assets/", s.routeAssets)
	mux.HandleFunc("/api/assets", s.handleAssetList)

	// Users
	mux.HandleFunc("/api/users/summary", s.handleUserSummary)

	// Admin maintenance
	mux.HandleFunc("/api/admin/history/backfill", s.handleHistoryBackfill)
	mux.HandleFunc("/api/admin/portfolios/cleanup", s.handlePortfolioCleanup)
}

// routeAssets dispatches /api/assets/{id} and /api/assets/{id}/chart.
func (s *Server) routeAssets(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/assets/")
	if path == "" {
		s.handleAssetList(w, r)
		return
	}

	if strings.HasSuffix(path, "/chart") {
		id := strings.TrimSuffix(path, "/chart")
		s.handleAssetChart(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	s.handleAssetGet(w, r, path)
}
