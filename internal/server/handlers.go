package server

import (
	"net/http"
	"time"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/models"
	"github.com/Ranjith-H7/backend/internal/services/market"
)

// handleHealth reports server and store reachability. Responds 503 when the
// backing store is unreachable so load balancers can react.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	database := "connected"
	status := http.StatusOK
	if err := s.app.Storage.Ping(r.Context()); err != nil {
		database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	WriteJSON(w, status, map[string]interface{}{
		"server":    "running",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleNextUpdate reports cycle timing for countdown displays.
func (s *Server) handleNextUpdate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.Updater.Status())
}

// handleUpdateAll triggers a full update cycle on demand. It shares the Run
// contract with the scheduler, so manual and scheduled execution cannot
// diverge.
func (s *Server) handleUpdateAll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	report, err := s.app.Updater.Run(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Update cycle failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	assets, err := s.app.Storage.AssetStore().ListAssets(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list assets: "+err.Error())
		return
	}
	if assets == nil {
		assets = []*models.Asset{}
	}
	WriteJSON(w, http.StatusOK, assets)
}

func (s *Server) handleAssetGet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	asset, err := s.app.Storage.AssetStore().GetAsset(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Asset not found")
		return
	}
	WriteJSON(w, http.StatusOK, asset)
}

// handleAssetChart renders the asset's price history as a PNG.
func (s *Server) handleAssetChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	asset, err := s.app.Storage.AssetStore().GetAsset(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Asset not found")
		return
	}

	png, err := market.RenderHistoryChart(asset)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Cannot render chart: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleUserSummary returns per-user valuation audit rows.
func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	users, err := s.app.Storage.UserStore().ListUsers(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list users: "+err.Error())
		return
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, models.UserSummary{
			ID:            u.ID,
			Email:         u.Email,
			Balance:       u.Balance,
			TotalInvested: u.TotalInvested,
			CurrentValue:  u.CurrentValue,
			ProfitLoss:    u.ProfitLoss,
			Holdings:      len(u.Portfolio),
		})
	}
	WriteJSON(w, http.StatusOK, summaries)
}

// handleHistoryBackfill regenerates synthetic price history for all assets.
func (s *Server) handleHistoryBackfill(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Points int `json:"points"`
	}
	if r.ContentLength > 0 && !DecodeJSON(w, r, &req) {
		return
	}

	updated, err := s.app.Seeder.BackfillHistory(r.Context(), req.Points)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Backfill failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"assets_updated": updated})
}

// handlePortfolioCleanup purges unresolvable holdings across all users.
func (s *Server) handlePortfolioCleanup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	removed, err := s.app.Seeder.CleanupPortfolios(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Cleanup failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"holdings_removed": removed})
}
