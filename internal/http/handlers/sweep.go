package handlers

import (
	"net/http"

	"contentgate/internal/domain"
)

// SweepNow serves POST /v1/internal/sweep: an on-demand retention sweep over
// every cache category. The scheduled sweep stays in the worker; this exists
// for operational use.
func (a *App) SweepNow(w http.ResponseWriter, r *http.Request) {
	deleted := a.Sweeper.SweepAll(r.Context())
	out := make(map[string]int64, len(deleted))
	for category, n := range deleted {
		out[string(category)] = n
	}
	a.json(w, http.StatusOK, map[string]any{"deleted": out})
}

// StatsSummary serves GET /v1/stats with per-category cache sizes.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	categories := []domain.Category{domain.CategoryContent, domain.CategoryImage, domain.CategoryChatLog}
	counts := make(map[string]int64, len(categories))
	for _, category := range categories {
		n, err := a.Stats.Count(r.Context(), category)
		if err != nil {
			a.Logger.Error().Err(err).Str("category", string(category)).Msg("http: cache count failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
			return
		}
		counts[string(category)] = n
	}
	a.json(w, http.StatusOK, map[string]any{"cache_entries": counts})
}
