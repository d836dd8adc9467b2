package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"contentgate/internal/daily"
	"contentgate/internal/domain"
)

type dailyResponse struct {
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	CandidateID string `json:"candidate_id"`
	Index       int    `json:"index"`
}

// DailyPick serves GET /v1/daily/{category}. The pick is a pure function of
// user, category and date, so repeated calls on the same day return the same
// candidate without any stored state.
func (a *App) DailyPick(w http.ResponseWriter, r *http.Request) {
	category := strings.ToUpper(chi.URLParam(r, "category"))
	if category == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "category required")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id required")
		return
	}

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(daily.DateLayout, raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	pick, err := a.Daily.PickForDay(r.Context(), userID, category, day)
	if err != nil {
		if errors.Is(err, domain.ErrNoCandidates) {
			a.error(w, http.StatusNotFound, "not_found", "no published candidates for category")
			return
		}
		a.Logger.Error().Err(err).Str("category", category).Msg("http: daily pick failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve daily pick")
		return
	}

	a.json(w, http.StatusOK, dailyResponse{
		UserID:      pick.UserID,
		Category:    pick.Category,
		Date:        pick.Date,
		CandidateID: pick.CandidateID,
		Index:       pick.Index,
	})
}
