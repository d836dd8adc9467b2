package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/domain"
	"contentgate/internal/generate"
)

// Generator produces (or retrieves) one piece of content.
type Generator interface {
	GetOrGenerate(ctx context.Context, req generate.Request) (*generate.Result, error)
}

// DailyPicker resolves the deterministic pick of the day for a user.
type DailyPicker interface {
	PickForDay(ctx context.Context, userID, contentType string, day time.Time) (domain.SelectionResult, error)
}

// JobService queues batch jobs and reports their state.
type JobService interface {
	Submit(ctx context.Context, subjectID string, items []domain.GenerationItem) (*domain.Job, error)
	Status(ctx context.Context, jobID string) (*domain.Job, error)
}

// SweepService runs the retention sweep across all cache categories.
type SweepService interface {
	SweepAll(ctx context.Context) map[domain.Category]int64
}

// PayloadStore is read access to cached entries, used by job export.
type PayloadStore interface {
	Get(ctx context.Context, category domain.Category, fingerprint string) (*domain.CacheEntry, bool)
}

// CacheStats reports per-category entry counts.
type CacheStats interface {
	Count(ctx context.Context, category domain.Category) (int64, error)
}

type App struct {
	Logger    zerolog.Logger
	Generator Generator
	Daily     DailyPicker
	Jobs      JobService
	Sweeper   SweepService
	Store     PayloadStore
	Stats     CacheStats
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": map[string]string{"code": code, "message": message}})
}
