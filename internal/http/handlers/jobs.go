package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"contentgate/internal/domain"
	"contentgate/internal/fingerprint"
	"contentgate/pkg/zip"
)

type jobSubmitRequest struct {
	SubjectID string                  `json:"subject_id"`
	Items     []domain.GenerationItem `json:"items"`
}

type jobView struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subject_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	TotalItems   int        `json:"total_items"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func viewOf(job *domain.Job) jobView {
	return jobView{
		ID:           job.ID,
		SubjectID:    job.SubjectID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		TotalItems:   job.TotalItems,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// JobSubmit serves POST /v1/jobs and queues a batch generation job.
func (a *App) JobSubmit(w http.ResponseWriter, r *http.Request) {
	var req jobSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	job, err := a.Jobs.Submit(r.Context(), strings.TrimSpace(req.SubjectID), req.Items)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrompt) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("http: job submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.json(w, http.StatusAccepted, viewOf(job))
}

// JobStatus serves GET /v1/jobs/{job_id}.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("http: job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, viewOf(job))
}

// JobExport serves GET /v1/jobs/{job_id}/export: the cached payloads of a
// completed job bundled into a zip archive.
func (a *App) JobExport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.Status(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("http: job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.Status != domain.JobStatusCompleted {
		a.error(w, http.StatusConflict, "not_ready", fmt.Sprintf("job is %s, export requires completed", job.Status))
		return
	}

	var assets []zip.Asset
	for i, item := range job.Items {
		fp := fingerprint.Key(item.Prompt, item.AspectRatio, item.GradeLevel)
		entry, ok := a.Store.Get(r.Context(), domain.CategoryImage, fp)
		if !ok {
			// Swept between completion and export; skip rather than fail.
			a.Logger.Warn().Str("job_id", jobID).Int("item", i+1).Msg("http: export item missing from cache")
			continue
		}
		assets = append(assets, exportAsset(i, entry))
	}
	if len(assets) == 0 {
		a.error(w, http.StatusGone, "expired", "job payloads are no longer cached")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=job-%s.zip", jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func exportAsset(index int, entry *domain.CacheEntry) zip.Asset {
	name := fmt.Sprintf("item-%02d", index+1)
	if entry.PayloadType == domain.PayloadTypeGradient {
		return zip.Asset{
			Filename: name + ".css",
			MIME:     "text/css",
			Data:     []byte("background: " + entry.Payload + ";\n"),
		}
	}
	if data, ok := decodeDataURL(entry.Payload); ok {
		return zip.Asset{Filename: name + ".png", MIME: string(entry.PayloadType), Data: data}
	}
	return zip.Asset{Filename: name + ".txt", MIME: "text/plain", Data: []byte(entry.Payload)}
}

func decodeDataURL(payload string) ([]byte, bool) {
	const marker = ";base64,"
	idx := strings.Index(payload, marker)
	if !strings.HasPrefix(payload, "data:") || idx < 0 {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload[idx+len(marker):])
	if err != nil {
		return nil, false
	}
	return data, true
}
