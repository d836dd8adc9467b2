package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"contentgate/internal/domain"
	"contentgate/internal/domain/jsoncfg"
	"contentgate/internal/generate"
	"contentgate/internal/middleware"
)

type generateResponse struct {
	Fingerprint  string `json:"fingerprint"`
	Payload      string `json:"payload"`
	PayloadType  string `json:"payload_type"`
	EffectID     string `json:"effect_id,omitempty"`
	GradientID   string `json:"gradient_id,omitempty"`
	FromCache    bool   `json:"from_cache"`
	UsedFallback bool   `json:"used_fallback"`
}

// ContentGenerate serves POST /v1/content/generate. The response is always a
// usable payload; provider trouble degrades to a themed fallback, never to an
// error status.
func (a *App) ContentGenerate(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.PromptJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Normalize(middleware.LocaleFromContext(r.Context()))
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	result, err := a.Generator.GetOrGenerate(r.Context(), generate.Request{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		GradeLevel:  req.GradeLevel,
		TopicID:     req.TopicID,
		Locale:      req.Locale,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
		SkipCache:   req.SkipCache,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrompt) {
			a.error(w, http.StatusBadRequest, "bad_request", "prompt text is required")
			return
		}
		a.Logger.Error().Err(err).Msg("http: content generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "generation failed")
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		Fingerprint:  result.Fingerprint,
		Payload:      result.Payload,
		PayloadType:  string(result.PayloadType),
		EffectID:     result.EffectID,
		GradientID:   result.GradientID,
		FromCache:    result.FromCache,
		UsedFallback: result.UsedFallback,
	})
}
