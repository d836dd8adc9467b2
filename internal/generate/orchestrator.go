// Package generate glues caching, quota tracking and fallbacks into the
// end-to-end get-or-generate flow.
package generate

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"contentgate/internal/cache"
	"contentgate/internal/domain"
	"contentgate/internal/fallback"
	"contentgate/internal/fingerprint"
	imageprovider "contentgate/internal/providers/image"
	"contentgate/internal/quota"
)

// Request describes one get-or-generate call.
type Request struct {
	Prompt      string
	AspectRatio string
	GradeLevel  int
	TopicID     string
	ContentType string
	Locale      string
	RequestID   string
	SkipCache   bool
}

// Result is what callers receive. UsedFallback marks a procedural theme
// standing in for a generated image; quota exhaustion is never surfaced to
// the caller as a failure.
type Result struct {
	Fingerprint  string
	Payload      string
	PayloadType  domain.PayloadType
	EffectID     string
	GradientID   string
	FromCache    bool
	UsedFallback bool
}

type Orchestrator struct {
	cache     *cache.Cache
	breaker   *quota.Breaker
	generator imageprovider.Generator
	logger    zerolog.Logger
}

func NewOrchestrator(c *cache.Cache, breaker *quota.Breaker, generator imageprovider.Generator, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{cache: c, breaker: breaker, generator: generator, logger: logger}
}

// GetOrGenerate serves the content for the request: cache first, then the
// external generator guarded by the circuit breaker, then the procedural
// fallback. Every failure path resolves to a usable payload.
func (o *Orchestrator) GetOrGenerate(ctx context.Context, req Request) (*Result, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, domain.ErrInvalidPrompt
	}

	fp := fingerprint.Key(req.Prompt, req.AspectRatio, req.GradeLevel)

	if !req.SkipCache {
		if entry, ok := o.cache.Get(ctx, domain.CategoryImage, fp); ok {
			// A real image always satisfies the request. A cached gradient
			// placeholder is served only while the breaker blocks calls;
			// once it allows one we try to replace the placeholder.
			if entry.PayloadType != domain.PayloadTypeGradient || o.breaker.IsOpen() {
				return &Result{
					Fingerprint: fp,
					Payload:     entry.Payload,
					PayloadType: entry.PayloadType,
					EffectID:    entry.EffectID,
					GradientID:  entry.GradientID,
					FromCache:   true,
				}, nil
			}
			return o.generate(ctx, req, fp)
		}
	}

	if o.breaker.IsOpen() {
		return o.fallbackResult(ctx, req, fp, "breaker open"), nil
	}
	return o.generate(ctx, req, fp)
}

// generate calls the provider and resolves the breaker probe it may hold.
func (o *Orchestrator) generate(ctx context.Context, req Request, fp string) (*Result, error) {
	asset, err := o.generator.Generate(ctx, imageprovider.GenerateRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		GradeLevel:  req.GradeLevel,
		RequestID:   req.RequestID,
		Locale:      req.Locale,
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			o.logger.Warn().
				Str("request_id", req.RequestID).
				Msg("generate: provider quota exhausted, switching to themed fallback")
			o.breaker.RecordQuotaExhausted()
			return o.fallbackResult(ctx, req, fp, "quota exhausted"), nil
		}
		// One-off failures must not trip the breaker.
		o.breaker.RecordFailure()
		o.logger.Error().Err(err).
			Str("request_id", req.RequestID).
			Msg("generate: provider failed, using fallback")
		return o.fallbackResult(ctx, req, fp, "provider error"), nil
	}

	o.breaker.RecordSuccess()
	payload := encodePayload(asset)
	o.storeEntry(ctx, &domain.CacheEntry{
		Fingerprint:    fp,
		Category:       domain.CategoryImage,
		ContentType:    req.ContentType,
		Payload:        payload,
		PayloadType:    domain.PayloadTypeImage,
		OriginalPrompt: req.Prompt,
		TopicID:        req.TopicID,
		AspectRatio:    req.AspectRatio,
		GradeLevel:     req.GradeLevel,
		GenerationMS:   asset.GenerationMS,
	})

	return &Result{
		Fingerprint: fp,
		Payload:     payload,
		PayloadType: domain.PayloadTypeImage,
	}, nil
}

// fallbackResult maps the prompt onto a procedural theme, caches it under the
// same fingerprint and returns it as an accepted result.
func (o *Orchestrator) fallbackResult(ctx context.Context, req Request, fp string, reason string) *Result {
	theme := fallback.MapToTheme(req.Prompt)
	o.logger.Info().
		Str("request_id", req.RequestID).
		Str("effect", theme.EffectID).
		Str("reason", reason).
		Msg("generate: serving themed fallback")

	o.storeEntry(ctx, &domain.CacheEntry{
		Fingerprint:    fp,
		Category:       domain.CategoryImage,
		ContentType:    req.ContentType,
		Payload:        theme.Gradient,
		PayloadType:    domain.PayloadTypeGradient,
		OriginalPrompt: req.Prompt,
		TopicID:        req.TopicID,
		AspectRatio:    req.AspectRatio,
		GradeLevel:     req.GradeLevel,
		EffectID:       theme.EffectID,
		GradientID:     theme.GradientID,
	})

	return &Result{
		Fingerprint:  fp,
		Payload:      theme.Gradient,
		PayloadType:  domain.PayloadTypeGradient,
		EffectID:     theme.EffectID,
		GradientID:   theme.GradientID,
		UsedFallback: true,
	}
}

// storeEntry caches the computed payload. Write failures are logged by the
// cache and deliberately not propagated; the caller already has the result.
func (o *Orchestrator) storeEntry(ctx context.Context, entry *domain.CacheEntry) {
	_ = o.cache.Put(ctx, entry)
}

func encodePayload(asset *imageprovider.Asset) string {
	return "data:" + asset.Format + ";base64," + base64.StdEncoding.EncodeToString(asset.Data)
}
