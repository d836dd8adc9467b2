// Package cache provides the content-addressable cache over fingerprinted
// generation results. The cache is a performance optimization: storage
// failures are logged and never block the caller from using a freshly
// computed payload.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/domain"
)

type Cache struct {
	repo   domain.ContentRepository
	logger zerolog.Logger
}

func New(repo domain.ContentRepository, logger zerolog.Logger) *Cache {
	return &Cache{repo: repo, logger: logger}
}

// Get returns the cached entry for the fingerprint. A hit bumps usage_count
// and last_used_at; a miss has no side effects. Storage errors are logged and
// reported as misses so callers regenerate instead of failing.
func (c *Cache) Get(ctx context.Context, category domain.Category, fingerprint string) (*domain.CacheEntry, bool) {
	entry, err := c.repo.GetAndTouch(ctx, category, fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn().Err(err).
				Str("category", string(category)).
				Str("fingerprint", short(fingerprint)).
				Msg("cache: lookup failed, treating as miss")
		}
		return nil, false
	}
	c.logger.Debug().
		Str("category", string(category)).
		Str("fingerprint", short(fingerprint)).
		Int("usage_count", entry.UsageCount).
		Msg("cache: hit")
	return entry, true
}

// Put upserts the entry. Writing an existing fingerprint is an idempotent
// re-affirmation that only refreshes bookkeeping fields. The returned error
// is informational; callers already hold the payload.
func (c *Cache) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if err := c.repo.Upsert(ctx, entry); err != nil {
		c.logger.Warn().Err(err).
			Str("category", string(entry.Category)).
			Str("fingerprint", short(entry.Fingerprint)).
			Msg("cache: save failed")
		return err
	}
	c.logger.Debug().
		Str("category", string(entry.Category)).
		Str("fingerprint", short(entry.Fingerprint)).
		Msg("cache: stored")
	return nil
}

// Sweep deletes entries of the category created before now-cutoffAge,
// regardless of usage. Returns the number of rows deleted.
func (c *Cache) Sweep(ctx context.Context, category domain.Category, cutoffAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-cutoffAge)
	return c.repo.DeleteOlderThan(ctx, category, cutoff)
}

func short(fingerprint string) string {
	if len(fingerprint) > 8 {
		return fingerprint[:8]
	}
	return fingerprint
}
