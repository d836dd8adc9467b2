package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/domain"
)

// RetentionPolicy pairs a cache category with its maximum age.
type RetentionPolicy struct {
	Category domain.Category
	MaxAge   time.Duration
}

// DefaultRetention prunes generated text daily, generated images weekly and
// chat logs monthly. Ages are measured from created_at, not last_used_at: a
// hot entry is deleted on the same schedule as a cold one.
var DefaultRetention = []RetentionPolicy{
	{Category: domain.CategoryContent, MaxAge: 24 * time.Hour},
	{Category: domain.CategoryImage, MaxAge: 7 * 24 * time.Hour},
	{Category: domain.CategoryChatLog, MaxAge: 30 * 24 * time.Hour},
}

// Sweeper runs the scheduled retention purge across all cache categories.
type Sweeper struct {
	cache    *Cache
	policies []RetentionPolicy
	logger   zerolog.Logger
}

func NewSweeper(cache *Cache, policies []RetentionPolicy, logger zerolog.Logger) *Sweeper {
	if len(policies) == 0 {
		policies = DefaultRetention
	}
	return &Sweeper{cache: cache, policies: policies, logger: logger}
}

// SweepAll purges every category per its policy and returns per-category
// deletion counts. A failing category is logged and skipped; the others still
// run. Invoking it with nothing eligible deletes zero rows, so repeated
// triggers are safe.
func (s *Sweeper) SweepAll(ctx context.Context) map[domain.Category]int64 {
	counts := make(map[domain.Category]int64, len(s.policies))
	for _, policy := range s.policies {
		deleted, err := s.cache.Sweep(ctx, policy.Category, policy.MaxAge)
		if err != nil {
			s.logger.Error().Err(err).
				Str("category", string(policy.Category)).
				Msg("sweep: category failed, continuing with the rest")
			continue
		}
		counts[policy.Category] = deleted
		s.logger.Info().
			Str("category", string(policy.Category)).
			Dur("max_age", policy.MaxAge).
			Int64("deleted", deleted).
			Msg("sweep: category done")
	}
	return counts
}

// Run triggers SweepAll on the interval until the context is canceled. One
// sweep runs immediately at startup.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	s.SweepAll(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepAll(ctx)
		}
	}
}
