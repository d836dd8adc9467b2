package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/domain"
)

// flakyRepo fails deletes for one category only.
type flakyRepo struct {
	memRepo
	failCategory domain.Category
}

func (f *flakyRepo) DeleteOlderThan(ctx context.Context, category domain.Category, cutoff time.Time) (int64, error) {
	if category == f.failCategory {
		return 0, errors.New("table missing")
	}
	return f.memRepo.DeleteOlderThan(ctx, category, cutoff)
}

func TestSweepAllIsolatesCategoryFailures(t *testing.T) {
	repo := &flakyRepo{failCategory: domain.CategoryImage}
	repo.entries = make(map[string]*domain.CacheEntry)
	ctx := context.Background()
	_ = repo.Upsert(ctx, &domain.CacheEntry{
		Fingerprint: "aged",
		Category:    domain.CategoryContent,
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	})

	sweeper := NewSweeper(testCache(repo), nil, zerolog.New(io.Discard))
	counts := sweeper.SweepAll(ctx)

	if _, ok := counts[domain.CategoryImage]; ok {
		t.Fatal("failing category should be absent from the counts")
	}
	if counts[domain.CategoryContent] != 1 {
		t.Fatalf("content count = %d, want 1", counts[domain.CategoryContent])
	}
	if counts[domain.CategoryChatLog] != 0 {
		t.Fatalf("chat_log count = %d, want 0", counts[domain.CategoryChatLog])
	}
}

func TestSweepAllIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	ctx := context.Background()
	_ = repo.Upsert(ctx, &domain.CacheEntry{
		Fingerprint: "aged",
		Category:    domain.CategoryImage,
		CreatedAt:   time.Now().Add(-8 * 24 * time.Hour),
	})

	sweeper := NewSweeper(testCache(repo), nil, zerolog.New(io.Discard))
	first := sweeper.SweepAll(ctx)
	second := sweeper.SweepAll(ctx)

	if first[domain.CategoryImage] != 1 {
		t.Fatalf("first sweep deleted %d, want 1", first[domain.CategoryImage])
	}
	if second[domain.CategoryImage] != 0 {
		t.Fatalf("second sweep deleted %d, want 0", second[domain.CategoryImage])
	}
}
