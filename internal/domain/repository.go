package domain

import (
	"context"
	"time"
)

// ContentRepository defines persistence for fingerprinted cache entries.
type ContentRepository interface {
	// GetAndTouch returns the entry for the fingerprint, bumping usage_count
	// and last_used_at in the same statement, or ErrNotFound on a miss.
	GetAndTouch(ctx context.Context, category Category, fingerprint string) (*CacheEntry, error)
	// Upsert inserts the entry or, when the fingerprint already exists,
	// refreshes bookkeeping fields only.
	Upsert(ctx context.Context, entry *CacheEntry) error
	// DeleteOlderThan removes entries created before the cutoff and reports
	// how many rows were deleted.
	DeleteOlderThan(ctx context.Context, category Category, cutoff time.Time) (int64, error)
	// Count returns the number of entries in a category.
	Count(ctx context.Context, category Category) (int64, error)
	// ListTopicIDs returns the distinct topic ids with published entries of a
	// content type (e.g. "ARCADE", "DISCOVERY"), sorted ascending.
	ListTopicIDs(ctx context.Context, contentType string) ([]string, error)
}

// JobRepository defines persistence for batch generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	// Claim atomically picks the oldest pending job and moves it to
	// processing. Returns ErrNotFound when nothing is queued.
	Claim(ctx context.Context) (*Job, error)
	// UpdateProgress records that one more item finished.
	UpdateProgress(ctx context.Context, jobID string, progress int) error
	Complete(ctx context.Context, jobID string) error
	Fail(ctx context.Context, jobID string, errorMessage string) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// RequeueStuck resets jobs left in processing back to pending, for
	// startup reconciliation after a crash.
	RequeueStuck(ctx context.Context, olderThan time.Time) (int64, error)
}
