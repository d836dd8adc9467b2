package repo

import (
	"context"
	"fmt"
	"time"

	"contentgate/internal/domain"
	"contentgate/internal/infra"
	"contentgate/internal/sqlinline"
)

// Table names per cache category. Generated text and generated images live in
// separate tables so retention can prune them on independent schedules; chat
// logs are written by an external collaborator and only swept here.
var categoryTables = map[domain.Category]string{
	domain.CategoryContent: "content_cache",
	domain.CategoryImage:   "image_cache",
	domain.CategoryChatLog: "chat_logs",
}

// ContentRepositoryPG implements domain.ContentRepository over PostgreSQL.
type ContentRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewContentRepository(sql infra.SQLExecutor) *ContentRepositoryPG {
	return &ContentRepositoryPG{sql: sql}
}

func tableFor(category domain.Category) (string, error) {
	table, ok := categoryTables[category]
	if !ok {
		return "", fmt.Errorf("unknown cache category %q", category)
	}
	return table, nil
}

// GetAndTouch looks up an entry by fingerprint; a hit bumps usage_count and
// last_used_at in the same statement.
func (r *ContentRepositoryPG) GetAndTouch(ctx context.Context, category domain.Category, fp string) (*domain.CacheEntry, error) {
	table, err := tableFor(category)
	if err != nil {
		return nil, err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QCacheGetAndTouch(table), fp)
	entry := domain.CacheEntry{Category: category}
	if err := row.Scan(
		&entry.Fingerprint,
		&entry.ContentType,
		&entry.Payload,
		&entry.PayloadType,
		&entry.OriginalPrompt,
		&entry.TopicID,
		&entry.AspectRatio,
		&entry.GradeLevel,
		&entry.EffectID,
		&entry.GradientID,
		&entry.GenerationMS,
		&entry.CreatedAt,
		&entry.LastUsedAt,
		&entry.UsageCount,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert inserts the entry; an existing fingerprint only gets its bookkeeping
// refreshed (the payload is assumed identical for identical fingerprints).
func (r *ContentRepositoryPG) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	table, err := tableFor(entry.Category)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QCacheUpsert(table),
		entry.Fingerprint,
		entry.ContentType,
		entry.Payload,
		entry.PayloadType,
		entry.OriginalPrompt,
		entry.TopicID,
		entry.AspectRatio,
		entry.GradeLevel,
		entry.EffectID,
		entry.GradientID,
		entry.GenerationMS,
	)
	return err
}

// DeleteOlderThan prunes entries created before the cutoff.
func (r *ContentRepositoryPG) DeleteOlderThan(ctx context.Context, category domain.Category, cutoff time.Time) (int64, error) {
	table, err := tableFor(category)
	if err != nil {
		return 0, err
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QCacheDeleteOlderThan(table), cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Count reports the number of cached entries in a category.
func (r *ContentRepositoryPG) Count(ctx context.Context, category domain.Category) (int64, error) {
	table, err := tableFor(category)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.sql.QueryRow(ctx, sqlinline.QCacheCount(table)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListTopicIDs lists the distinct topics with cached entries of a content type.
func (r *ContentRepositoryPG) ListTopicIDs(ctx context.Context, contentType string) ([]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QCacheListTopicIDs, contentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ domain.ContentRepository = (*ContentRepositoryPG)(nil)
