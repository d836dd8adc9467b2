// Package jobs runs batch image-generation jobs. Jobs are queued in the
// database and claimed by a single polling worker; items inside a job run
// strictly in order.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentgate/internal/domain"
	"contentgate/internal/generate"
)

const (
	// DefaultPollInterval is how often the worker checks for pending jobs.
	DefaultPollInterval = 2 * time.Second
	// DefaultStuckAfter is how long a job may sit in processing before
	// startup reconciliation requeues it.
	DefaultStuckAfter = 15 * time.Minute

	// MaxItemsPerJob bounds a single batch submission.
	MaxItemsPerJob = 20
)

// ContentGenerator is the slice of the orchestrator the job runner needs.
type ContentGenerator interface {
	GetOrGenerate(ctx context.Context, req generate.Request) (*generate.Result, error)
}

type Manager struct {
	jobs         domain.JobRepository
	generator    ContentGenerator
	logger       zerolog.Logger
	pollInterval time.Duration
	stuckAfter   time.Duration
}

func NewManager(jobs domain.JobRepository, generator ContentGenerator, logger zerolog.Logger, pollInterval time.Duration) *Manager {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Manager{
		jobs:         jobs,
		generator:    generator,
		logger:       logger,
		pollInterval: pollInterval,
		stuckAfter:   DefaultStuckAfter,
	}
}

// Submit queues a batch job and returns it in pending state. The worker picks
// it up on its next poll.
func (m *Manager) Submit(ctx context.Context, subjectID string, items []domain.GenerationItem) (*domain.Job, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: job has no items", domain.ErrInvalidPrompt)
	}
	if len(items) > MaxItemsPerJob {
		return nil, fmt.Errorf("%w: job exceeds %d items", domain.ErrInvalidPrompt, MaxItemsPerJob)
	}
	for i, item := range items {
		if item.Prompt == "" {
			return nil, fmt.Errorf("%w: item %d has an empty prompt", domain.ErrInvalidPrompt, i)
		}
	}

	job := &domain.Job{
		ID:         uuid.NewString(),
		SubjectID:  subjectID,
		Items:      items,
		Status:     domain.JobStatusPending,
		TotalItems: len(items),
	}
	if err := m.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("queue job: %w", err)
	}
	m.logger.Info().
		Str("job_id", job.ID).
		Str("subject_id", subjectID).
		Int("items", len(items)).
		Msg("jobs: queued")
	return job, nil
}

// Status returns the current state of a job.
func (m *Manager) Status(ctx context.Context, jobID string) (*domain.Job, error) {
	return m.jobs.GetByID(ctx, jobID)
}

// ReconcileStuck requeues jobs left in processing by a crashed worker. Call
// once at worker startup, before Run.
func (m *Manager) ReconcileStuck(ctx context.Context) (int64, error) {
	n, err := m.jobs.RequeueStuck(ctx, time.Now().Add(-m.stuckAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.Warn().Int64("requeued", n).Msg("jobs: requeued stuck jobs")
	}
	return n, nil
}

// Run is the worker loop: claim the oldest pending job, process it to a
// terminal state, repeat. It returns when the context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info().Dur("poll_interval", m.pollInterval).Msg("jobs: worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := m.jobs.Claim(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				m.sleep(ctx)
				continue
			}
			m.logger.Error().Err(err).Msg("jobs: claim failed")
			m.sleep(ctx)
			continue
		}

		m.process(ctx, job)
	}
}

func (m *Manager) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

// process runs every item of a claimed job in order. The first item error
// fails the whole job; later items are not attempted.
func (m *Manager) process(ctx context.Context, job *domain.Job) {
	m.logger.Info().
		Str("job_id", job.ID).
		Int("items", job.TotalItems).
		Msg("jobs: picked job")

	for i, item := range job.Items {
		result, err := m.generator.GetOrGenerate(ctx, generate.Request{
			Prompt:      item.Prompt,
			AspectRatio: item.AspectRatio,
			GradeLevel:  item.GradeLevel,
			TopicID:     job.SubjectID,
			RequestID:   job.ID,
		})
		if err != nil {
			msg := fmt.Sprintf("item %d of %d (%q): %v", i+1, job.TotalItems, item.Prompt, err)
			m.logger.Error().Err(err).
				Str("job_id", job.ID).
				Int("item", i+1).
				Msg("jobs: item failed, failing job")
			if failErr := m.jobs.Fail(ctx, job.ID, msg); failErr != nil {
				m.logger.Error().Err(failErr).Str("job_id", job.ID).Msg("jobs: persist failure state failed")
			}
			return
		}

		if err := m.jobs.UpdateProgress(ctx, job.ID, i+1); err != nil {
			m.logger.Error().Err(err).
				Str("job_id", job.ID).
				Int("progress", i+1).
				Msg("jobs: persist progress failed")
		}
		m.logger.Debug().
			Str("job_id", job.ID).
			Int("item", i+1).
			Bool("fallback", result.UsedFallback).
			Msg("jobs: item done")
	}

	if err := m.jobs.Complete(ctx, job.ID); err != nil {
		m.logger.Error().Err(err).Str("job_id", job.ID).Msg("jobs: persist completion failed")
		return
	}
	m.logger.Info().Str("job_id", job.ID).Msg("jobs: completed")
}
