package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"contentgate/internal/domain"
	"contentgate/internal/infra"
	"contentgate/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository over PostgreSQL. Job items
// are stored as a JSONB array alongside the progress counters so a job row is
// self-contained.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	items, err := json.Marshal(job.Items)
	if err != nil {
		return fmt.Errorf("encode job items: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QJobInsert, job.ID, job.SubjectID, items, job.TotalItems)
	return err
}

// Claim picks the oldest pending job and marks it processing. Returns
// domain.ErrNotFound when nothing is queued.
func (r *JobRepositoryPG) Claim(ctx context.Context) (*domain.Job, error) {
	return r.scanJob(r.sql.QueryRow(ctx, sqlinline.QJobClaim))
}

func (r *JobRepositoryPG) UpdateProgress(ctx context.Context, jobID string, progress int) error {
	_, err := r.sql.Exec(ctx, sqlinline.QJobUpdateProgress, jobID, progress)
	return err
}

func (r *JobRepositoryPG) Complete(ctx context.Context, jobID string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QJobComplete, jobID)
	return err
}

func (r *JobRepositoryPG) Fail(ctx context.Context, jobID string, errorMessage string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QJobFail, jobID, errorMessage)
	return err
}

func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	return r.scanJob(r.sql.QueryRow(ctx, sqlinline.QJobGetByID, jobID))
}

func (r *JobRepositoryPG) RequeueStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QJobRequeueStuck, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *JobRepositoryPG) scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job      domain.Job
		rawItems []byte
		errMsg   *string
	)
	if err := row.Scan(
		&job.ID,
		&job.SubjectID,
		&rawItems,
		&job.Status,
		&job.Progress,
		&job.TotalItems,
		&errMsg,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	if len(rawItems) > 0 {
		if err := json.Unmarshal(rawItems, &job.Items); err != nil {
			return nil, fmt.Errorf("decode job items: %w", err)
		}
	}
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
