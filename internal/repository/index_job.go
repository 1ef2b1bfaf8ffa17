package repository

import (
	"context"
	"errors"
	"time"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIndexJobNotFound = errors.New("index job not found")

type IndexJobRepository struct {
	db dbtx
}

func NewIndexJobRepository(pool *pgxpool.Pool) *IndexJobRepository {
	return &IndexJobRepository{db: pool}
}

// Enqueue creates a pending index build job for a staged generation.
func (r *IndexJobRepository) Enqueue(ctx context.Context, key domain.DomainKey, generation int64) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO index_jobs (id, domain, generation, status, retries, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, $5)`,
		id, key, generation, domain.IndexJobStatusPending, now,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetPendingJobs retrieves and claims pending jobs, oldest first. Claimed
// jobs move to processing so concurrent workers don't double-build.
func (r *IndexJobRepository) GetPendingJobs(ctx context.Context) ([]*domain.IndexJob, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE index_jobs
		 SET status = $1, updated_at = now()
		 WHERE id IN (
		     SELECT id FROM index_jobs
		     WHERE status = $2
		     ORDER BY created_at ASC
		     LIMIT 10
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, domain, generation, status, retries, last_error, created_at, updated_at`,
		domain.IndexJobStatusProcessing, domain.IndexJobStatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.IndexJob
	for rows.Next() {
		job, err := scanIndexJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *IndexJobRepository) GetByID(ctx context.Context, id string) (*domain.IndexJob, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, domain, generation, status, retries, last_error, created_at, updated_at
		 FROM index_jobs WHERE id = $1`,
		id,
	)
	job, err := scanIndexJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIndexJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// UpdateJobStatus transitions a job and records its last error, if any.
func (r *IndexJobRepository) UpdateJobStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error {
	var lastError *string
	if errMsg != "" {
		lastError = &errMsg
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE index_jobs SET status = $2, last_error = $3, updated_at = now() WHERE id = $1`,
		jobID, status, lastError,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIndexJobNotFound
	}
	return nil
}

// IncrementRetries bumps the retry count for a job.
func (r *IndexJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE index_jobs SET retries = retries + 1, updated_at = now() WHERE id = $1`,
		jobID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIndexJobNotFound
	}
	return nil
}

func scanIndexJob(row pgx.Row) (*domain.IndexJob, error) {
	var job domain.IndexJob
	var lastError pgtype.Text
	if err := row.Scan(&job.ID, &job.Domain, &job.Generation, &job.Status, &job.Retries, &lastError, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	if lastError.Valid {
		job.LastError = lastError.String
	}
	return &job, nil
}
