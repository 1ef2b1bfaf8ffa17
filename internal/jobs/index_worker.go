package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/finsolve/deskagent/internal/domain"
)

// MaxRetries is the maximum number of attempts for a failed index job.
const MaxRetries = 3

// IndexJobRepository defines the interface for index job persistence
type IndexJobRepository interface {
	// GetPendingJobs retrieves and claims pending index jobs
	GetPendingJobs(ctx context.Context) ([]*domain.IndexJob, error)

	// UpdateJobStatus updates the status of an index job
	UpdateJobStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// IndexBuilder embeds and activates a staged index generation.
type IndexBuilder interface {
	BuildGeneration(ctx context.Context, key domain.DomainKey, generation int64) error
}

// IndexWorker processes index build jobs
type IndexWorker struct {
	repo    IndexJobRepository
	builder IndexBuilder
}

// NewIndexWorker creates a new IndexWorker instance
func NewIndexWorker(repo IndexJobRepository, builder IndexBuilder) *IndexWorker {
	return &IndexWorker{
		repo:    repo,
		builder: builder,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending index jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	log.Printf("Processing job %s: domain %s generation %d", job.ID, job.Domain, job.Generation)

	if err := w.builder.BuildGeneration(ctx, job.Domain, job.Generation); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateJobStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
