//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/testutil"
)

func TestIndexJobRepository_EnqueueAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIndexJobRepository(pool)

	id, err := repo.Enqueue(ctx, domain.DomainFinanceSummary, 3)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, domain.DomainFinanceSummary, job.Domain)
	assert.Equal(t, int64(3), job.Generation)
	assert.Equal(t, domain.IndexJobStatusPending, job.Status)
	assert.Equal(t, 0, job.Retries)
	assert.Empty(t, job.LastError)
}

func TestIndexJobRepository_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIndexJobRepository(pool)

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrIndexJobNotFound)
}

func TestIndexJobRepository_GetPendingJobsClaims(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIndexJobRepository(pool)

	first, err := repo.Enqueue(ctx, domain.DomainEngineering, 1)
	require.NoError(t, err)
	second, err := repo.Enqueue(ctx, domain.DomainHR, 1)
	require.NoError(t, err)

	jobs, err := repo.GetPendingJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	// Oldest first, and both claimed as processing.
	assert.Equal(t, first, jobs[0].ID)
	assert.Equal(t, second, jobs[1].ID)
	for _, job := range jobs {
		assert.Equal(t, domain.IndexJobStatusProcessing, job.Status)
	}

	// A second poll finds nothing; the jobs are already claimed.
	jobs, err = repo.GetPendingJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestIndexJobRepository_UpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIndexJobRepository(pool)

	id, err := repo.Enqueue(ctx, domain.DomainMarketing, 1)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateJobStatus(ctx, id, domain.IndexJobStatusFailed, "embed: rate limited"))
	job, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexJobStatusFailed, job.Status)
	assert.Equal(t, "embed: rate limited", job.LastError)

	// An empty message clears the recorded error.
	require.NoError(t, repo.UpdateJobStatus(ctx, id, domain.IndexJobStatusCompleted, ""))
	job, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexJobStatusCompleted, job.Status)
	assert.Empty(t, job.LastError)

	err = repo.UpdateJobStatus(ctx, "00000000-0000-0000-0000-000000000000", domain.IndexJobStatusFailed, "x")
	assert.ErrorIs(t, err, ErrIndexJobNotFound)
}

func TestIndexJobRepository_IncrementRetries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIndexJobRepository(pool)

	id, err := repo.Enqueue(ctx, domain.DomainGeneral, 2)
	require.NoError(t, err)

	require.NoError(t, repo.IncrementRetries(ctx, id))
	require.NoError(t, repo.IncrementRetries(ctx, id))

	job, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Retries)

	err = repo.IncrementRetries(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrIndexJobNotFound)
}
