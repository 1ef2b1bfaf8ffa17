package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/finsolve/deskagent/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIndexJobRepository is a mock implementation of IndexJobRepository
type MockIndexJobRepository struct {
	mock.Mock
}

func (m *MockIndexJobRepository) GetPendingJobs(ctx context.Context) ([]*domain.IndexJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IndexJob), args.Error(1)
}

func (m *MockIndexJobRepository) UpdateJobStatus(ctx context.Context, jobID string, status domain.IndexJobStatus, errMsg string) error {
	args := m.Called(ctx, jobID, status, errMsg)
	return args.Error(0)
}

func (m *MockIndexJobRepository) IncrementRetries(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

// MockIndexBuilder is a mock implementation of IndexBuilder
type MockIndexBuilder struct {
	mock.Mock
}

func (m *MockIndexBuilder) BuildGeneration(ctx context.Context, key domain.DomainKey, generation int64) error {
	args := m.Called(ctx, key, generation)
	return args.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestIndexWorker_ProcessJobs_NoPendingJobs tests when there are no pending jobs
func TestIndexWorker_ProcessJobs_NoPendingJobs(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	mockRepo.On("GetPendingJobs", mock.Anything).Return([]*domain.IndexJob{}, nil)

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockBuilder.AssertNotCalled(t, "BuildGeneration", mock.Anything, mock.Anything, mock.Anything)
}

// TestIndexWorker_ProcessJobs_Success tests successful job processing
func TestIndexWorker_ProcessJobs_Success(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	job := &domain.IndexJob{
		ID:         "job-1",
		Domain:     domain.DomainEngineering,
		Generation: 4,
		Status:     domain.IndexJobStatusPending,
		Retries:    0,
	}

	mockRepo.On("GetPendingJobs", mock.Anything).Return([]*domain.IndexJob{job}, nil)
	mockBuilder.On("BuildGeneration", mock.Anything, domain.DomainEngineering, int64(4)).Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IndexJobStatusCompleted, "").Return(nil)

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockBuilder.AssertExpectations(t)
}

// TestIndexWorker_ProcessJobs_FailureWithRetry tests job failure with retry
func TestIndexWorker_ProcessJobs_FailureWithRetry(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	job := &domain.IndexJob{
		ID:         "job-1",
		Domain:     domain.DomainHR,
		Generation: 2,
		Status:     domain.IndexJobStatusPending,
		Retries:    0,
	}

	mockRepo.On("GetPendingJobs", mock.Anything).Return([]*domain.IndexJob{job}, nil)
	mockBuilder.On("BuildGeneration", mock.Anything, domain.DomainHR, int64(2)).Return(errors.New("embedding failed"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IndexJobStatusPending, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockBuilder.AssertExpectations(t)
}

// TestIndexWorker_ProcessJobs_MaxRetriesExceeded tests job failure after max retries
func TestIndexWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	job := &domain.IndexJob{
		ID:         "job-1",
		Domain:     domain.DomainHR,
		Generation: 2,
		Status:     domain.IndexJobStatusPending,
		Retries:    2, // Already retried twice
	}

	mockRepo.On("GetPendingJobs", mock.Anything).Return([]*domain.IndexJob{job}, nil)
	mockBuilder.On("BuildGeneration", mock.Anything, domain.DomainHR, int64(2)).Return(errors.New("embedding failed"))
	mockRepo.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IndexJobStatusFailed, mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockBuilder.AssertExpectations(t)
}

// TestIndexWorker_ProcessJobs_MultipleJobs tests processing multiple jobs
func TestIndexWorker_ProcessJobs_MultipleJobs(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	jobs := []*domain.IndexJob{
		{ID: "job-1", Domain: domain.DomainFinanceSummary, Generation: 1, Status: domain.IndexJobStatusPending},
		{ID: "job-2", Domain: domain.DomainFinanceQuarterly, Generation: 1, Status: domain.IndexJobStatusPending},
	}

	mockRepo.On("GetPendingJobs", mock.Anything).Return(jobs, nil)

	mockBuilder.On("BuildGeneration", mock.Anything, domain.DomainFinanceSummary, int64(1)).Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-1", domain.IndexJobStatusCompleted, "").Return(nil)

	mockBuilder.On("BuildGeneration", mock.Anything, domain.DomainFinanceQuarterly, int64(1)).Return(nil)
	mockRepo.On("UpdateJobStatus", mock.Anything, "job-2", domain.IndexJobStatusCompleted, "").Return(nil)

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockBuilder.AssertExpectations(t)
}

// TestIndexWorker_ProcessJobs_RepositoryError tests repository error handling
func TestIndexWorker_ProcessJobs_RepositoryError(t *testing.T) {
	mockRepo := new(MockIndexJobRepository)
	mockBuilder := new(MockIndexBuilder)

	mockRepo.On("GetPendingJobs", mock.Anything).Return(nil, errors.New("database error"))

	worker := NewIndexWorker(mockRepo, mockBuilder)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch pending jobs")
	mockRepo.AssertExpectations(t)
}
