package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsolve/deskagent/internal/domain"
)

func indexerChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", Domain: domain.DomainHR, ChunkIndex: 0, Content: "first"},
		{ID: "c2", Domain: domain.DomainHR, ChunkIndex: 1, Content: "second"},
	}
}

func TestIndexerServiceStage(t *testing.T) {
	repo := new(MockChunkStoreRepository)
	ldr := new(MockChunkLoader)
	chunks := indexerChunks()

	ldr.On("Load", domain.DomainHR).Return(chunks, nil).Once()
	repo.On("NextGeneration", mock.Anything, domain.DomainHR).Return(int64(3), nil).Once()
	repo.On("StageChunks", mock.Anything, domain.DomainHR, int64(3), chunks).Return(nil).Once()

	svc := NewIndexerService(repo, new(MockIndexJobQueue), ldr, new(MockEmbeddingClient))
	generation, count, err := svc.Stage(context.Background(), domain.DomainHR)

	require.NoError(t, err)
	assert.Equal(t, int64(3), generation)
	assert.Equal(t, 2, count)
	repo.AssertExpectations(t)
	ldr.AssertExpectations(t)
}

func TestIndexerServiceStageLoaderFailure(t *testing.T) {
	ldr := new(MockChunkLoader)
	ldr.On("Load", domain.DomainHR).Return(nil, domain.ErrSourceFileNotFound).Once()

	svc := NewIndexerService(new(MockChunkStoreRepository), new(MockIndexJobQueue), ldr, new(MockEmbeddingClient))
	_, _, err := svc.Stage(context.Background(), domain.DomainHR)

	assert.ErrorIs(t, err, domain.ErrSourceFileNotFound)
}

func TestIndexerServiceStageAndEnqueue(t *testing.T) {
	repo := new(MockChunkStoreRepository)
	ldr := new(MockChunkLoader)
	queue := new(MockIndexJobQueue)

	ldr.On("Load", domain.DomainMarketing).Return(indexerChunks(), nil).Once()
	repo.On("NextGeneration", mock.Anything, domain.DomainMarketing).Return(int64(1), nil).Once()
	repo.On("StageChunks", mock.Anything, domain.DomainMarketing, int64(1), mock.Anything).Return(nil).Once()
	queue.On("Enqueue", mock.Anything, domain.DomainMarketing, int64(1)).Return("job-id", nil).Once()

	svc := NewIndexerService(repo, queue, ldr, new(MockEmbeddingClient))
	generation, err := svc.StageAndEnqueue(context.Background(), domain.DomainMarketing)

	require.NoError(t, err)
	assert.Equal(t, int64(1), generation)
	queue.AssertExpectations(t)
}

func TestIndexerServiceBuildGeneration(t *testing.T) {
	repo := new(MockChunkStoreRepository)
	embedding := new(MockEmbeddingClient)
	chunks := indexerChunks()

	repo.On("ListGeneration", mock.Anything, domain.DomainHR, int64(2)).Return(chunks, nil).Once()
	embedding.On("GenerateEmbedding", mock.Anything, "first").Return([]float32{0.1}, nil).Once()
	embedding.On("GenerateEmbedding", mock.Anything, "second").Return([]float32{0.2}, nil).Once()
	repo.On("SetEmbedding", mock.Anything, "c1", []float32{0.1}).Return(nil).Once()
	repo.On("SetEmbedding", mock.Anything, "c2", []float32{0.2}).Return(nil).Once()
	repo.On("ActivateGeneration", mock.Anything, domain.DomainHR, int64(2)).Return(nil).Once()

	svc := NewIndexerService(repo, new(MockIndexJobQueue), new(MockChunkLoader), embedding)
	err := svc.BuildGeneration(context.Background(), domain.DomainHR, 2)

	require.NoError(t, err)
	repo.AssertExpectations(t)
	embedding.AssertExpectations(t)
}

func TestIndexerServiceBuildGenerationEmpty(t *testing.T) {
	repo := new(MockChunkStoreRepository)
	repo.On("ListGeneration", mock.Anything, domain.DomainHR, int64(9)).Return([]domain.Chunk{}, nil).Once()

	svc := NewIndexerService(repo, new(MockIndexJobQueue), new(MockChunkLoader), new(MockEmbeddingClient))
	err := svc.BuildGeneration(context.Background(), domain.DomainHR, 9)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestIndexerServiceBuildGenerationEmbeddingFailureStopsBeforeActivation(t *testing.T) {
	repo := new(MockChunkStoreRepository)
	embedding := new(MockEmbeddingClient)

	repo.On("ListGeneration", mock.Anything, domain.DomainHR, int64(2)).Return(indexerChunks(), nil).Once()
	embedding.On("GenerateEmbedding", mock.Anything, "first").
		Return(nil, domain.NewUpstreamError("openai", assert.AnError)).Once()

	svc := NewIndexerService(repo, new(MockIndexJobQueue), new(MockChunkLoader), embedding)
	err := svc.BuildGeneration(context.Background(), domain.DomainHR, 2)

	require.Error(t, err)
	repo.AssertNotCalled(t, "ActivateGeneration", mock.Anything, mock.Anything, mock.Anything)
}
