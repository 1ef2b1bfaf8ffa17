package service

import (
	"context"
	"fmt"
	"log"

	"github.com/finsolve/deskagent/internal/domain"
)

// ChunkLoader reads a domain's source document and splits it into chunks.
type ChunkLoader interface {
	Load(key domain.DomainKey) ([]domain.Chunk, error)
}

// ChunkStoreRepository is the write side of the chunk store. New index
// generations are staged inactive and swapped in atomically once every chunk
// is embedded.
type ChunkStoreRepository interface {
	NextGeneration(ctx context.Context, key domain.DomainKey) (int64, error)
	StageChunks(ctx context.Context, key domain.DomainKey, generation int64, chunks []domain.Chunk) error
	ListGeneration(ctx context.Context, key domain.DomainKey, generation int64) ([]domain.Chunk, error)
	SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error
	ActivateGeneration(ctx context.Context, key domain.DomainKey, generation int64) error
	CountIndexed(ctx context.Context, key domain.DomainKey) (int, error)
}

// IndexJobQueue enqueues background embedding work for a staged generation.
type IndexJobQueue interface {
	Enqueue(ctx context.Context, key domain.DomainKey, generation int64) (string, error)
}

// IndexerService builds the per-domain indices: it stages chunked source
// documents, embeds them, and activates the finished generation. Queries keep
// hitting the previous generation until the swap.
type IndexerService struct {
	repo      ChunkStoreRepository
	queue     IndexJobQueue
	loader    ChunkLoader
	embedding EmbeddingClient
}

func NewIndexerService(repo ChunkStoreRepository, queue IndexJobQueue, loader ChunkLoader, embedding EmbeddingClient) *IndexerService {
	return &IndexerService{repo: repo, queue: queue, loader: loader, embedding: embedding}
}

// Stage loads and chunks the domain's source document into a new inactive
// generation. It returns the generation number and chunk count.
func (s *IndexerService) Stage(ctx context.Context, key domain.DomainKey) (int64, int, error) {
	chunks, err := s.loader.Load(key)
	if err != nil {
		return 0, 0, err
	}

	generation, err := s.repo.NextGeneration(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	if err := s.repo.StageChunks(ctx, key, generation, chunks); err != nil {
		return 0, 0, err
	}

	log.Printf("indexer: staged generation %d for %s (%d chunks)", generation, key, len(chunks))
	return generation, len(chunks), nil
}

// StageAndEnqueue stages a generation and hands it to the background worker
// for embedding.
func (s *IndexerService) StageAndEnqueue(ctx context.Context, key domain.DomainKey) (int64, error) {
	generation, _, err := s.Stage(ctx, key)
	if err != nil {
		return 0, err
	}
	if _, err := s.queue.Enqueue(ctx, key, generation); err != nil {
		return 0, err
	}
	return generation, nil
}

// BuildGeneration embeds every chunk in a staged generation and activates it.
func (s *IndexerService) BuildGeneration(ctx context.Context, key domain.DomainKey, generation int64) error {
	chunks, err := s.repo.ListGeneration(ctx, key, generation)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return domain.NewDomainError(domain.ErrCodeValidation,
			fmt.Sprintf("generation %d for domain %s has no staged chunks", generation, key))
	}

	for _, chunk := range chunks {
		embedding, err := s.embedding.GenerateEmbedding(ctx, chunk.Content)
		if err != nil {
			return err
		}
		if err := s.repo.SetEmbedding(ctx, chunk.ID, embedding); err != nil {
			return err
		}
	}

	if err := s.repo.ActivateGeneration(ctx, key, generation); err != nil {
		return err
	}
	log.Printf("indexer: activated generation %d for %s (%d chunks)", generation, key, len(chunks))
	return nil
}

// Build stages and embeds a domain's index in one pass, without the worker.
func (s *IndexerService) Build(ctx context.Context, key domain.DomainKey) error {
	generation, _, err := s.Stage(ctx, key)
	if err != nil {
		return err
	}
	return s.BuildGeneration(ctx, key, generation)
}
