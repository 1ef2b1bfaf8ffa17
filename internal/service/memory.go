package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/finsolve/deskagent/internal/domain"
)

// ConversationMatch is a stored conversation scored against a search query.
type ConversationMatch struct {
	Conversation domain.Conversation
	Similarity   float64
}

// ConversationRepository persists and queries per-user conversation history.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation, embedding []float32) error
	History(ctx context.Context, userEmail string, limit int) ([]domain.Conversation, error)
	SearchByEmbedding(ctx context.Context, userEmail string, embedding []float32, limit int) ([]ConversationMatch, error)
}

// MemoryService is the long-term conversation memory. Each user gets their
// own partition, and every exchange is embedded so past conversations can be
// searched semantically.
type MemoryService struct {
	repo      ConversationRepository
	embedding EmbeddingClient
}

func NewMemoryService(repo ConversationRepository, embedding EmbeddingClient) *MemoryService {
	return &MemoryService{repo: repo, embedding: embedding}
}

// Store records one question/response exchange for the user. If embedding
// fails the exchange is stored without one; it still shows up in history but
// not in semantic search.
func (s *MemoryService) Store(ctx context.Context, userEmail, question, response, category string) (*domain.Conversation, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, domain.ErrEmptyUserEmail
	}

	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Question:  question,
		Response:  response,
		Category:  category,
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, conv.MemoryText())
	if err != nil {
		log.Printf("memory: embedding failed for %s, storing without one: %v", userEmail, err)
		embedding = nil
	}

	if err := s.repo.Create(ctx, conv, embedding); err != nil {
		return nil, err
	}
	return conv, nil
}

// History returns the user's most recent conversations, newest first.
func (s *MemoryService) History(ctx context.Context, userEmail string, limit int) ([]domain.Conversation, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, domain.ErrEmptyUserEmail
	}
	return s.repo.History(ctx, userEmail, limit)
}

// Search finds the user's past conversations most similar to the query.
func (s *MemoryService) Search(ctx context.Context, userEmail, query string, limit int) ([]ConversationMatch, error) {
	if strings.TrimSpace(userEmail) == "" {
		return nil, domain.ErrEmptyUserEmail
	}
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchByEmbedding(ctx, userEmail, embedding, limit)
}
