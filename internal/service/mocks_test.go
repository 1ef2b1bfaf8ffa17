package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finsolve/deskagent/internal/domain"
)

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	args := m.Called(ctx, model, system, user)
	return args.String(0), args.Error(1)
}

func (m *MockChatClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	args := m.Called(ctx, model, system, user)
	return args.String(0), args.Error(1)
}

type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockChunkSearchRepository struct {
	mock.Mock
}

func (m *MockChunkSearchRepository) CountIndexed(ctx context.Context, key domain.DomainKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkSearchRepository) SearchSemantic(ctx context.Context, key domain.DomainKey, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, key, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

func (m *MockChunkSearchRepository) SearchLexical(ctx context.Context, key domain.DomainKey, query string, limit int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, key, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

type MockReranker struct {
	mock.Mock
}

func (m *MockReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	args := m.Called(ctx, query, documents, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RerankResult), args.Error(1)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, question string) (domain.RouteDecision, error) {
	args := m.Called(ctx, question)
	return args.Get(0).(domain.RouteDecision), args.Error(1)
}

type MockDocumentRetriever struct {
	mock.Mock
}

func (m *MockDocumentRetriever) Retrieve(ctx context.Context, dept domain.Department, question string) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, dept, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}

type MockMemory struct {
	mock.Mock
}

func (m *MockMemory) Store(ctx context.Context, userEmail, question, response, category string) (*domain.Conversation, error) {
	args := m.Called(ctx, userEmail, question, response, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

type MockSpeechSynthesizer struct {
	mock.Mock
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAudioArchive struct {
	mock.Mock
}

func (m *MockAudioArchive) Store(ctx context.Context, key string, audio []byte) (string, error) {
	args := m.Called(ctx, key, audio)
	return args.String(0), args.Error(1)
}

type MockAskLogRepository struct {
	mock.Mock
}

func (m *MockAskLogRepository) Create(ctx context.Context, entry AskLogEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation, embedding []float32) error {
	args := m.Called(ctx, conv, embedding)
	return args.Error(0)
}

func (m *MockConversationRepository) History(ctx context.Context, userEmail string, limit int) ([]domain.Conversation, error) {
	args := m.Called(ctx, userEmail, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) SearchByEmbedding(ctx context.Context, userEmail string, embedding []float32, limit int) ([]ConversationMatch, error) {
	args := m.Called(ctx, userEmail, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ConversationMatch), args.Error(1)
}

type MockChunkLoader struct {
	mock.Mock
}

func (m *MockChunkLoader) Load(key domain.DomainKey) ([]domain.Chunk, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

type MockChunkStoreRepository struct {
	mock.Mock
}

func (m *MockChunkStoreRepository) NextGeneration(ctx context.Context, key domain.DomainKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChunkStoreRepository) StageChunks(ctx context.Context, key domain.DomainKey, generation int64, chunks []domain.Chunk) error {
	args := m.Called(ctx, key, generation, chunks)
	return args.Error(0)
}

func (m *MockChunkStoreRepository) ListGeneration(ctx context.Context, key domain.DomainKey, generation int64) ([]domain.Chunk, error) {
	args := m.Called(ctx, key, generation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

func (m *MockChunkStoreRepository) SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	args := m.Called(ctx, chunkID, embedding)
	return args.Error(0)
}

func (m *MockChunkStoreRepository) ActivateGeneration(ctx context.Context, key domain.DomainKey, generation int64) error {
	args := m.Called(ctx, key, generation)
	return args.Error(0)
}

func (m *MockChunkStoreRepository) CountIndexed(ctx context.Context, key domain.DomainKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

type MockIndexJobQueue struct {
	mock.Mock
}

func (m *MockIndexJobQueue) Enqueue(ctx context.Context, key domain.DomainKey, generation int64) (string, error) {
	args := m.Called(ctx, key, generation)
	return args.String(0), args.Error(1)
}
