//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsolve/deskagent/internal/api/handlers"
	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/repository"
	"github.com/finsolve/deskagent/internal/server"
	"github.com/finsolve/deskagent/internal/service"
	"github.com/finsolve/deskagent/internal/storage"
	"github.com/finsolve/deskagent/internal/testutil"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	HTTPClient   *http.Client

	Chat     *scriptedChat
	Embedder *hashEmbedder
	Docs     *staticLoader
	Indexer  *service.IndexerService
}

// SetupE2EEnv creates a full E2E test environment with containers and server.
// OpenAI and Cohere are replaced with deterministic in-process doubles; the
// database, object store, and HTTP surface are real.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-audio",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	chat := &scriptedChat{}
	embedder := &hashEmbedder{}
	docs := newStaticLoader()

	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	askLogRepo := repository.NewAskLogRepository(pool)
	indexJobRepo := repository.NewIndexJobRepository(pool)

	indexer := service.NewIndexerService(chunkRepo, indexJobRepo, docs, embedder)

	retriever := service.NewHybridRetriever(chunkRepo, embedder, &service.PassthroughReranker{}, service.RetrieverConfig{
		K:             2,
		VectorWeight:  0.7,
		KeywordWeight: 0.3,
		RerankTopN:    4,
	})
	router := service.NewRouterService(chat, "gpt-4o-mini")
	memory := service.NewMemoryService(conversationRepo, embedder)
	orchestrator := service.NewOrchestrator(
		router,
		retriever,
		chat,
		memory,
		&fakeSpeech{},
		s3Client,
		askLogRepo,
		"gpt-4o-mini",
	)

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	serverURL, serverCloser := startServer(t, orchestrator, memory, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Chat:         chat,
		Embedder:     embedder,
		Docs:         docs,
		Indexer:      indexer,
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// SeedIndex loads documents for a domain and builds its index synchronously.
func (e *E2ETestEnv) SeedIndex(key domain.DomainKey, contents ...string) {
	e.T.Helper()
	e.Docs.Set(key, contents...)
	if err := e.Indexer.Build(e.Ctx, key); err != nil {
		e.T.Fatalf("failed to build %s index: %v", key, err)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, orchestrator *service.Orchestrator, memory *service.MemoryService, port int) (string, func()) {
	router := server.NewRouter(server.RouterConfig{
		AskHandler:    handlers.NewAskHandler(orchestrator),
		MemoryHandler: handlers.NewMemoryHandler(memory),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// scriptedChat stands in for the OpenAI chat API. Tests script the routing
// decision and the final answer before making requests.
type scriptedChat struct {
	mu         sync.Mutex
	Department string
	Voice      bool
	Answer     string

	LastSynthesisPrompt string
}

func (c *scriptedChat) Script(department string, voice bool, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Department = department
	c.Voice = voice
	c.Answer = answer
}

func (c *scriptedChat) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	voice := "No"
	if c.Voice {
		voice = "Yes"
	}
	return fmt.Sprintf(`{"post": %q, "voice": %q}`, c.Department, voice), nil
}

func (c *scriptedChat) Complete(ctx context.Context, model, system, user string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastSynthesisPrompt = user
	return c.Answer, nil
}

// hashEmbedder produces deterministic embeddings: each word hashes to a
// dimension, counts are L2-normalized. Identical text embeds identically and
// shared vocabulary raises cosine similarity, which is all the tests need.
type hashEmbedder struct{}

func (e *hashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, 1536)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		embedding[h.Sum32()%1536]++
	}
	var norm float64
	for _, v := range embedding {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range embedding {
			embedding[i] *= scale
		}
	}
	return embedding, nil
}

// staticLoader serves chunks from memory instead of the data directory.
type staticLoader struct {
	mu     sync.Mutex
	chunks map[domain.DomainKey][]domain.Chunk
}

func newStaticLoader() *staticLoader {
	return &staticLoader{chunks: make(map[domain.DomainKey][]domain.Chunk)}
}

func (l *staticLoader) Set(key domain.DomainKey, contents ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			Domain:     key,
			ChunkIndex: i,
			Content:    content,
			Metadata:   map[string]string{"source": "e2e.md"},
		}
	}
	l.chunks[key] = chunks
}

func (l *staticLoader) Load(key domain.DomainKey) ([]domain.Chunk, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	chunks, ok := l.chunks[key]
	if !ok {
		return nil, domain.ErrUnknownDomain
	}
	return chunks, nil
}

// fakeSpeech renders recognizable fake audio so tests can follow the bytes
// through the object store.
type fakeSpeech struct{}

func (s *fakeSpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return []byte("RIFF-FAKE-AUDIO:" + text), nil
}
