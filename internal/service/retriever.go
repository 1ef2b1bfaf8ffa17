package service

import (
	"context"
	"sort"

	"github.com/finsolve/deskagent/internal/domain"
)

// rrfK dampens the influence of rank position in reciprocal rank fusion.
const rrfK = 60

// EmbeddingClient produces embedding vectors for text.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearchRepository is the read side of the chunk store.
type ChunkSearchRepository interface {
	CountIndexed(ctx context.Context, key domain.DomainKey) (int, error)
	SearchSemantic(ctx context.Context, key domain.DomainKey, embedding []float32, limit int) ([]domain.ScoredChunk, error)
	SearchLexical(ctx context.Context, key domain.DomainKey, query string, limit int) ([]domain.ScoredChunk, error)
}

// RerankResult references a document by its position in the candidate list.
type RerankResult struct {
	Index int
	Score float64
}

// Reranker reorders candidate documents by relevance to the query and keeps
// at most topN of them.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

// PassthroughReranker keeps the fused order. It stands in when no rerank
// provider is configured.
type PassthroughReranker struct{}

func (PassthroughReranker) Rerank(_ context.Context, _ string, documents []string, topN int) ([]RerankResult, error) {
	if topN > len(documents) {
		topN = len(documents)
	}
	results := make([]RerankResult, 0, topN)
	for i := 0; i < topN; i++ {
		results = append(results, RerankResult{Index: i, Score: 0})
	}
	return results, nil
}

// RetrieverConfig carries the retrieval tuning knobs.
type RetrieverConfig struct {
	K             int
	VectorWeight  float64
	KeywordWeight float64
	RerankTopN    int
}

// HybridRetriever queries the vector and keyword indices of a department's
// domains, fuses the results, and reranks them with a cross-encoder.
type HybridRetriever struct {
	repo      ChunkSearchRepository
	embedding EmbeddingClient
	reranker  Reranker
	cfg       RetrieverConfig
}

func NewHybridRetriever(repo ChunkSearchRepository, embedding EmbeddingClient, reranker Reranker, cfg RetrieverConfig) *HybridRetriever {
	if cfg.K <= 0 {
		cfg.K = 2
	}
	if cfg.RerankTopN <= 0 {
		cfg.RerankTopN = cfg.K
	}
	if reranker == nil {
		reranker = PassthroughReranker{}
	}
	return &HybridRetriever{repo: repo, embedding: embedding, reranker: reranker, cfg: cfg}
}

// Retrieve runs hybrid retrieval for every domain behind the department and
// returns the reranked results. It fails if any of the department's indices
// has not been built yet.
func (r *HybridRetriever) Retrieve(ctx context.Context, dept domain.Department, question string) ([]domain.ScoredChunk, error) {
	keys := domain.DomainsFor(dept)

	for _, key := range keys {
		n, err := r.repo.CountIndexed(ctx, key)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, domain.ErrIndexNotInitialized(key)
		}
	}

	embedding, err := r.embedding.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, err
	}

	fused := make([]domain.ScoredChunk, 0, len(keys)*2*r.cfg.K)
	for _, key := range keys {
		vector, err := r.repo.SearchSemantic(ctx, key, embedding, r.cfg.K)
		if err != nil {
			return nil, err
		}
		keyword, err := r.repo.SearchLexical(ctx, key, question, r.cfg.K)
		if err != nil {
			return nil, err
		}
		fused = append(fused, fuseResults(vector, keyword, r.cfg.VectorWeight, r.cfg.KeywordWeight)...)
	}

	sort.SliceStable(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })

	return r.rerank(ctx, question, fused)
}

func (r *HybridRetriever) rerank(ctx context.Context, question string, candidates []domain.ScoredChunk) ([]domain.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Chunk.Content
	}

	ranked, err := r.reranker.Rerank(ctx, question, documents, r.cfg.RerankTopN)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScoredChunk, 0, len(ranked))
	for _, res := range ranked {
		if res.Index < 0 || res.Index >= len(candidates) {
			continue
		}
		chunk := candidates[res.Index]
		if res.Score != 0 {
			chunk.Score = res.Score
		}
		results = append(results, chunk)
	}
	return results, nil
}

type fusionCandidate struct {
	chunk      domain.Chunk
	score      float64
	vectorRank int
}

// fuseResults merges one domain's vector and keyword result lists with
// weighted reciprocal rank fusion. A chunk appearing in both lists collects
// a contribution from each. Ties break on vector rank, then chunk index, so
// the same inputs always fuse to the same order.
func fuseResults(vector, keyword []domain.ScoredChunk, vectorWeight, keywordWeight float64) []domain.ScoredChunk {
	byID := make(map[string]*fusionCandidate, len(vector)+len(keyword))
	order := make([]string, 0, len(vector)+len(keyword))

	add := func(sc domain.ScoredChunk, rank int, weight float64, fromVector bool) {
		cand, ok := byID[sc.Chunk.ID]
		if !ok {
			cand = &fusionCandidate{chunk: sc.Chunk, vectorRank: len(vector) + len(keyword) + 1}
			byID[sc.Chunk.ID] = cand
			order = append(order, sc.Chunk.ID)
		}
		cand.score += weight / float64(rrfK+rank)
		if fromVector && rank < cand.vectorRank {
			cand.vectorRank = rank
		}
	}

	for i, sc := range vector {
		add(sc, i+1, vectorWeight, true)
	}
	for i, sc := range keyword {
		add(sc, i+1, keywordWeight, false)
	}

	candidates := make([]*fusionCandidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, byID[id])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.vectorRank != b.vectorRank {
			return a.vectorRank < b.vectorRank
		}
		return a.chunk.ChunkIndex < b.chunk.ChunkIndex
	})

	fused := make([]domain.ScoredChunk, len(candidates))
	for i, cand := range candidates {
		fused[i] = domain.ScoredChunk{Chunk: cand.chunk, Score: cand.score}
	}
	return fused
}
