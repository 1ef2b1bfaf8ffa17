package domain

import "time"

// Chunk is one overlapping window of a source document. Chunks are immutable
// once ingested and owned by their domain's indices.
type Chunk struct {
	ID         string
	Domain     DomainKey
	ChunkIndex int
	Content    string
	Metadata   map[string]string
	Embedding  []float32
	Generation int64
	CreatedAt  time.Time
}

// ScoredChunk pairs a chunk with a retrieval score. Transient, produced
// per-query by index lookups, fusion and reranking.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
