package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository is the durable chunk store plus both per-domain indices.
// The embedding column backs the vector index; the generated tsvector column
// backs the keyword index. A domain's indices are "built" when an active
// generation of embedded chunks exists for it.
type ChunkRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool, db: pool}
}

// NextGeneration allocates the generation number for a staged rebuild.
func (r *ChunkRepository) NextGeneration(ctx context.Context, key domain.DomainKey) (int64, error) {
	var max int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(generation), 0) FROM chunks WHERE domain = $1`,
		key,
	).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// StageChunks inserts a new inactive generation of chunks for a domain.
// The rows stay invisible to retrieval until ActivateGeneration flips them.
func (r *ChunkRepository) StageChunks(ctx context.Context, key domain.DomainKey, generation int64, chunks []domain.Chunk) error {
	for _, c := range chunks {
		metadata := c.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO chunks (id, domain, chunk_index, content, metadata, generation, active, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
			c.ID, key, c.ChunkIndex, c.Content, metadata, generation, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to stage chunk %d for %s: %w", c.ChunkIndex, key, err)
		}
	}
	return nil
}

// ListGeneration returns the chunks of one staged generation in chunk order.
func (r *ChunkRepository) ListGeneration(ctx context.Context, key domain.DomainKey, generation int64) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, domain, chunk_index, content, metadata, created_at
		 FROM chunks
		 WHERE domain = $1 AND generation = $2
		 ORDER BY chunk_index ASC`,
		key, generation,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.Domain, &c.ChunkIndex, &c.Content, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Generation = generation
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SetEmbedding stores the embedding for a single chunk.
func (r *ChunkRepository) SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE chunks SET embedding = $2 WHERE id = $1`,
		chunkID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chunk %s not found", chunkID)
	}
	return nil
}

// ActivateGeneration atomically repoints a domain to a freshly built
// generation: older generations are removed and the new one becomes visible
// in a single transaction, so readers never observe a partial index.
func (r *ChunkRepository) ActivateGeneration(ctx context.Context, key domain.DomainKey, generation int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM chunks WHERE domain = $1 AND generation <> $2`,
		key, generation,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE chunks SET active = TRUE WHERE domain = $1 AND generation = $2`,
		key, generation,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CountIndexed reports how many active, embedded chunks a domain has.
// Zero means the domain's indices are not initialized.
func (r *ChunkRepository) CountIndexed(ctx context.Context, key domain.DomainKey) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE domain = $1 AND active AND embedding IS NOT NULL`,
		key,
	).Scan(&count)
	return count, err
}

// SearchSemantic queries the vector index: cosine distance over active
// embedded chunks, best matches first.
func (r *ChunkRepository) SearchSemantic(ctx context.Context, key domain.DomainKey, embedding []float32, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 2
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, domain, chunk_index, content, metadata, created_at,
		        1.0 / (1.0 + (embedding <=> $2)) AS score
		 FROM chunks
		 WHERE domain = $1 AND active AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		key, vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScoredChunks(rows)
}

// SearchLexical queries the keyword index: term-frequency ranking over the
// active chunk corpus, best matches first.
func (r *ChunkRepository) SearchLexical(ctx context.Context, key domain.DomainKey, query string, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		limit = 2
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, domain, chunk_index, content, metadata, created_at,
		        ts_rank_cd(tsv, q)::float8 AS score
		 FROM chunks, websearch_to_tsquery('english', $2) q
		 WHERE domain = $1 AND active AND tsv @@ q
		 ORDER BY score DESC, chunk_index ASC
		 LIMIT $3`,
		key, query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScoredChunks(rows)
}

type chunkRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanScoredChunks(rows chunkRows) ([]domain.ScoredChunk, error) {
	results := make([]domain.ScoredChunk, 0)
	for rows.Next() {
		var sc domain.ScoredChunk
		if err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.Domain,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.Content,
			&sc.Chunk.Metadata,
			&sc.Chunk.CreatedAt,
			&sc.Score,
		); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}
