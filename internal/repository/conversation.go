package repository

import (
	"context"
	"strings"
	"time"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ConversationRepository persists the per-user long-term memory partitions.
type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

var partitionReplacer = strings.NewReplacer("@", "_", ".", "_")

// PartitionKey derives the memory partition for a user. Deterministic so the
// same user always lands in the same partition.
func PartitionKey(userEmail string) string {
	return partitionReplacer.Replace(strings.ToLower(strings.TrimSpace(userEmail)))
}

// Create stores a conversation record along with its memory embedding.
func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation, embedding []float32) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
		c.CreatedAt = createdAt
	}

	var vec any
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (id, user_email, partition_key, question, response, category, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.UserEmail, PartitionKey(c.UserEmail), c.Question, c.Response, c.Category, vec, createdAt,
	)
	return err
}

// History returns a user's conversations, most recent first.
func (r *ConversationRepository) History(ctx context.Context, userEmail string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_email, question, response, category, created_at
		 FROM conversations
		 WHERE partition_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		PartitionKey(userEmail), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.Conversation, 0)
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserEmail, &c.Question, &c.Response, &c.Category, &c.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// SearchByEmbedding finds a user's past conversations by cosine similarity of
// the stored question+response embedding, most similar first.
func (r *ConversationRepository) SearchByEmbedding(ctx context.Context, userEmail string, embedding []float32, limit int) ([]service.ConversationMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	vec := pgvector.NewVector(embedding)
	rows, err := r.db.Query(ctx,
		`SELECT id, user_email, question, response, category, created_at,
		        1.0 - (embedding <=> $2) AS similarity
		 FROM conversations
		 WHERE partition_key = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		PartitionKey(userEmail), vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]service.ConversationMatch, 0)
	for rows.Next() {
		var m service.ConversationMatch
		if err := rows.Scan(
			&m.Conversation.ID,
			&m.Conversation.UserEmail,
			&m.Conversation.Question,
			&m.Conversation.Response,
			&m.Conversation.Category,
			&m.Conversation.CreatedAt,
			&m.Similarity,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
