package repository

import (
	"context"
	"time"

	"github.com/finsolve/deskagent/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AskLogRepository persists ask logs. Logging is best-effort; callers ignore
// failures.
type AskLogRepository struct {
	db dbtx
}

func NewAskLogRepository(pool *pgxpool.Pool) *AskLogRepository {
	return &AskLogRepository{db: pool}
}

func (r *AskLogRepository) Create(ctx context.Context, entry service.AskLogEntry) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx,
		`INSERT INTO ask_logs (id, user_email, question, department, voice, result_count, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, entry.UserEmail, entry.Question, entry.Department, entry.Voice,
		entry.ResultCount, entry.DurationMs, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}
