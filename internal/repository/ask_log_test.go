//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/service"
	"github.com/finsolve/deskagent/internal/testutil"
)

func TestAskLogRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewAskLogRepository(pool)

	id, err := repo.Create(ctx, service.AskLogEntry{
		UserEmail:   "peter.pandey@finsolve.com",
		Question:    "What is our leave policy?",
		Department:  domain.DepartmentHR,
		Voice:       true,
		ResultCount: 4,
		DurationMs:  812,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var (
		email      string
		department string
		voice      bool
		count      int
	)
	err = pool.QueryRow(ctx,
		`SELECT user_email, department, voice, result_count FROM ask_logs WHERE id = $1`, id,
	).Scan(&email, &department, &voice, &count)
	require.NoError(t, err)
	assert.Equal(t, "peter.pandey@finsolve.com", email)
	assert.Equal(t, string(domain.DepartmentHR), department)
	assert.True(t, voice)
	assert.Equal(t, 4, count)
}
