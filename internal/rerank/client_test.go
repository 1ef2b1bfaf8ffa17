package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return srv, client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestRerank_Success(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is microservices architecture?", req.Query)
		assert.Len(t, req.Documents, 3)
		assert.Equal(t, 2, req.TopN)

		json.NewEncoder(w).Encode(rerankResponse{Results: []Result{
			{Index: 2, RelevanceScore: 0.97},
			{Index: 0, RelevanceScore: 0.41},
		}})
	})

	results, err := client.Rerank(context.Background(),
		"what is microservices architecture?",
		[]string{"doc a", "doc b", "doc c"}, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Index)
	assert.InDelta(t, 0.97, results[0].RelevanceScore, 1e-9)
}

func TestRerank_EmptyDocuments(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	results, err := client.Rerank(context.Background(), "query", nil, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRerank_APIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorResponse{Message: "invalid api token"})
	})

	_, err := client.Rerank(context.Background(), "query", []string{"doc"}, 1)
	assert.ErrorContains(t, err, "invalid api token")
}

func TestRerank_OutOfRangeIndex(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rerankResponse{Results: []Result{{Index: 5, RelevanceScore: 0.9}}})
	})

	_, err := client.Rerank(context.Background(), "query", []string{"doc"}, 1)
	assert.ErrorContains(t, err, "out-of-range")
}
