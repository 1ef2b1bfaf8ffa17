package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finsolve/deskagent/internal/api"
	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/service"
)

type MemoryHistoryService interface {
	History(ctx context.Context, userEmail string, limit int) ([]domain.Conversation, error)
	Search(ctx context.Context, userEmail, query string, limit int) ([]service.ConversationMatch, error)
}

type MemoryHandler struct {
	svc MemoryHistoryService
}

func NewMemoryHandler(svc MemoryHistoryService) *MemoryHandler {
	return &MemoryHandler{svc: svc}
}

type ConversationResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Response  string `json:"response"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
}

type ConversationMatchResponse struct {
	ConversationResponse
	Similarity float64 `json:"similarity"`
}

type SearchMemoryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func conversationToResponse(c domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        c.ID,
		Question:  c.Question,
		Response:  c.Response,
		Category:  c.Category,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// History returns the user's most recent conversations, newest first.
func (h *MemoryHandler) History(w http.ResponseWriter, r *http.Request) {
	userEmail := chi.URLParam(r, "userEmail")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history, err := h.svc.History(r.Context(), userEmail, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]ConversationResponse, 0, len(history))
	for _, c := range history {
		responses = append(responses, conversationToResponse(c))
	}
	api.Success(w, http.StatusOK, responses)
}

// Search finds the user's past conversations most similar to the query.
// Parameters come from the query string; a JSON body may carry them instead.
func (h *MemoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	userEmail := chi.URLParam(r, "userEmail")

	req := SearchMemoryRequest{Query: r.URL.Query().Get("query")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		req.Limit = parsed
	}

	if req.Query == "" {
		var body SearchMemoryRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Query = body.Query
		if req.Limit <= 0 {
			req.Limit = body.Limit
		}
	}

	matches, err := h.svc.Search(r.Context(), userEmail, req.Query, req.Limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]ConversationMatchResponse, 0, len(matches))
	for _, m := range matches {
		responses = append(responses, ConversationMatchResponse{
			ConversationResponse: conversationToResponse(m.Conversation),
			Similarity:           m.Similarity,
		})
	}
	api.Success(w, http.StatusOK, responses)
}
