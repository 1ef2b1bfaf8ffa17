package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/finsolve/deskagent/internal/api"
	"github.com/finsolve/deskagent/internal/domain"
)

type AskService interface {
	Ask(ctx context.Context, question, userEmail string) (*domain.AgentState, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	UserQuestion string `json:"user_question"`
	UserEmail    string `json:"user_email"`
}

type AskResponse struct {
	Response   string `json:"response"`
	Department string `json:"department"`
	Voice      bool   `json:"voice"`
	Audio      string `json:"audio,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.svc.Ask(r.Context(), req.UserQuestion, req.UserEmail)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := AskResponse{Response: state.Response}
	if state.Route != nil {
		resp.Department = string(state.Route.Department)
		resp.Voice = state.Route.Voice
	}
	if len(state.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(state.Audio)
	}
	resp.AudioURL = state.AudioURL

	api.Success(w, http.StatusOK, resp)
}
