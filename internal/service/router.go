package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/finsolve/deskagent/internal/domain"
)

// ChatClient is the slice of the OpenAI client the services need for text
// generation.
type ChatClient interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
	CompleteJSON(ctx context.Context, model, system, user string) (string, error)
}

// RouterService classifies user questions into departments using an LLM.
type RouterService struct {
	llm   ChatClient
	model string
}

func NewRouterService(llm ChatClient, model string) *RouterService {
	return &RouterService{llm: llm, model: model}
}

type routerReply struct {
	Post  string `json:"post"`
	Voice string `json:"voice"`
}

// Classify returns the department responsible for the question and whether
// the user asked for a spoken answer. Unrecognized department labels fall
// back to HR.
func (s *RouterService) Classify(ctx context.Context, question string) (domain.RouteDecision, error) {
	if strings.TrimSpace(question) == "" {
		return domain.RouteDecision{}, domain.ErrEmptyQuestion
	}

	raw, err := s.llm.CompleteJSON(ctx, s.model, routerPrompt, question)
	if err != nil {
		return domain.RouteDecision{}, err
	}

	var reply routerReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return domain.RouteDecision{}, domain.NewUpstreamError("openai", err)
	}

	dept, ok := domain.ParseDepartment(reply.Post)
	if !ok {
		log.Printf("router: unrecognized department %q, falling back to %s", reply.Post, domain.FallbackDepartment)
		dept = domain.FallbackDepartment
	}

	return domain.RouteDecision{
		Department: dept,
		Voice:      strings.EqualFold(strings.TrimSpace(reply.Voice), "yes"),
	}, nil
}
