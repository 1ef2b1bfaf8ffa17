package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsolve/deskagent/internal/domain"
	"github.com/finsolve/deskagent/internal/telemetry"
)

// Classifier routes a question to a department.
type Classifier interface {
	Classify(ctx context.Context, question string) (domain.RouteDecision, error)
}

// DocumentRetriever fetches the chunks most relevant to a question within a
// department's knowledge base.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, dept domain.Department, question string) ([]domain.ScoredChunk, error)
}

// Memory stores answered exchanges for later recall.
type Memory interface {
	Store(ctx context.Context, userEmail, question, response, category string) (*domain.Conversation, error)
}

// SpeechSynthesizer renders text to audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AudioArchive stores rendered audio and returns a download URL.
type AudioArchive interface {
	Store(ctx context.Context, key string, audio []byte) (string, error)
}

// AskLogEntry captures one routed question for offline analysis.
type AskLogEntry struct {
	UserEmail   string
	Question    string
	Department  domain.Department
	Voice       bool
	ResultCount int
	DurationMs  int
}

// AskLogRepository records processed questions. Best-effort.
type AskLogRepository interface {
	Create(ctx context.Context, entry AskLogEntry) (string, error)
}

// Orchestrator drives a question through routing, retrieval, synthesis,
// persistence, and optional voice rendering. Routing, retrieval, and
// synthesis failures abort the run; persistence and voice failures are
// logged and the run continues.
type Orchestrator struct {
	router      Classifier
	retriever   DocumentRetriever
	llm         ChatClient
	memory      Memory
	speech      SpeechSynthesizer
	archive     AudioArchive
	askLogs     AskLogRepository
	answerModel string
}

func NewOrchestrator(
	router Classifier,
	retriever DocumentRetriever,
	llm ChatClient,
	memory Memory,
	speech SpeechSynthesizer,
	archive AudioArchive,
	askLogs AskLogRepository,
	answerModel string,
) *Orchestrator {
	return &Orchestrator{
		router:      router,
		retriever:   retriever,
		llm:         llm,
		memory:      memory,
		speech:      speech,
		archive:     archive,
		askLogs:     askLogs,
		answerModel: answerModel,
	}
}

// Ask answers a user question. The returned state always reflects how far
// the run got, including on error.
func (o *Orchestrator) Ask(ctx context.Context, question, userEmail string) (*domain.AgentState, error) {
	state := &domain.AgentState{
		Stage:        domain.StageStart,
		UserQuestion: question,
		UserEmail:    userEmail,
	}

	if strings.TrimSpace(question) == "" {
		state.Stage = domain.StageFailed
		return state, domain.ErrEmptyQuestion
	}
	if strings.TrimSpace(userEmail) == "" {
		state.Stage = domain.StageFailed
		return state, domain.ErrEmptyUserEmail
	}

	started := time.Now()

	routeCtx, routeSpan := telemetry.StartSpan(ctx, "ask.route", telemetry.SpanAttributes{UserEmail: userEmail})
	route, err := o.router.Classify(routeCtx, question)
	routeSpan.End()
	if err != nil {
		state.Stage = domain.StageFailed
		return state, err
	}
	state.Route = &route
	state.Stage = domain.StageRouted
	log.Printf("ask: routed question for %s to %s (voice=%t)", userEmail, route.Department, route.Voice)

	retrieveCtx, retrieveSpan := telemetry.StartSpan(ctx, "ask.retrieve", telemetry.SpanAttributes{Department: string(route.Department)})
	chunks, err := o.retriever.Retrieve(retrieveCtx, route.Department, question)
	retrieveSpan.End()
	if err != nil {
		state.Stage = domain.StageFailed
		return state, err
	}

	answerCtx, answerSpan := telemetry.StartSpan(ctx, "ask.synthesize", telemetry.SpanAttributes{Department: string(route.Department)})
	response, err := o.synthesize(answerCtx, route.Department, question, chunks)
	answerSpan.End()
	if err != nil {
		state.Stage = domain.StageFailed
		return state, err
	}
	state.Response = response
	state.Stage = domain.StageAnswered

	if _, err := o.memory.Store(ctx, userEmail, question, response, string(route.Department)); err != nil {
		log.Printf("ask: memory store failed for %s: %v", userEmail, err)
		telemetry.CaptureError(ctx, err)
	}
	state.Stage = domain.StagePersisted

	if route.Voice {
		o.renderVoice(ctx, state)
		state.Stage = domain.StageVoiceRendered
	}

	// Logged last so the duration covers voice rendering too.
	if o.askLogs != nil {
		entry := AskLogEntry{
			UserEmail:   userEmail,
			Question:    question,
			Department:  route.Department,
			Voice:       route.Voice,
			ResultCount: len(chunks),
			DurationMs:  int(time.Since(started).Milliseconds()),
		}
		if _, err := o.askLogs.Create(ctx, entry); err != nil {
			log.Printf("ask: ask log failed for %s: %v", userEmail, err)
		}
	}

	state.Stage = domain.StageDone
	return state, nil
}

func (o *Orchestrator) synthesize(ctx context.Context, dept domain.Department, question string, chunks []domain.ScoredChunk) (string, error) {
	system, ok := answerPrompts[dept]
	if !ok {
		system = answerPrompts[domain.DepartmentGeneral]
	}

	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nDocuments:\n")
	for i, c := range chunks {
		fmt.Fprintf(&sb, "\n[%d] %s\n", i+1, c.Chunk.Content)
	}

	return o.llm.Complete(ctx, o.answerModel, system, sb.String())
}

// renderVoice fills in the audio fields. Failures leave the audio empty so a
// text answer still goes out.
func (o *Orchestrator) renderVoice(ctx context.Context, state *domain.AgentState) {
	state.Audio = []byte{}
	if o.speech == nil {
		log.Printf("ask: voice requested but speech synthesis is not configured")
		return
	}

	audio, err := o.speech.Synthesize(ctx, state.Response)
	if err != nil {
		log.Printf("ask: speech synthesis failed for %s: %v", state.UserEmail, err)
		telemetry.CaptureError(ctx, err)
		return
	}
	state.Audio = audio

	if o.archive == nil {
		return
	}
	key := fmt.Sprintf("audio/%s.mp3", uuid.NewString())
	url, err := o.archive.Store(ctx, key, audio)
	if err != nil {
		log.Printf("ask: audio archive failed for %s: %v", state.UserEmail, err)
		return
	}
	state.AudioURL = url
}
