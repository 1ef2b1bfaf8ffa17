package domain

// Stage is the orchestrator's position in the ask pipeline.
type Stage string

const (
	StageStart         Stage = "start"
	StageRouted        Stage = "routed"
	StageAnswered      Stage = "answered"
	StagePersisted     Stage = "persisted"
	StageVoiceRendered Stage = "voice_rendered"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// AgentState is the mutable record threaded through the orchestrator for a
// single request. It lives for exactly one request; durable state goes
// through Conversation.
type AgentState struct {
	Stage        Stage
	UserQuestion string
	UserEmail    string
	Route        *RouteDecision
	Response     string
	Audio        []byte
	AudioURL     string
}
