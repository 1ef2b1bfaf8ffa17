package domain

import "time"

// Conversation is one stored question/response exchange. Records are immutable
// after creation and partitioned per user; deletion is a retention concern
// outside this service.
type Conversation struct {
	ID        string
	UserEmail string
	Question  string
	Response  string
	Category  string
	CreatedAt time.Time
}

// MemoryText is the blob embedded for semantic recall of this conversation.
func (c *Conversation) MemoryText() string {
	return "Question: " + c.Question + "\nResponse: " + c.Response
}
