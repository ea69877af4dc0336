package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository persists the chat transcript outside the per-turn
// RecipeState.
type ConversationRepository interface {
	// AddMessages appends messages to the transcript of a session, in order.
	AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error

	// LoadHistory retrieves the transcript of a session.
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes the transcript of a session.
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of messages in the transcript.
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents a loaded transcript.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
