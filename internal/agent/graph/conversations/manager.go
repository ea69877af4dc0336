package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/chef-innovativo/server/internal/agent/model"
)

// Manager keeps the per-session transcript that outlives a single turn.
type Manager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *Manager {
	return &Manager{
		conversationRepo: conversationRepo,
		maxTurns:         config.MaxTurns,
	}
}

// RecordTurn appends the user and assistant messages produced by a run.
// Other roles and blank messages are not persisted.
func (m *Manager) RecordTurn(ctx context.Context, sessionID string, messages []*schema.Message) error {
	keep := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == schema.User || msg.Role == schema.Assistant {
			keep = append(keep, msg)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	return m.conversationRepo.AddMessages(ctx, sessionID, keep...)
}

// LoadTranscript returns the most recent messages of a session, bounded by
// the configured number of turns (0 means unbounded).
func (m *Manager) LoadTranscript(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	history, err := m.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return trimTail(history.Messages, m.maxTurns), nil
}

func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	return m.conversationRepo.ClearHistory(ctx, sessionID)
}

func (m *Manager) Count(ctx context.Context, sessionID string) (int, error) {
	return m.conversationRepo.GetMessageCount(ctx, sessionID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	source := messages
	if maxTurns > 0 && len(messages) > maxTurns {
		source = messages[len(messages)-maxTurns:]
	}
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
