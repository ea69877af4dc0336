package repo

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/chef-innovativo/server/internal/agent/model"
)

// MemoryConversationRepository is the in-process store used when Redis is
// not configured. Transcripts are lost on exit.
type MemoryConversationRepository struct {
	mu       sync.RWMutex
	sessions map[string][]*schema.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{sessions: map[string][]*schema.Message{}}
}

func (r *MemoryConversationRepository) AddMessages(_ context.Context, sessionID string, messages ...*schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range messages {
		if m == nil {
			continue
		}
		cp := *m
		r.sessions[sessionID] = append(r.sessions[sessionID], &cp)
	}
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, sessionID string) (*model.ConversationHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.sessions[sessionID]
	msgs := make([]*schema.Message, 0, len(stored))
	for _, m := range stored {
		cp := *m
		msgs = append(msgs, &cp)
	}
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryConversationRepository) GetMessageCount(_ context.Context, sessionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID]), nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
