package conversations

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chef-innovativo/server/internal/agent/model"
	"github.com/chef-innovativo/server/internal/agent/repo"
)

func TestManagerRecordsAndTrims(t *testing.T) {
	ctx := context.Background()
	m := NewManager(repo.NewMemoryConversationRepository(), model.ConversationConfig{MaxTurns: 2})

	require.NoError(t, m.RecordTurn(ctx, "s", []*schema.Message{
		schema.UserMessage("soup"),
		schema.SystemMessage("internal"),
		nil,
		schema.AssistantMessage("  ", nil),
		schema.AssistantMessage("What kind of soup?", nil),
	}))
	require.NoError(t, m.RecordTurn(ctx, "s", []*schema.Message{schema.UserMessage("tomato soup")}))
	require.NoError(t, m.RecordTurn(ctx, "s", nil))

	n, err := m.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	msgs, err := m.LoadTranscript(ctx, "s")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "What kind of soup?", msgs[0].Content)
	assert.Equal(t, "tomato soup", msgs[1].Content)

	require.NoError(t, m.Clear(ctx, "s"))
	msgs, err = m.LoadTranscript(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestTrimTail(t *testing.T) {
	msgs := []*schema.Message{schema.UserMessage("a"), schema.UserMessage("b"), schema.UserMessage("c")}
	assert.Len(t, trimTail(msgs, 0), 3)
	assert.Len(t, trimTail(msgs, 5), 3)
	got := trimTail(msgs, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Content)
}
