package nodes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chef-innovativo/server/internal/agent/model"
	errx "github.com/chef-innovativo/server/internal/core/error"
)

const searchPayload = `{"results":[{"title":"Lemon Pasta","content":"Cook spaghetti, add lemon zest.","url":"https://example.com/lemon"}]}`

func newTestNodes(t *testing.T, chat *scriptedChatModel, searcher *stubSearcher, pairings *stubPairings, retries int) *Nodes {
	t.Helper()
	n, err := New(Deps{
		Detector:  fixedDetector("en"),
		Searcher:  searcher,
		ChatModel: chat,
		Pairings:  pairings,
		ModelName: "gemini-2.5-flash",
		Agent:     model.AgentConfig{MaxRetries: retries, RetryInterval: time.Millisecond},
	})
	require.NoError(t, err)
	return n
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	n := newTestNodes(t, &scriptedChatModel{}, &stubSearcher{}, &stubPairings{}, 0)
	ctx := context.Background()

	s, err := n.Start(ctx, model.NewRecipeState(model.TurnInput{Desire: "pasta"}))
	require.NoError(t, err)
	assert.Equal(t, "en", s.DetectedLanguage)
	assert.False(t, s.Failed())
	require.Len(t, s.History, 1)
	assert.Equal(t, schema.User, s.History[0].Role)

	s, err = n.Start(ctx, model.NewRecipeState(model.TurnInput{Language: "it"}))
	require.NoError(t, err)
	assert.Equal(t, "it", s.DetectedLanguage)
	assert.Equal(t, errx.KindEmptyDesire, s.ErrorKind)
	assert.Empty(t, s.History)

	_, err = n.Start(ctx, nil)
	assert.Error(t, err)
}

func TestRetrieveBase(t *testing.T) {
	searcher := &stubSearcher{raw: searchPayload}
	n := newTestNodes(t, &scriptedChatModel{}, searcher, &stubPairings{}, 0)

	s, err := n.RetrieveBase(context.Background(), &model.RecipeState{UserDesire: "lemon pasta"})
	require.NoError(t, err)
	assert.Equal(t, "lemon pasta recipe cooking instructions", s.BaseRecipeQuery)
	assert.Equal(t, "**Lemon Pasta**\nCook spaghetti, add lemon zest.\nSource: https://example.com/lemon", s.BaseRecipeText)
	assert.False(t, s.Failed())
}

func TestRetrieveBaseNoResults(t *testing.T) {
	for _, raw := range []string{`{"results":[]}`, `[]`, `42`} {
		t.Run(raw, func(t *testing.T) {
			n := newTestNodes(t, &scriptedChatModel{}, &stubSearcher{raw: raw}, &stubPairings{}, 0)
			s, err := n.RetrieveBase(context.Background(), &model.RecipeState{UserDesire: "x"})
			require.NoError(t, err)
			assert.Empty(t, s.BaseRecipeText)
			assert.Equal(t, errx.KindNoResults, s.ErrorKind)
		})
	}
}

func TestRetrieveBaseRetriesThenFails(t *testing.T) {
	searcher := &stubSearcher{errs: []error{errors.New("timeout"), errors.New("timeout"), errors.New("timeout")}}
	n := newTestNodes(t, &scriptedChatModel{}, searcher, &stubPairings{}, 2)

	s, err := n.RetrieveBase(context.Background(), &model.RecipeState{UserDesire: "x"})
	require.NoError(t, err)
	assert.Equal(t, 3, searcher.calls)
	assert.Equal(t, 2, s.RetryCount)
	assert.Equal(t, errx.KindRetrievalFailed, s.ErrorKind)
	assert.Contains(t, s.ErrorMessage, "timeout")
}

func TestRetrieveBaseRecoversOnRetry(t *testing.T) {
	searcher := &stubSearcher{raw: searchPayload, errs: []error{errors.New("flaky")}}
	n := newTestNodes(t, &scriptedChatModel{}, searcher, &stubPairings{}, 2)

	s, err := n.RetrieveBase(context.Background(), &model.RecipeState{UserDesire: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.RetryCount)
	assert.NotEmpty(t, s.BaseRecipeText)
	assert.False(t, s.Failed())
}

func TestExtractIngredients(t *testing.T) {
	chat := &scriptedChatModel{replies: []reply{{content: "chicken, lemon, garlic"}}}
	n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

	s, err := n.ExtractIngredients(context.Background(), &model.RecipeState{
		BaseRecipeText: "Title\nchicken, lemon, garlic herb roast",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chicken", "lemon", "garlic"}, s.ExtractedIngredients)
	assert.Equal(t, "pairings for chicken lemon garlic", s.PairingQuery)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0][0].Content, "Title\nchicken, lemon, garlic herb roast")
}

func TestExtractIngredientsEmptyReply(t *testing.T) {
	chat := &scriptedChatModel{replies: []reply{{content: " , "}}}
	n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

	s, err := n.ExtractIngredients(context.Background(), &model.RecipeState{BaseRecipeText: "x"})
	require.NoError(t, err)
	assert.NotNil(t, s.ExtractedIngredients)
	assert.Empty(t, s.ExtractedIngredients)
	assert.Empty(t, s.PairingQuery)
	assert.False(t, s.Failed())
}

func TestExtractIngredientsModelFailure(t *testing.T) {
	chat := &scriptedChatModel{replies: []reply{{err: errors.New("boom")}}}
	n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

	s, err := n.ExtractIngredients(context.Background(), &model.RecipeState{BaseRecipeText: "x"})
	require.NoError(t, err)
	assert.Nil(t, s.ExtractedIngredients)
	assert.Equal(t, errx.KindGenerationFailed, s.ErrorKind)
}

func TestRetrievePairings(t *testing.T) {
	pairings := &stubPairings{text: "Results from the book of flavours:\nlemon + basil"}
	n := newTestNodes(t, &scriptedChatModel{}, &stubSearcher{}, pairings, 0)

	s, err := n.RetrievePairings(context.Background(), &model.RecipeState{
		ExtractedIngredients: []string{"lemon", "basil", "pasta", "pepper"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pairings for lemon basil pasta"}, pairings.queries)
	assert.Equal(t, pairings.text, s.PairingText)
}

func TestGenerateRecipeLengthThreshold(t *testing.T) {
	tests := []struct {
		length int
		ok     bool
	}{
		{99, false},
		{100, false},
		{101, true},
	}
	for _, tt := range tests {
		chat := &scriptedChatModel{replies: []reply{{content: strings.Repeat("r", tt.length)}}}
		n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

		s, err := n.GenerateRecipe(context.Background(), &model.RecipeState{UserDesire: "x", DetectedLanguage: "en"})
		require.NoError(t, err)
		if tt.ok {
			assert.Len(t, s.FinalRecipe, tt.length)
			assert.False(t, s.Failed())
			require.Len(t, s.History, 1)
			assert.Equal(t, schema.Assistant, s.History[0].Role)
		} else {
			assert.Empty(t, s.FinalRecipe)
			assert.Equal(t, errx.KindTooShort, s.ErrorKind)
			assert.Equal(t, "generated recipe seems incomplete", s.ErrorMessage)
		}
	}
}

func TestGenerateRecipeRateLimited(t *testing.T) {
	chat := &scriptedChatModel{replies: []reply{{err: errors.New("429: rate limit exceeded")}}}
	n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

	s, err := n.GenerateRecipe(context.Background(), &model.RecipeState{UserDesire: "x"})
	require.NoError(t, err)
	assert.Equal(t, errx.KindRateLimited, s.ErrorKind)

	s, err = n.Clarify(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "I've hit a rate limit. Please wait a moment and try again.", s.Clarification)
	assert.True(t, s.AwaitingUserInput)
}

func TestGenerateRecipeAccumulatesCost(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000, TotalTokens: 2_000_000}
	chat := &scriptedChatModel{replies: []reply{{content: strings.Repeat("r", 200), usage: usage}}}
	n := newTestNodes(t, chat, &stubSearcher{}, &stubPairings{}, 0)

	s, err := n.GenerateRecipe(context.Background(), &model.RecipeState{UserDesire: "x"})
	require.NoError(t, err)
	assert.InDelta(t, 2.80, s.TotalCostUSD, 1e-9)
}

func TestClarifyTemplates(t *testing.T) {
	n := newTestNodes(t, &scriptedChatModel{}, &stubSearcher{}, &stubPairings{}, 0)
	ctx := context.Background()

	s := &model.RecipeState{DetectedLanguage: "en"}
	s.Fail(errx.KindGenerationFailed, "Error: rate limit exceeded", nil)
	s.UserDesire = "soup"
	s, _ = n.Clarify(ctx, s)
	assert.Equal(t, "I've hit a rate limit. Please wait a moment and try again.", s.Clarification)

	s, _ = n.Clarify(ctx, &model.RecipeState{DetectedLanguage: "fr", ErrorKind: errx.KindEmptyDesire})
	assert.Equal(t, "Que souhaitez-vous cuisiner ? Veuillez décrire le plat que vous avez en tête.", s.Clarification)

	s, _ = n.Clarify(ctx, &model.RecipeState{DetectedLanguage: "es", UserDesire: "tortilla", ErrorKind: errx.KindNoResults})
	assert.Contains(t, s.Clarification, "'tortilla'")
	require.Len(t, s.History, 1)
	assert.Equal(t, s.Clarification, s.History[0].Content)
}
