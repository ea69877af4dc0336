package observers

import (
	"context"
	"errors"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentmodel "github.com/chef-innovativo/server/internal/agent/model"
	errx "github.com/chef-innovativo/server/internal/core/error"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ModelErrors.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	assert.NotPanics(t, func() { NewMetrics(nil) })
}

func TestNodeHandlerCountsRecipeStates(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	h := newNodeHandler(m)
	info := &einocb.RunInfo{Name: "retrieve_base", Component: compose.ComponentOfLambda}
	ctx := context.Background()

	s := &agentmodel.RecipeState{}
	ctx = h.OnStart(ctx, info, s)
	s.RetryCount = 2
	h.OnEnd(ctx, info, s)

	failed := &agentmodel.RecipeState{ErrorKind: errx.KindNoResults}
	h.OnEnd(h.OnStart(context.Background(), info, failed), info, failed)

	// unrelated payloads are ignored
	h.OnEnd(context.Background(), info, "not a state")
	h.OnError(context.Background(), info, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeRuns.WithLabelValues("retrieve_base", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeRuns.WithLabelValues("retrieve_base", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeRuns.WithLabelValues("retrieve_base", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Retries))
}

func TestGraphHandlerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	h := newGraphHandler(m)
	info := &einocb.RunInfo{Name: "recipe_graph", Component: compose.ComponentOfGraph}

	h.OnEnd(context.Background(), info, &agentmodel.RecipeState{FinalRecipe: "r", TotalCostUSD: 0.5})
	h.OnEnd(context.Background(), info, &agentmodel.RecipeState{ErrorKind: errx.KindEmptyDesire})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunOutcomes.WithLabelValues("recipe", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunOutcomes.WithLabelValues("clarification", "empty_desire")))
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.CostUSD), 1e-9)
}

func TestModelHandlerCountsTokens(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	h := newModelHandler(m)
	info := &einocb.RunInfo{Name: "generate_recipe_chat_model", Type: "gemini-2.5-flash"}
	ctx := context.Background()

	h.OnEnd(ctx, info, &model.CallbackOutput{TokenUsage: &model.TokenUsage{PromptTokens: 10, CompletionTokens: 4}})
	h.OnError(ctx, info, errors.New("rate limit"))

	assert.Equal(t, 10.0, testutil.ToFloat64(m.ModelTokens.WithLabelValues("prompt")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ModelTokens.WithLabelValues("completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelErrors))
}

func TestTruncate(t *testing.T) {
	long := make([]rune, maxLoggedContent+10)
	for i := range long {
		long[i] = 'é'
	}
	got := truncate(string(long))
	assert.Equal(t, maxLoggedContent+3, len([]rune(got)))
	assert.Equal(t, "short", truncate("  short "))
}
