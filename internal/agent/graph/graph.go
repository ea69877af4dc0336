package graph

import (
	"context"
	"errors"
	"fmt"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/chef-innovativo/server/internal/agent/graph/conversations"
	"github.com/chef-innovativo/server/internal/agent/graph/nodes"
	"github.com/chef-innovativo/server/internal/agent/graph/observers"
	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

const (
	graphName = "recipe_graph"
	// a run executes at most six nodes including the entry step
	maxRunSteps = 10
)

// Runner executes one user turn through the compiled recipe graph.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (*model.RecipeState, error)
}

// GraphConfig holds everything needed to build the graph. Conversations and
// Metrics are optional.
type GraphConfig struct {
	Nodes         *nodes.Nodes
	Conversations *conversations.Manager
	Metrics       *observers.Metrics
}

// GraphBuilder handles the construction of the recipe graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.RecipeState, *model.RecipeState]
}

type graphRunner struct {
	runnable      compose.Runnable[*model.RecipeState, *model.RecipeState]
	conversations *conversations.Manager
	handler       einocb.Handler
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (*model.RecipeState, error) {
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	out, err := r.runnable.Invoke(ctx, model.NewRecipeState(in), compose.WithCallbacks(r.handler))
	if err != nil {
		return nil, fmt.Errorf("recipe graph: %w", err)
	}
	if out == nil {
		return nil, errors.New("recipe graph: nil result")
	}

	if r.conversations != nil {
		if err := r.conversations.RecordTurn(ctx, out.SessionID, out.History); err != nil {
			logx.Error().Err(err).Str("session_id", out.SessionID).Msg("Error saving turn transcript")
		}
	}
	return out, nil
}

// NewRunner builds and compiles the graph and wraps it in a Runner.
func NewRunner(ctx context.Context, cfg *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &graphRunner{
		runnable:      runnable,
		conversations: cfg.Conversations,
		handler:       observers.NewAllCallbacks(cfg.Metrics),
	}, nil
}

// BuildGraph constructs and returns the compiled recipe graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.RecipeState, *model.RecipeState], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Nodes == nil {
		return nil, fmt.Errorf("graph nodes are nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[*model.RecipeState, *model.RecipeState](),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addTransitions(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds one lambda node per step
func (b *GraphBuilder) addNodes() error {
	n := b.config.Nodes
	steps := []struct {
		step model.Step
		fn   func(context.Context, *model.RecipeState) (*model.RecipeState, error)
	}{
		{model.StepStart, n.Start},
		{model.StepRetrieveBase, n.RetrieveBase},
		{model.StepExtractIngredients, n.ExtractIngredients},
		{model.StepRetrievePairings, n.RetrievePairings},
		{model.StepGenerateRecipe, n.GenerateRecipe},
		{model.StepClarify, n.Clarify},
	}

	for _, s := range steps {
		if err := b.graph.AddLambdaNode(nodeKey(s.step), compose.InvokableLambda(s.fn), compose.WithNodeName(string(s.step))); err != nil {
			return fmt.Errorf("error adding node %s: %w", s.step, err)
		}
	}
	return b.graph.AddEdge(compose.START, nodeKey(model.StepStart))
}

// addTransitions compiles the transition table into edges and branches.
// Steps with a single target get a plain edge; the rest route through Next.
func (b *GraphBuilder) addTransitions() error {
	for step := range Transitions {
		to := targets(step)
		if len(to) == 1 {
			if err := b.graph.AddEdge(nodeKey(step), nodeKey(to[0])); err != nil {
				return fmt.Errorf("error adding edge from %s: %w", step, err)
			}
			continue
		}

		ends := make(map[string]bool, len(to))
		for _, t := range to {
			ends[nodeKey(t)] = true
		}
		branch := compose.NewGraphBranch(newCondition(step), ends)
		if err := b.graph.AddBranch(nodeKey(step), branch); err != nil {
			logx.Error().Err(err).Str("step", string(step)).Msg("Error adding branch")
			return fmt.Errorf("error adding branch from %s: %w", step, err)
		}
	}
	return nil
}

func newCondition(step model.Step) func(context.Context, *model.RecipeState) (string, error) {
	return func(ctx context.Context, s *model.RecipeState) (string, error) {
		next, err := Next(step, s)
		if err != nil {
			return "", err
		}
		logx.Debug().Str("from", string(step)).Str("to", string(next)).Msg("Routing")
		return nodeKey(next), nil
	}
}

// nodeKey maps a step to its graph key. Keys are prefixed because
// compose.START is itself named "start".
func nodeKey(step model.Step) string {
	if step == model.StepDone {
		return compose.END
	}
	return "node_" + string(step)
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.RecipeState, *model.RecipeState], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithMaxRunSteps(maxRunSteps),
		compose.WithGraphName(graphName),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
