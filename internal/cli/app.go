package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chef-innovativo/server/internal/agent/graph"
	"github.com/chef-innovativo/server/internal/agent/graph/conversations"
	"github.com/chef-innovativo/server/internal/agent/graph/nodes"
	"github.com/chef-innovativo/server/internal/agent/graph/observers"
	"github.com/chef-innovativo/server/internal/agent/language"
	"github.com/chef-innovativo/server/internal/agent/model"
	"github.com/chef-innovativo/server/internal/agent/pairing"
	"github.com/chef-innovativo/server/internal/agent/repo"
	"github.com/chef-innovativo/server/internal/agent/search"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

// PairingIndex is the part of the pairing index the CLI drives directly.
type PairingIndex interface {
	EnsureBuilt(ctx context.Context) error
	Rebuild(ctx context.Context) (int, error)
}

// App bundles the collaborators behind the CLI commands.
type App struct {
	Runner        graph.Runner
	Conversations *conversations.Manager
	Index         PairingIndex

	closers []func() error
}

// Close releases the resources opened by Build in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AppFactory builds the App for a command. reg receives the graph metrics.
type AppFactory func(ctx context.Context, cfg AppConfig, reg prometheus.Registerer) (*App, error)

// Build constructs every collaborator once and wires them into the graph.
func Build(ctx context.Context, cfg AppConfig, reg prometheus.Registerer) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	var convRepo model.ConversationRepository = repo.NewMemoryConversationRepository()
	var searcher model.RecipeSearcher
	tavily, err := search.NewTavilyClient(cfg.Search)
	if err != nil {
		return nil, err
	}
	searcher = tavily

	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, fmt.Errorf("failed to initialise Redis client: %w", err)
		}
		app.closers = append(app.closers, rdb.Close)
		convRepo = repo.NewRedisConversationRepository(rdb, cfg.Conversation.TTL)
		if cfg.Search.CacheTTL > 0 {
			searcher = search.NewCachedSearcher(tavily, rdb, cfg.Search.CacheTTL)
		}
		logx.Debug().Msg("Connected to Redis")
	} else {
		logx.Warn().Msg("REDIS_URL not set, transcripts are kept in memory")
	}

	geminiKey := cfg.geminiKey()
	if geminiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for pairing embeddings")
	}
	client, err := nodes.NewGenAIClient(ctx, geminiKey, cfg.GeminiBaseURL)
	if err != nil {
		return nil, err
	}

	chat, err := nodes.NewChatModel(ctx, cfg.LLM, client)
	if err != nil {
		return nil, err
	}

	store, err := pairing.OpenStore(cfg.Pairing.IndexPath)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store.Close)
	embedder, err := pairing.NewGeminiEmbedder(client, cfg.Pairing.EmbeddingModel)
	if err != nil {
		return nil, err
	}
	index := pairing.NewIndex(store, embedder, cfg.Pairing)
	app.Index = index

	n, err := nodes.New(nodes.Deps{
		Detector:  language.NewDetector(cfg.Agent.DefaultLanguage),
		Searcher:  searcher,
		ChatModel: chat,
		Pairings:  pairing.NewFinder(index),
		ModelName: cfg.LLM.Model,
		Agent:     cfg.Agent,
	})
	if err != nil {
		return nil, err
	}

	app.Conversations = conversations.NewManager(convRepo, cfg.Conversation)
	app.Runner, err = graph.NewRunner(ctx, &graph.GraphConfig{
		Nodes:         n,
		Conversations: app.Conversations,
		Metrics:       observers.NewMetrics(reg),
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}
