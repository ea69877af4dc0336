package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/chef-innovativo/server/internal/agent/graph/parsers"
	"github.com/chef-innovativo/server/internal/agent/graph/prompts"
	"github.com/chef-innovativo/server/internal/agent/model"
	"github.com/chef-innovativo/server/internal/agent/search"
	errx "github.com/chef-innovativo/server/internal/core/error"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

// MinRecipeLength is the shortest generated text accepted as a recipe.
const MinRecipeLength = 100

// Deps are the collaborators shared by every run. They are built once at
// startup and must be safe for concurrent use.
type Deps struct {
	Detector  model.LanguageDetector
	Searcher  model.RecipeSearcher
	ChatModel einomodel.BaseChatModel
	Pairings  model.PairingFinder
	ModelName string
	Agent     model.AgentConfig
}

// Nodes implements the recipe graph steps. Each step reads and writes the
// run state and reports collaborator failures through state.Fail.
type Nodes struct {
	detector  model.LanguageDetector
	searcher  model.RecipeSearcher
	chat      einomodel.BaseChatModel
	pairings  model.PairingFinder
	modelName string
	retry     retryPolicy
}

func New(d Deps) (*Nodes, error) {
	switch {
	case d.Detector == nil:
		return nil, errors.New("nodes: language detector is required")
	case d.Searcher == nil:
		return nil, errors.New("nodes: recipe searcher is required")
	case d.ChatModel == nil:
		return nil, errors.New("nodes: chat model is required")
	case d.Pairings == nil:
		return nil, errors.New("nodes: pairing finder is required")
	}
	return &Nodes{
		detector:  d.Detector,
		searcher:  d.Searcher,
		chat:      d.ChatModel,
		pairings:  d.Pairings,
		modelName: d.ModelName,
		retry:     newRetryPolicy(d.Agent),
	}, nil
}

var errNilState = errors.New("nodes: nil recipe state")

// Start tags the turn with its language and records the user message.
func (n *Nodes) Start(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepStart)

	if s.DetectedLanguage == "" {
		s.DetectedLanguage = n.detector.Detect(s.UserDesire)
	}

	if !s.HasDesire() {
		s.Fail(errx.KindEmptyDesire, errx.ErrEmptyDesire.Error(), nil)
		logx.Debug().Str("session_id", s.SessionID).Msg("empty desire, asking for input")
		return s, nil
	}
	s.AppendMessage(schema.UserMessage(s.UserDesire))

	logx.Debug().
		Str("session_id", s.SessionID).
		Str("language", s.DetectedLanguage).
		Strs("dietary_preferences", s.DietaryPreferences).
		Msg("turn started")
	return s, nil
}

// RetrieveBase searches the web for a conventional recipe.
func (n *Nodes) RetrieveBase(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepRetrieveBase)
	s.BaseRecipeQuery = search.BuildQuery(s.UserDesire)

	var raw []byte
	err := n.retry.do(ctx, s, model.StepRetrieveBase, func() error {
		var err error
		raw, err = n.searcher.Search(ctx, s.BaseRecipeQuery)
		return err
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.SessionID).Msg("base recipe search failed")
		s.Fail(errx.KindRetrievalFailed, "Error searching for base recipe", err)
		return s, nil
	}

	resp, err := search.Decode(raw)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", s.SessionID).Int("bytes", len(raw)).Msg("search response rejected")
		s.Fail(errx.KindNoResults, errx.ErrNoResults.Error(), nil)
		return s, nil
	}

	text, err := search.FormatBaseRecipe(resp)
	if err != nil {
		s.Fail(errx.KindNoResults, err.Error(), nil)
		return s, nil
	}
	s.BaseRecipeText = text

	logx.Debug().
		Str("session_id", s.SessionID).
		Stringer("shape", resp.Kind).
		Int("records", len(resp.Records)).
		Msg("base recipe retrieved")
	return s, nil
}

// ExtractIngredients reduces the base recipe to its dominant ingredients.
func (n *Nodes) ExtractIngredients(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepExtractIngredients)

	msgs, err := prompts.RenderExtractIngredients(promptContext(ctx, "extract_ingredients_prompt"), s.BaseRecipeText)
	if err != nil {
		return nil, err
	}

	out, err := n.generate(ctx, s, model.StepExtractIngredients, msgs)
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.SessionID).Msg("ingredient extraction failed")
		s.Fail(errx.KindGenerationFailed, "Error extracting ingredients", err)
		return s, nil
	}

	s.ExtractedIngredients = parsers.ParseIngredients(out.Content)
	if len(s.ExtractedIngredients) > 0 {
		s.PairingQuery = parsers.PairingQuery(s.ExtractedIngredients)
	}

	logx.Debug().
		Str("session_id", s.SessionID).
		Strs("ingredients", s.ExtractedIngredients).
		Msg("ingredients extracted")
	return s, nil
}

// RetrievePairings looks up flavour pairings. It never records a failure.
func (n *Nodes) RetrievePairings(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepRetrievePairings)

	if s.PairingQuery == "" {
		s.PairingQuery = parsers.PairingQuery(s.ExtractedIngredients)
	}
	s.PairingText = n.pairings.FindPairings(ctx, s.PairingQuery)
	return s, nil
}

// GenerateRecipe writes the final recipe in the detected language.
func (n *Nodes) GenerateRecipe(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepGenerateRecipe)

	msgs, err := prompts.RenderRecipe(promptContext(ctx, "recipe_prompt"), prompts.RecipeVars{
		Desire:             s.UserDesire,
		DietaryPreferences: s.DietaryPreferences,
		BaseRecipe:         s.BaseRecipeText,
		Pairings:           s.PairingText,
		Language:           s.DetectedLanguage,
	})
	if err != nil {
		return nil, err
	}

	out, err := n.generate(ctx, s, model.StepGenerateRecipe, msgs)
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.SessionID).Msg("recipe generation failed")
		s.Fail(errx.KindGenerationFailed, "Error generating recipe", err)
		return s, nil
	}

	recipe := strings.TrimSpace(out.Content)
	if len([]rune(recipe)) <= MinRecipeLength {
		logx.Warn().Str("session_id", s.SessionID).Int("length", len([]rune(recipe))).Msg("generated recipe too short")
		s.Fail(errx.KindTooShort, errx.ErrTooShort.Error(), nil)
		return s, nil
	}

	s.FinalRecipe = recipe
	s.AppendMessage(schema.AssistantMessage(recipe, nil))
	return s, nil
}

// Clarify asks the user for something the pipeline can act on.
func (n *Nodes) Clarify(ctx context.Context, s *model.RecipeState) (*model.RecipeState, error) {
	if s == nil {
		return nil, errNilState
	}
	s.Visit(model.StepClarify)

	s.Clarification = prompts.Clarification(s.DetectedLanguage, s.ErrorKind, s.UserDesire)
	s.AwaitingUserInput = true
	s.AppendMessage(schema.AssistantMessage(s.Clarification, nil))

	logx.Debug().
		Str("session_id", s.SessionID).
		Stringer("error_kind", s.ErrorKind).
		Str("error", s.ErrorMessage).
		Msg("clarification requested")
	return s, nil
}

// generate calls the chat model with retries and accounts for its usage.
func (n *Nodes) generate(ctx context.Context, s *model.RecipeState, step model.Step, msgs []*schema.Message) (*schema.Message, error) {
	cctx := callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      string(step) + "_chat_model",
		Type:      n.modelName,
		Component: components.ComponentOfChatModel,
	})

	var out *schema.Message
	err := n.retry.do(ctx, s, step, func() error {
		var err error
		out, err = n.chat.Generate(cctx, msgs)
		if err != nil {
			return errx.WrapModel(err)
		}
		if out == nil {
			return errx.WrapModel(fmt.Errorf("empty model response"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	n.recordUsage(s, step, out)
	return out, nil
}

// recordUsage computes the call cost and adds it to the run total.
func (n *Nodes) recordUsage(s *model.RecipeState, step model.Step, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(n.modelName))
	s.TotalCostUSD += totalC

	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             n.modelName,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}
	out.Extra["usage_cost_total_usd"] = s.TotalCostUSD

	logx.Debug().
		Str("session_id", s.SessionID).
		Str("node", string(step)).
		Str("model", n.modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}

// promptContext gives prompt rendering its own callback identity inside a
// lambda node.
func promptContext(ctx context.Context, name string) context.Context {
	return callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      name,
		Component: components.ComponentOfPrompt,
	})
}
