package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/chef-innovativo/server/internal/agent/model"
	logx "github.com/chef-innovativo/server/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"

	groqBaseURL = "https://api.groq.com/openai/v1"
)

// NewGenAIClient creates the Gemini client shared by the chat model and the
// pairing embedder.
func NewGenAIClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewChatModel creates the chat model used for extraction and generation.
// client is only used by the gemini provider and may be nil otherwise.
func NewChatModel(ctx context.Context, cfg model.LLMConfig, client *genai.Client) (einomodel.BaseChatModel, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature

	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case ProviderGemini, "":
		if client == nil {
			return nil, fmt.Errorf("gemini provider requires a genai client")
		}
		gcfg := &gemini.Config{
			Client:      client,
			Model:       cfg.Model,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		}
		if cfg.Thinking > 0 {
			gcfg.ThinkingConfig = &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr(cfg.Thinking),
			}
		}
		cm, err := gemini.NewChatModel(ctx, gcfg)
		if err != nil {
			logx.Error().Err(err).Msg("Error creating Gemini chat model")
			return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
		}
		return cm, nil

	case ProviderOpenAI, ProviderGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" && provider == ProviderGroq {
			baseURL = groqBaseURL
		}
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
		if err != nil {
			logx.Error().Err(err).Str("provider", provider).Msg("Error creating OpenAI-compatible chat model")
			return nil, fmt.Errorf("error creating %s chat model: %w", provider, err)
		}
		return cm, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
