package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/chef-innovativo/server/internal/agent/model"
	pkgredis "github.com/chef-innovativo/server/pkg/redis"
)

// AppConfig defines all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// Gemini client shared by the gemini chat provider and the embedder
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	LLM          model.LLMConfig
	Search       model.SearchConfig
	Pairing      model.PairingConfig
	Agent        model.AgentConfig
	Conversation model.ConversationConfig
}

// LoadConfig reads envFile when it exists and then the environment.
func LoadConfig(envFile string) (AppConfig, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return AppConfig{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}

// geminiKey returns the key for the genai client. The chat model key is
// reused when the chat provider is Gemini and no dedicated key is set.
func (c AppConfig) geminiKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	if c.LLM.Provider == "" || c.LLM.Provider == "gemini" {
		return c.LLM.APIKey
	}
	return ""
}
