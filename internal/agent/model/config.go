package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	TTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	MaxTurns int           `envconfig:"CONVERSATION_MAX_TURNS" default:"20"`
}

// LLMConfig selects and tunes the chat model shared by the extraction and
// generation steps.
type LLMConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	APIKey      string  `envconfig:"LLM_API_KEY"`
	BaseURL     string  `envconfig:"LLM_BASE_URL"`
	Model       string  `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	Thinking    int32   `envconfig:"LLM_THINKING_BUDGET" default:"0"`
}

type SearchConfig struct {
	APIKey     string        `envconfig:"TAVILY_API_KEY"`
	BaseURL    string        `envconfig:"SEARCH_BASE_URL" default:"https://api.tavily.com"`
	MaxResults int           `envconfig:"SEARCH_MAX_RESULTS" default:"5"`
	Depth      string        `envconfig:"SEARCH_DEPTH" default:"basic"`
	Timeout    time.Duration `envconfig:"SEARCH_TIMEOUT" default:"30s"`
	CacheTTL   time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"24h"`
}

type PairingConfig struct {
	CorpusDir      string `envconfig:"PAIRING_CORPUS_DIR" default:"corpus"`
	IndexPath      string `envconfig:"PAIRING_INDEX_PATH" default:"pairings.db"`
	EmbeddingModel string `envconfig:"PAIRING_EMBEDDING_MODEL" default:"text-embedding-004"`
	ChunkSize      int    `envconfig:"PAIRING_CHUNK_SIZE" default:"1000"`
	ChunkOverlap   int    `envconfig:"PAIRING_CHUNK_OVERLAP" default:"200"`
	BatchSize      int    `envconfig:"PAIRING_EMBED_BATCH" default:"50"`
}

type AgentConfig struct {
	DefaultLanguage string        `envconfig:"AGENT_DEFAULT_LANGUAGE" default:"en"`
	MaxRetries      int           `envconfig:"AGENT_MAX_RETRIES" default:"2"`
	RetryInterval   time.Duration `envconfig:"AGENT_RETRY_INTERVAL" default:"500ms"`
}
