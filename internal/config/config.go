// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.globus-agent/config.yaml or ./config.yaml)
//  3. Default values (offline-friendly defaults for quick start)
//
// Main configuration categories:
//   - Model: Ollama host, chat model, embedder model, sampling settings
//   - Knowledge: product document path, chunk size, retrieval top-K
//   - Directory: customer workbook path
//   - Session: maximum history turns
//   - Server: listen address, rate limiting
//
// Validation: range checks in Validate() with sentinel errors so callers
// can match with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation.
var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the chat model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model name is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidOllamaHost indicates the Ollama server address is invalid.
	ErrInvalidOllamaHost = errors.New("invalid ollama host")

	// ErrInvalidTemperature indicates the sampling temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidTopK indicates the retrieval top-K is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidChunkSize indicates the knowledge chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidHistoryTurns indicates the history turn limit is out of range.
	ErrInvalidHistoryTurns = errors.New("invalid max history turns")

	// ErrInvalidPromptBudget indicates the prompt character budget is too small.
	ErrInvalidPromptBudget = errors.New("invalid prompt character budget")

	// ErrInvalidListenAddr indicates the HTTP listen address is empty.
	ErrInvalidListenAddr = errors.New("invalid listen address")
)

// Bounds for validated values.
const (
	// MaxTemperature is the upper sampling temperature bound.
	MaxTemperature = 2.0

	// MaxAllowedTokens caps max_tokens to the model context window.
	MaxAllowedTokens = 4096

	// MaxTopK caps retrieval depth; the product corpus is small.
	MaxTopK = 20

	// MinChunkSize and MaxChunkSize bound the chunker target size.
	MinChunkSize = 100
	MaxChunkSize = 4000

	// MaxHistoryTurnsLimit caps the conversation window.
	MaxHistoryTurnsLimit = 100

	// MinPromptBudget is the smallest workable prompt character budget.
	MinPromptBudget = 1000
)

// Config stores application configuration.
type Config struct {
	// Model configuration (local Ollama runtime)
	OllamaHost    string  `mapstructure:"ollama_host" json:"ollama_host"`
	ModelName     string  `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Intent classification uses tighter sampling than response generation.
	IntentMaxTokens   int     `mapstructure:"intent_max_tokens" json:"intent_max_tokens"`
	IntentTemperature float32 `mapstructure:"intent_temperature" json:"intent_temperature"`

	// Knowledge base configuration
	ProductsPath string `mapstructure:"products_path" json:"products_path"`
	ChunkSize    int    `mapstructure:"chunk_size" json:"chunk_size"`
	TopK         int    `mapstructure:"top_k" json:"top_k"`

	// Customer directory configuration
	CustomersPath string `mapstructure:"customers_path" json:"customers_path"`

	// Session configuration
	MaxHistoryTurns int `mapstructure:"max_history_turns" json:"max_history_turns"`

	// Prompt assembly budgets, in characters. The local model's tokenizer
	// is not exposed, so char budgets approximate token limits.
	PromptCharBudget    int `mapstructure:"prompt_char_budget" json:"prompt_char_budget"`
	RetrievalCharBudget int `mapstructure:"retrieval_char_budget" json:"retrieval_char_budget"`

	// Server configuration
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	RateBurst  int    `mapstructure:"rate_burst" json:"rate_burst"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".globus-agent")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)

	v.SetEnvPrefix("GLOBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fail-fast: a bad config should never reach component wiring.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Model defaults (local Ollama)
	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("model_name", "llama3.2")
	v.SetDefault("embedder_model", "all-minilm")
	v.SetDefault("temperature", 0.4)
	v.SetDefault("max_tokens", 512)
	v.SetDefault("intent_max_tokens", 20)
	v.SetDefault("intent_temperature", 0.0)

	// Knowledge base defaults
	v.SetDefault("products_path", "data/product_information.txt")
	v.SetDefault("chunk_size", 400)
	v.SetDefault("top_k", 3)

	// Customer directory defaults
	v.SetDefault("customers_path", "data/customers.xlsx")

	// Session defaults
	v.SetDefault("max_history_turns", 8)

	// Prompt budget defaults (~4K token context at ~3 chars/token)
	v.SetDefault("prompt_char_budget", 12000)
	v.SetDefault("retrieval_char_budget", 2400)

	// Server defaults
	v.SetDefault("listen_addr", "localhost:5050")
	v.SetDefault("rate_burst", 60)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// Validate checks all configuration values and returns the first violation.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model name must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder model must not be empty", ErrInvalidEmbedderModel)
	}
	if !strings.HasPrefix(c.OllamaHost, "http://") && !strings.HasPrefix(c.OllamaHost, "https://") {
		return fmt.Errorf("%w: %q must start with http:// or https://", ErrInvalidOllamaHost, c.OllamaHost)
	}
	if c.Temperature < 0 || c.Temperature > MaxTemperature {
		return fmt.Errorf("%w: %.2f not in [0, %.1f]", ErrInvalidTemperature, c.Temperature, MaxTemperature)
	}
	if c.IntentTemperature < 0 || c.IntentTemperature > MaxTemperature {
		return fmt.Errorf("%w: intent temperature %.2f not in [0, %.1f]", ErrInvalidTemperature, c.IntentTemperature, MaxTemperature)
	}
	if c.MaxTokens <= 0 || c.MaxTokens > MaxAllowedTokens {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidMaxTokens, c.MaxTokens, MaxAllowedTokens)
	}
	if c.IntentMaxTokens <= 0 || c.IntentMaxTokens > MaxAllowedTokens {
		return fmt.Errorf("%w: intent max tokens %d not in [1, %d]", ErrInvalidMaxTokens, c.IntentMaxTokens, MaxAllowedTokens)
	}
	if c.TopK <= 0 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidTopK, c.TopK, MaxTopK)
	}
	if c.ChunkSize < MinChunkSize || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidChunkSize, c.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if c.MaxHistoryTurns <= 0 || c.MaxHistoryTurns > MaxHistoryTurnsLimit {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidHistoryTurns, c.MaxHistoryTurns, MaxHistoryTurnsLimit)
	}
	if c.PromptCharBudget < MinPromptBudget {
		return fmt.Errorf("%w: %d below minimum %d", ErrInvalidPromptBudget, c.PromptCharBudget, MinPromptBudget)
	}
	if c.RetrievalCharBudget <= 0 || c.RetrievalCharBudget >= c.PromptCharBudget {
		return fmt.Errorf("%w: retrieval budget %d must be positive and below prompt budget %d",
			ErrInvalidPromptBudget, c.RetrievalCharBudget, c.PromptCharBudget)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return ErrInvalidListenAddr
	}
	return nil
}
