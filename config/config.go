package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the agent.
type Config struct {
	LLM           LLMConfig           `yaml:"llm"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Retrieve      RetrieveConfig      `yaml:"retrieve"`
	Market        MarketConfig        `yaml:"market"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// LLMConfig holds reasoning/generation service configuration.
type LLMConfig struct {
	Provider       string `yaml:"provider"` // "openai", "deepseek", "local"
	Model          string `yaml:"model"`
	GraderModel    string `yaml:"grader_model"` // cheaper model for per-document grading
	BaseURL        string `yaml:"base_url"`     // overrides the provider default
	APIKeyEnv      string `yaml:"api_key_env"`  // environment variable holding the key
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call timeout for reasoning service requests.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"` // e.g. "text-embedding-3-large"
	APIKeyEnv string `yaml:"api_key_env"`
	Dimension int    `yaml:"dimension"` // overrides the model's native dimensionality; 0 keeps the default
	BatchSize int    `yaml:"batch_size"`
}

// KnowledgeBaseConfig holds the news-event knowledge base configuration.
type KnowledgeBaseConfig struct {
	Path     string   `yaml:"path"`     // bbolt database file, or ":memory:" for an ephemeral store
	Includes []string `yaml:"includes"` // globs for news JSON exports fed to `index`
	Excludes []string `yaml:"excludes"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// MarketConfig holds market-data provider configuration.
type MarketConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-call timeout for market data requests.
func (c MarketConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	StaticDir       string `yaml:"static_dir"` // frontend assets; empty disables static serving
	CacheSize       int    `yaml:"cache_size"` // answered questions kept, 0 disables caching
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns how long a cached answer stays valid.
func (c ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			GraderModel:    "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-large",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 3072,
			BatchSize: 128,
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Path:     filepath.Join("data", "events.db"),
			Includes: []string{"**/*.json"},
			Excludes: []string{"**/node_modules/**", "**/.git/**"},
		},
		Retrieve: RetrieveConfig{
			TopK: 10,
		},
		Market: MarketConfig{
			BaseURL:        "https://query1.finance.yahoo.com",
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "static",
			CacheSize:       256,
			CacheTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for agent.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "agent.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".finagent", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// APIKey resolves the LLM API key from the configured environment variable.
func (c LLMConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// APIKey resolves the embedding API key from the configured environment variable.
func (c EmbeddingConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}
