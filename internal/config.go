package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	Temperature     float64                   `yaml:"temperature"`
	TimeoutSeconds  int                       `yaml:"timeout_seconds"`
}

type EmbeddingsConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RAGConfig struct {
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	TopK          int    `yaml:"top_k"`
	IndexPath     string `yaml:"index_path"`
	KnowledgePath string `yaml:"knowledge_path"`
	Extension     string `yaml:"extension"`
}

type SessionConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxMessages    int `yaml:"max_messages"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	RAG        RAGConfig        `yaml:"rag"`
	Session    SessionConfig    `yaml:"session"`
	Storage    StorageConfig    `yaml:"storage"`
	LogLevel   string           `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		LLM: LLMConfig{
			DefaultProvider: "ollama",
			Providers: map[string]ProviderConfig{
				"ollama": {BaseURL: DefaultOllamaURL, Model: DefaultOllamaModel},
			},
			Temperature:    0.7,
			TimeoutSeconds: 60,
		},
		Embeddings: EmbeddingsConfig{
			BaseURL:        DefaultOllamaURL,
			Model:          DefaultEmbeddingModel,
			TimeoutSeconds: 60,
		},
		RAG: RAGConfig{
			ChunkSize:     500,
			ChunkOverlap:  100,
			TopK:          3,
			IndexPath:     "db",
			KnowledgePath: "knowledge_base",
			Extension:     ".md",
		},
		Session: SessionConfig{
			TimeoutSeconds: 3600,
			MaxMessages:    20,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		LogLevel: "warn",
	}
}

// LoadConfig reads the YAML config at path, falling back to defaults when
// the file does not exist, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.LLM.Providers == nil {
		cfg.LLM.Providers = make(map[string]ProviderConfig)
	}

	cfg.applyEnv()
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	envInt("PORT", &c.Server.Port)

	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		p := c.LLM.Providers["ollama"]
		p.BaseURL = v
		c.LLM.Providers["ollama"] = p
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		p := c.LLM.Providers["ollama"]
		p.Model = v
		c.LLM.Providers["ollama"] = p
	}
	envInt("OLLAMA_TIMEOUT", &c.LLM.TimeoutSeconds)

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embeddings.Model = v
	}

	envInt("CHUNK_SIZE", &c.RAG.ChunkSize)
	envInt("CHUNK_OVERLAP", &c.RAG.ChunkOverlap)
	envInt("MAX_RETRIEVED_DOCS", &c.RAG.TopK)
	if v := os.Getenv("KNOWLEDGE_BASE_DIR"); v != "" {
		c.RAG.KnowledgePath = v
	}

	envInt("SESSION_TIMEOUT", &c.Session.TimeoutSeconds)
	envInt("MAX_SESSION_MESSAGES", &c.Session.MaxMessages)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Validate checks configuration preconditions. A chunk overlap that is
// not strictly smaller than the chunk size would keep the chunking
// cursor from advancing, so it is fatal at startup.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("%w: size %d, overlap %d", ErrBadChunking, c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Session.MaxMessages < 2 {
		return fmt.Errorf("session.max_messages must be at least 2, got %d", c.Session.MaxMessages)
	}
	if c.LLM.DefaultProvider == "" {
		return fmt.Errorf("llm.default_provider must be set")
	}
	if _, ok := c.LLM.Providers[c.LLM.DefaultProvider]; !ok {
		return fmt.Errorf("llm.default_provider %q has no provider entry", c.LLM.DefaultProvider)
	}
	return nil
}

func (c *Config) TicketsPath() string {
	return filepath.Join(c.Storage.DataDir, "tickets.json")
}

func (c *Config) OrdersPath() string {
	return filepath.Join(c.Storage.DataDir, "orders.json")
}
