package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d, want 500/100", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.LLM.DefaultProvider != "ollama" {
		t.Errorf("default provider = %q", cfg.LLM.DefaultProvider)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.TimeoutSeconds != 3600 {
		t.Errorf("session timeout = %d, want 3600", cfg.Session.TimeoutSeconds)
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 8080
	cfg.RAG.KnowledgePath = "docs"
	cfg.LLM.Providers["openai"] = ProviderConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", loaded.Server.Port)
	}
	if loaded.RAG.KnowledgePath != "docs" {
		t.Errorf("knowledge path = %q, want docs", loaded.RAG.KnowledgePath)
	}
	if got := loaded.LLM.Providers["openai"].Model; got != "gpt-4o-mini" {
		t.Errorf("openai model = %q", got)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "server:\n  port: 9000\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.RAG.ChunkSize != 500 {
		t.Errorf("chunk size = %d, want default 500", cfg.RAG.ChunkSize)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("CHUNK_SIZE", "250")
	t.Setenv("MAX_RETRIEVED_DOCS", "5")
	t.Setenv("SESSION_TIMEOUT", "120")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.LLM.Providers["ollama"].BaseURL != "http://ollama.internal:11434" {
		t.Errorf("ollama base url = %q", cfg.LLM.Providers["ollama"].BaseURL)
	}
	if cfg.Embeddings.BaseURL != "http://ollama.internal:11434" {
		t.Errorf("embeddings base url = %q", cfg.Embeddings.BaseURL)
	}
	if cfg.RAG.ChunkSize != 250 {
		t.Errorf("chunk size = %d, want 250", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("top k = %d, want 5", cfg.RAG.TopK)
	}
	if cfg.Session.TimeoutSeconds != 120 {
		t.Errorf("session timeout = %d, want 120", cfg.Session.TimeoutSeconds)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadConfigIgnoresBadEnvInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want default 5000", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.RAG.ChunkSize = 0 }},
		{"overlap equals size", func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }},
		{"negative overlap", func(c *Config) { c.RAG.ChunkOverlap = -1 }},
		{"zero top k", func(c *Config) { c.RAG.TopK = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"max messages too small", func(c *Config) { c.Session.MaxMessages = 1 }},
		{"empty default provider", func(c *Config) { c.LLM.DefaultProvider = "" }},
		{"provider without entry", func(c *Config) { c.LLM.DefaultProvider = "anthropic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestValidateBadOverlapWrapsChunkingError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize

	if err := cfg.Validate(); !errors.Is(err, ErrBadChunking) {
		t.Errorf("Validate = %v, want ErrBadChunking", err)
	}
}

func TestDataPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/var/lib/helpdesk"

	if got := cfg.TicketsPath(); got != "/var/lib/helpdesk/tickets.json" {
		t.Errorf("TicketsPath = %q", got)
	}
	if got := cfg.OrdersPath(); got != "/var/lib/helpdesk/orders.json" {
		t.Errorf("OrdersPath = %q", got)
	}
}
