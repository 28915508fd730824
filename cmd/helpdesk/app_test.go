package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// writeTestConfig points every path at a temp dir and the language model
// at a port nothing listens on, so commands fail fast into the fallback
// path instead of waiting for a real backend.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	knowledge := filepath.Join(dir, "knowledge_base")
	if err := os.MkdirAll(knowledge, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := fmt.Sprintf(`server:
  host: 127.0.0.1
  port: 5000
llm:
  default_provider: ollama
  providers:
    ollama:
      base_url: http://127.0.0.1:1
      model: llama3.2
  temperature: 0.7
  timeout_seconds: 1
embeddings:
  base_url: http://127.0.0.1:1
  model: nomic-embed-text
  timeout_seconds: 1
rag:
  chunk_size: 100
  chunk_overlap: 20
  top_k: 3
  index_path: %s
  knowledge_path: %s
  extension: .md
session:
  timeout_seconds: 3600
  max_messages: 20
storage:
  data_dir: %s
log_level: error
`, filepath.Join(dir, "db"), knowledge, filepath.Join(dir, "data"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCmd(t *testing.T, configPath string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{}
	addPersistentFlags(cmd)
	// Merge persistent flags into Flags() the way Execute does, so
	// loadApp's cmd.Flags() lookup can see the config flag.
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	if err := cmd.PersistentFlags().Set("config", configPath); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadApp(t *testing.T) {
	cmd := newTestCmd(t, writeTestConfig(t))

	a, err := loadApp(cmd)
	if err != nil {
		t.Fatalf("loadApp: %v", err)
	}

	if a.agent == nil || a.index == nil || a.sessions == nil {
		t.Error("loadApp left collaborators unwired")
	}
	if a.cfg.RAG.TopK != 3 {
		t.Errorf("top_k = %d, want 3", a.cfg.RAG.TopK)
	}

	// Sample orders are seeded on first start.
	if got := a.orders.Stats().TotalOrders; got != 3 {
		t.Errorf("seeded orders = %d, want 3", got)
	}
}

func TestLoadAppRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	bad := "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadApp(newTestCmd(t, path)); err == nil {
		t.Fatal("loadApp accepted overlap equal to chunk size")
	}
}

func TestLoadAppMissingConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	a, err := loadApp(newTestCmd(t, filepath.Join(dir, "absent.yaml")))
	if err != nil {
		t.Fatalf("loadApp: %v", err)
	}
	if a.cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want default 5000", a.cfg.Server.Port)
	}
}

func TestBuildProviderUnknownName(t *testing.T) {
	cmd := newTestCmd(t, writeTestConfig(t))

	a, err := loadApp(cmd)
	if err != nil {
		t.Fatalf("loadApp: %v", err)
	}

	a.cfg.LLM.DefaultProvider = "mystery"
	if _, err := buildProvider(cmd.Context(), a.cfg, a.ollama); err == nil {
		t.Fatal("expected error for unconfigured provider")
	}
}
