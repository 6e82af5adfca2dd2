package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Embedding.Dimension != 3072 {
		t.Errorf("expected Dimension=3072, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.BatchSize != 128 {
		t.Errorf("expected BatchSize=128, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.LLM.TimeoutSeconds != 60 {
		t.Errorf("expected TimeoutSeconds=60, got %d", cfg.LLM.TimeoutSeconds)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected Addr=:8080, got %s", cfg.Server.Addr)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "agent.yaml")

	content := `
llm:
  model: deepseek-chat
  provider: deepseek
retrieve:
  top_k: 5
market:
  timeout_seconds: 10
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("expected model deepseek-chat, got %s", cfg.LLM.Model)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Market.TimeoutSeconds != 10 {
		t.Errorf("expected market timeout 10, got %d", cfg.Market.TimeoutSeconds)
	}
	// Untouched sections keep defaults.
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("expected default embedding model, got %s", cfg.Embedding.Model)
	}
}

func TestLoadFromDir_Defaults(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieve.TopK != 10 {
		t.Errorf("expected default TopK=10, got %d", cfg.Retrieve.TopK)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "agent.yaml")

	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Retrieve.TopK != 7 {
		t.Errorf("expected TopK=7 after roundtrip, got %d", loaded.Retrieve.TopK)
	}
}
