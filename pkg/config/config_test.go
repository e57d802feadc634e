package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Fatalf("unexpected llm provider: %s", cfg.LLM.Provider)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.Agent.MaxIterations != 10 {
		t.Fatalf("unexpected max iterations: %d", cfg.Agent.MaxIterations)
	}
	if cfg.Memory.Path != "stride_memory.json" {
		t.Fatalf("unexpected memory path: %s", cfg.Memory.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stride.yaml")
	content := `
log:
  level: debug
  format: json
llm:
  model: llama3
agent:
  max_iterations: 3
memory:
  audit_path: audit.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("file values not applied: %+v", cfg.Log)
	}
	if cfg.LLM.Model != "llama3" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Fatalf("defaults must survive partial files: %s", cfg.LLM.Provider)
	}
	if cfg.Agent.MaxIterations != 3 {
		t.Fatalf("unexpected max iterations: %d", cfg.Agent.MaxIterations)
	}
	if cfg.Memory.AuditPath != "audit.db" {
		t.Fatalf("unexpected audit path: %s", cfg.Memory.AuditPath)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STRIDE_LOG_LEVEL", "error")
	t.Setenv("STRIDE_LLM_MODEL", "codellama")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("env override not applied: %s", cfg.Log.Level)
	}
	if cfg.LLM.Model != "codellama" {
		t.Fatalf("env override not applied: %s", cfg.LLM.Model)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
