package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Memory    MemoryConfig    `koanf:"memory"`
	Agent     AgentConfig     `koanf:"agent"`
	Skills    SkillsConfig    `koanf:"skills"`
	MCP       MCPConfig       `koanf:"mcp"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider    string  `koanf:"provider"` // ollama, mock
	Model       string  `koanf:"model"`
	BaseURL     string  `koanf:"base_url"`
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
}

type MemoryConfig struct {
	Path      string `koanf:"path"`
	AuditPath string `koanf:"audit_path"` // empty disables the sqlite audit trail
}

type AgentConfig struct {
	MaxIterations int `koanf:"max_iterations"`
}

type SkillsConfig struct {
	Dir string `koanf:"dir"` // directory of SKILL.md manifests
}

type MCPConfig struct {
	Command string   `koanf:"command"` // stdio server binary; empty disables MCP
	Args    []string `koanf:"args"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Load reads configuration from defaults, an optional YAML file, and
// STRIDE_-prefixed environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "ollama")
	k.Set("llm.model", "qwen2.5-coder:7b-instruct-q5_K_M")
	k.Set("llm.base_url", "http://localhost:11434")
	k.Set("llm.max_tokens", 1024)
	k.Set("llm.temperature", 0.3)

	k.Set("memory.path", "stride_memory.json")
	k.Set("memory.audit_path", "")

	k.Set("agent.max_iterations", 10)

	k.Set("skills.dir", "")

	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (STRIDE_LLM_PROVIDER -> llm.provider)
	if err := k.Load(env.Provider("STRIDE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "STRIDE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
