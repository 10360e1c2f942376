// Package config loads the gateway's YAML configuration: ambient
// server/audit/rate-limit settings plus the guardrail pipeline definition.
//
// This gateway evaluates content rather than proxying requests to upstream
// routes, so there is no per-provider HTTP endpoint routing table here (see
// DESIGN.md) — the pipeline section takes its place.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the entire gateway configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Audit      AuditConfig      `yaml:"audit"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Validation ValidationConfig `yaml:"validation"`
	AIProvider AIProviderConfig `yaml:"ai_provider"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// ServerConfig holds ambient HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout"`  // seconds
}

// AuditConfig configures the audit trail (internal/audit.Trail).
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Destination   string `yaml:"destination"` // "stdout", a file path, or "" for smart default
	RedactPII     bool   `yaml:"redact_pii"`
	BufferSize    int    `yaml:"buffer_size"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval string `yaml:"flush_interval"` // duration string like "1s"
	Postgres      PostgresConfig `yaml:"postgres"`
}

// PostgresConfig configures the optional compliance-archive sink.
type PostgresConfig struct {
	Enabled         bool   `yaml:"enabled"`
	URL             string `yaml:"url"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Database        string `yaml:"database"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxConnections  int    `yaml:"max_connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // minutes
}

// RateLimitConfig configures the global per-key rolling-window limiter.
type RateLimitConfig struct {
	Enabled   bool                   `yaml:"enabled"`
	PerMinute int                    `yaml:"per_minute"`
	PerHour   int                    `yaml:"per_hour"`
	PerDay    int                    `yaml:"per_day"`
	Roles     map[string]RoleLimits  `yaml:"roles"`
}

// RoleLimits is a role-specific override of the default rate limits.
type RoleLimits struct {
	PerMinute int  `yaml:"per_minute"`
	PerHour   int  `yaml:"per_hour"`
	PerDay    int  `yaml:"per_day"`
	Exempt    bool `yaml:"exempt"`
}

// ValidationConfig configures content-size and pipeline-shape limits. A
// zero value for any field means "use the package default."
type ValidationConfig struct {
	MaxPromptLength       int `yaml:"max_prompt_length"`
	MaxResponseLength     int `yaml:"max_response_length"`
	MaxLineLength         int `yaml:"max_line_length"`
	MaxConversationTurns  int `yaml:"max_conversation_turns"`
	MaxFiltersPerPipeline int `yaml:"max_filters_per_pipeline"`
	MaxRegexPatterns      int `yaml:"max_regex_patterns"`
}

// AIProviderConfig configures the single AI provider instance shared by
// AI-backed detectors (content_moderation, ai_pii_detection, etc).
type AIProviderConfig struct {
	Name    string `yaml:"name"` // "openai"
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"` // duration string like "30s"
}

// PipelineConfig is the decoded "pipeline:" section: the ordered input and
// output guardrail stages plus the short_circuit policy flag.
type PipelineConfig struct {
	ShortCircuit bool              `yaml:"short_circuit"`
	Input        []GuardrailConfig `yaml:"input"`
	Output       []GuardrailConfig `yaml:"output"`
}

// GuardrailConfig holds configuration for a single guardrail entry in a
// pipeline stage: its name, type, enabled flag, on_error policy, and
// type-specific config.
type GuardrailConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	OnError string                 `yaml:"on_error"`
	Config  map[string]interface{} `yaml:"config"`
}

// LoadConfig loads configuration from a YAML file, applying defaults for
// any field the file omits. An empty configPath returns the defaults
// unmodified.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
		Audit: AuditConfig{
			Enabled:       true,
			Destination:   "",
			RedactPII:     true,
			BufferSize:    1000,
			BatchSize:     10,
			FlushInterval: "1s",
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			PerMinute: 60,
			PerHour:   1000,
			PerDay:    10000,
		},
		AIProvider: AIProviderConfig{
			Name:    "openai",
			Timeout: "30s",
		},
		Pipeline: PipelineConfig{
			Input:  []GuardrailConfig{},
			Output: []GuardrailConfig{},
		},
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return cfg, nil
}
