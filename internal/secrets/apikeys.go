// Package secrets resolves provider API keys in priority order:
// environment variables, then a config-supplied value. An encrypted local
// store would be a natural third tier, but no crypto-at-rest primitive is
// available in this module's dependency pool, so that tier is left
// unimplemented and the manager runs in environment/config-only mode — see
// DESIGN.md.
package secrets

import (
	"os"
	"regexp"
)

// Provider identifies which API key shape to resolve/validate.
type Provider string

const (
	OpenAI    Provider = "openai"
	Azure     Provider = "azure"
	Anthropic Provider = "anthropic"
)

var envVar = map[Provider]string{
	OpenAI:    "OPENAI_API_KEY",
	Azure:     "AZURE_OPENAI_API_KEY",
	Anthropic: "ANTHROPIC_API_KEY",
}

var shapePattern = map[Provider]*regexp.Regexp{
	OpenAI:    regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`),
	Azure:     regexp.MustCompile(`^[0-9a-fA-F]{32}$`),
	Anthropic: regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]{20,}$`),
}

// Manager resolves and validates API keys without ever logging raw values.
type Manager struct {
	configKeys map[Provider]string
}

// NewManager builds a Manager; configKeys supplies the second-priority
// config-file tier (may be nil).
func NewManager(configKeys map[Provider]string) *Manager {
	if configKeys == nil {
		configKeys = map[Provider]string{}
	}
	return &Manager{configKeys: configKeys}
}

// Get resolves a key for provider: environment variable first, then the
// config-supplied value. Returns "" if neither is present.
func (m *Manager) Get(provider Provider) string {
	if v := os.Getenv(envVar[provider]); v != "" {
		return v
	}
	return m.configKeys[provider]
}

// GetOpenAIKey mirrors the reference's get_openai_key() convenience
// function.
func (m *Manager) GetOpenAIKey() string { return m.Get(OpenAI) }

// Validate reports whether key has the expected shape for provider. An
// empty key is never valid.
func (m *Manager) Validate(provider Provider, key string) bool {
	if key == "" {
		return false
	}
	pattern, ok := shapePattern[provider]
	if !ok {
		return true
	}
	return pattern.MatchString(key)
}
