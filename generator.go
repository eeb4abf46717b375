package autoqa

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Provider identifies a text generation backend.
type Provider string

// Provider constants.
const (
	ProviderGPT4   Provider = "gpt4"
	ProviderClaude Provider = "claude"
	ProviderGrok   Provider = "grok"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// Providers lists every known provider in display order.
func Providers() []Provider {
	return []Provider{ProviderGPT4, ProviderClaude, ProviderGrok, ProviderGemini, ProviderOllama}
}

// ParseProvider resolves a provider name or alias, case-insensitively.
// Returns EINVALID for unknown names.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gpt4", "gpt-4", "gpt", "openai":
		return ProviderGPT4, nil
	case "claude", "anthropic":
		return ProviderClaude, nil
	case "grok", "xai":
		return ProviderGrok, nil
	case "gemini", "google":
		return ProviderGemini, nil
	case "ollama":
		return ProviderOllama, nil
	}
	return "", Errorf(EINVALID, "unknown provider %q (supported: gpt4, claude, grok, gemini, ollama)", name)
}

// Secret is an opaque credential. It never prints its value.
type Secret string

const redacted = "[REDACTED]"

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// Reveal returns the raw credential for use in an API client.
func (s Secret) Reveal() string {
	return string(s)
}

// BackendConfig configures a single generation backend.
type BackendConfig struct {
	Provider   Provider
	Credential Secret
	Timeout    time.Duration

	// Model overrides the provider's default model when set.
	Model string

	// BaseURL overrides the provider's API endpoint when set.
	BaseURL string
}

// Validate returns an error if the configuration cannot build a backend.
// Ollama runs locally and needs no credential.
func (c *BackendConfig) Validate() error {
	if c.Provider == "" {
		return Errorf(EINVALID, "provider required")
	}
	if c.Credential == "" && c.Provider != ProviderOllama {
		return Errorf(EINVALID, "credential required for provider %q", c.Provider)
	}
	if c.Timeout < 0 {
		return Errorf(EINVALID, "timeout must not be negative")
	}
	return nil
}

// Generator produces raw text from a prompt using a language model.
type Generator interface {
	// Generate sends prompt to the backend and returns its raw text response.
	// The response is untrusted and may contain prose, fences or partial code.
	Generate(ctx context.Context, prompt string) (string, error)
}
