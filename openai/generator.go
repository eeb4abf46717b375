// Package openai implements autoqa.Generator for backends that speak the
// OpenAI chat completions protocol: OpenAI itself, xAI Grok and Ollama.
package openai

import (
	"context"
	"net/http"

	"github.com/fwojciec/autoqa"
	"github.com/sashabaranov/go-openai"
)

// Default request parameters.
const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1800
)

// Endpoint defaults for the providers this package serves.
const (
	GrokBaseURL   = "https://api.x.ai/v1"
	OllamaBaseURL = "http://localhost:11434/v1"
)

// DefaultModels maps each supported provider to its default model.
var DefaultModels = map[autoqa.Provider]string{
	autoqa.ProviderGPT4:   openai.GPT4,
	autoqa.ProviderGrok:   "grok-4",
	autoqa.ProviderOllama: "llama3.1",
}

// Ensure Generator implements autoqa.Generator at compile time.
var _ autoqa.Generator = (*Generator)(nil)

// Generator implements autoqa.Generator over a chat completions endpoint.
type Generator struct {
	client    *openai.Client
	dialect   *autoqa.Dialect
	model     string
	maxTokens int
}

// Option configures a Generator.
type Option func(*Generator)

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// NewGenerator creates a Generator for cfg.Provider producing scripts in
// dialect d. Returns EINVALID for providers this package does not serve.
func NewGenerator(cfg autoqa.BackendConfig, d *autoqa.Dialect, opts ...Option) (*Generator, error) {
	model, ok := DefaultModels[cfg.Provider]
	if !ok {
		return nil, autoqa.Errorf(autoqa.EINVALID, "provider %q does not use the chat completions API", cfg.Provider)
	}
	if cfg.Model != "" {
		model = cfg.Model
	}

	token := cfg.Credential.Reveal()
	if cfg.Provider == autoqa.ProviderOllama && token == "" {
		token = "ollama"
	}

	cc := openai.DefaultConfig(token)
	switch {
	case cfg.BaseURL != "":
		cc.BaseURL = cfg.BaseURL
	case cfg.Provider == autoqa.ProviderGrok:
		cc.BaseURL = GrokBaseURL
	case cfg.Provider == autoqa.ProviderOllama:
		cc.BaseURL = OllamaBaseURL
	}
	cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	g := &Generator{
		client:    openai.NewClientWithConfig(cc),
		dialect:   d,
		model:     model,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", autoqa.Errorf(autoqa.EINVALID, "prompt required")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: autoqa.SystemInstruction(g.dialect)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", autoqa.Errorf(autoqa.EBACKEND, "%s returned no choices", g.model)
	}

	return resp.Choices[0].Message.Content, nil
}
