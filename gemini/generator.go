// Package gemini implements autoqa.Generator using Google Gemini.
package gemini

import (
	"context"
	"net/http"

	"github.com/fwojciec/autoqa"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Generator implements autoqa.Generator at compile time.
var _ autoqa.Generator = (*Generator)(nil)

// Generator implements autoqa.Generator using Google Gemini.
type Generator struct {
	client  *genai.Client
	dialect *autoqa.Dialect
	model   string
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// NewGenerator creates a new Generator producing scripts in dialect d.
func NewGenerator(client *genai.Client, d *autoqa.Dialect, opts ...Option) *Generator {
	g := &Generator{client: client, dialect: d, model: DefaultModel}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewClient creates a Gemini API client from cfg. The configured timeout
// bounds each request.
func NewClient(ctx context.Context, cfg autoqa.BackendConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.Credential.Reveal(),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	return genai.NewClient(ctx, cc)
}

// Generate sends prompt to Gemini and returns the raw text response.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", autoqa.Errorf(autoqa.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(g.dialect),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", autoqa.Errorf(autoqa.EBACKEND, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig(d *autoqa.Dialect) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: autoqa.SystemInstruction(d),
			}},
		},
		Temperature: &temp,
	}
}
