// Package anthropic implements autoqa.Generator using the Anthropic Messages API.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/autoqa"
)

// Defaults for the Messages API.
const (
	DefaultModel       = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.2
)

// Ensure Generator implements autoqa.Generator at compile time.
var _ autoqa.Generator = (*Generator)(nil)

// Generator implements autoqa.Generator using Claude.
type Generator struct {
	client  anthropic.Client
	model   string
	dialect *autoqa.Dialect
}

// NewGenerator creates a Generator producing scripts in dialect d.
// The client never retries; a failed call is reported to the caller as is.
func NewGenerator(cfg autoqa.BackendConfig, d *autoqa.Dialect) *Generator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.Credential.Reveal()),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	g := &Generator{
		client:  anthropic.NewClient(opts...),
		model:   DefaultModel,
		dialect: d,
	}
	if cfg.Model != "" {
		g.model = cfg.Model
	}
	return g
}

// Generate sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", autoqa.Errorf(autoqa.EINVALID, "prompt required")
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   DefaultMaxTokens,
		Temperature: anthropic.Float(DefaultTemperature),
		System: []anthropic.TextBlockParam{
			{Text: autoqa.SystemInstruction(g.dialect)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
