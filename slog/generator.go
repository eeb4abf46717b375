package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/autoqa"
)

// Ensure LoggingGenerator implements autoqa.Generator.
var _ autoqa.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging. Prompt and response
// bodies are logged at debug level only.
type LoggingGenerator struct {
	next     autoqa.Generator
	provider autoqa.Provider
	logger   *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next autoqa.Generator, provider autoqa.Provider, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, provider: provider, logger: logger}
}

// Generate delegates to the wrapped generator and logs the call.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (text string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"provider", g.provider,
			"prompt_bytes", len(prompt),
			"bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
		g.logger.Debug("generation", "provider", g.provider, "text", text)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}
