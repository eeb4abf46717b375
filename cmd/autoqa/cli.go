package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Provider  autoqa.Provider
	Pipeline  *pipeline.Pipeline
	Sanitizer *autoqa.Sanitizer
	Runs      autoqa.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Quiet   bool   `short:"q" help:"Disable logging"`
	DB      string `name:"db" env:"AUTOQA_DB" type:"path" help:"Run history database (default: ~/.autoqa/autoqa.db)"`

	Run      RunCmd      `cmd:"" help:"Generate a test script for a page and run it"`
	Generate GenerateCmd `cmd:"" help:"Generate a test script for a page without running it"`
	Extract  ExtractCmd  `cmd:"" help:"Print the structural summary of a page as JSON"`
	Sanitize SanitizeCmd `cmd:"" help:"Sanitize raw generated text from a file or stdin"`
	History  HistoryCmd  `cmd:"" help:"List recorded runs, newest first"`
	Stats    StatsCmd    `cmd:"" help:"Compare providers across recorded runs"`
}

// BackendFlags select and configure the generation backend.
type BackendFlags struct {
	Provider string        `short:"p" env:"AUTOQA_PROVIDER" default:"gpt4" help:"Backend provider (gpt4, claude, grok, gemini, ollama)"`
	Model    string        `short:"m" env:"AUTOQA_MODEL" help:"Override the provider's default model"`
	Timeout  time.Duration `env:"AUTOQA_TIMEOUT" default:"120s" help:"Backend request timeout"`
	BaseURL  string        `name:"base-url" env:"AUTOQA_BASE_URL" help:"Override the provider's API endpoint"`

	OpenAIKey    string `name:"openai-key" env:"OPENAI_API_KEY" help:"OpenAI API key"`
	AnthropicKey string `name:"anthropic-key" env:"ANTHROPIC_API_KEY" help:"Anthropic API key"`
	XAIKey       string `name:"xai-key" env:"XAI_API_KEY" help:"xAI API key"`
	GeminiKey    string `name:"gemini-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
}

// Config returns the backend configuration for provider, choosing the
// credential that belongs to it.
func (f BackendFlags) Config(provider autoqa.Provider) autoqa.BackendConfig {
	var key string
	switch provider {
	case autoqa.ProviderGPT4:
		key = f.OpenAIKey
	case autoqa.ProviderClaude:
		key = f.AnthropicKey
	case autoqa.ProviderGrok:
		key = f.XAIKey
	case autoqa.ProviderGemini:
		key = f.GeminiKey
	}
	return autoqa.BackendConfig{
		Provider:   provider,
		Credential: autoqa.Secret(key),
		Timeout:    f.Timeout,
		Model:      f.Model,
		BaseURL:    f.BaseURL,
	}
}

// FetchFlags configure page retrieval.
type FetchFlags struct {
	Render       bool          `help:"Render the page in headless Chrome before extracting"`
	FetchTimeout time.Duration `name:"fetch-timeout" default:"30s" help:"Page fetch timeout"`
}

// ScriptFlags configure sanitation of generated scripts.
type ScriptFlags struct {
	Dialect   string `short:"d" env:"AUTOQA_DIALECT" default:"selenium" enum:"selenium,playwright" help:"Script dialect (selenium, playwright)"`
	Formatter string `env:"AUTOQA_FORMATTER" default:"builtin" enum:"builtin,autopep8,black,ruff" help:"Style normalizer (builtin, autopep8, black, ruff)"`
}

// PipelineFlags configure a full generation run.
type PipelineFlags struct {
	FetchFlags  `embed:""`
	ScriptFlags `embed:""`

	Output    string `short:"o" type:"path" help:"Artifact path (default: generated_test.py)"`
	NoHistory bool   `name:"no-history" help:"Do not record the run in the history database"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL string `arg:"" help:"Page URL"`

	BackendFlags  `embed:""`
	PipelineFlags `embed:""`
}

// GenerateCmd is the "generate" subcommand.
type GenerateCmd struct {
	URL string `arg:"" help:"Page URL"`

	BackendFlags  `embed:""`
	PipelineFlags `embed:""`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL string `arg:"" help:"Page URL"`

	FetchFlags `embed:""`
}

// SanitizeCmd is the "sanitize" subcommand.
type SanitizeCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"File with raw generated text (default: stdin)"`

	ScriptFlags `embed:""`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Provider string `short:"p" help:"Only show runs for this provider"`
	URL      string `name:"url" help:"Only show runs for this URL"`
	Limit    int    `short:"n" default:"20" help:"Maximum number of runs to show"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
