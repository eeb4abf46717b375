package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/anthropic"
	aqexec "github.com/fwojciec/autoqa/exec"
	"github.com/fwojciec/autoqa/fs"
	"github.com/fwojciec/autoqa/gemini"
	"github.com/fwojciec/autoqa/goquery"
	aqhttp "github.com/fwojciec/autoqa/http"
	"github.com/fwojciec/autoqa/openai"
	"github.com/fwojciec/autoqa/pipeline"
	"github.com/fwojciec/autoqa/python"
	"github.com/fwojciec/autoqa/rod"
	aqslog "github.com/fwojciec/autoqa/slog"
	"github.com/fwojciec/autoqa/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is not an error.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read by the sanitize command when no file is given.
	Stdin io.Reader

	// ConfigPaths lists JSON configuration files, lowest precedence first.
	// Missing files are ignored.
	ConfigPaths []string

	// SQLite database used by the run history. Opened on demand.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin:       os.Stdin,
		ConfigPaths: []string{"~/.config/autoqa/config.json", "./autoqa.json"},
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && first == nil {
			first = err
		}
		m.DB = nil
	}
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("autoqa"),
		kong.Description("Generate and run browser test scripts for web pages using language models"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(kong.JSON, m.ConfigPaths...),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'autoqa --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose, cli.Quiet)

	defer m.Close()
	if err := m.wire(ctx, commandName(kongCtx), cli, deps); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// wire builds the collaborators the selected command needs.
func (m *Main) wire(ctx context.Context, cmd string, cli *CLI, deps *Dependencies) error {
	switch cmd {
	case "run", "generate":
		flags := cli.Run.PipelineFlags
		backend := cli.Run.BackendFlags
		execute := true
		if cmd == "generate" {
			flags = cli.Generate.PipelineFlags
			backend = cli.Generate.BackendFlags
			execute = false
		}
		return m.wirePipeline(ctx, cli, backend, flags, execute, deps)

	case "extract":
		fetcher, err := m.newFetcher(cli.Extract.FetchFlags, deps)
		if err != nil {
			return err
		}
		deps.Pipeline = &pipeline.Pipeline{
			Fetcher:   fetcher,
			Extractor: goquery.NewExtractor(),
			Logger:    deps.Logger,
		}

	case "sanitize":
		sanitizer, err := newSanitizer(cli.Sanitize.ScriptFlags, deps.Logger)
		if err != nil {
			return err
		}
		deps.Sanitizer = sanitizer

	case "history", "stats":
		if err := m.openDB(cli.DB, deps); err != nil {
			return err
		}
	}
	return nil
}

func (m *Main) wirePipeline(ctx context.Context, cli *CLI, backend BackendFlags, flags PipelineFlags, execute bool, deps *Dependencies) error {
	provider, err := autoqa.ParseProvider(backend.Provider)
	if err != nil {
		return err
	}
	deps.Provider = provider

	sanitizer, err := newSanitizer(flags.ScriptFlags, deps.Logger)
	if err != nil {
		return err
	}
	dialect := sanitizer.Dialect

	cfg := backend.Config(provider)
	if err := cfg.Validate(); err != nil {
		if env := credentialEnv[provider]; env != "" && cfg.Credential == "" {
			fmt.Fprintf(deps.Stderr, "Hint: Set %s or add it to a .env file\n", env)
		}
		return err
	}

	generator, err := newGenerator(ctx, cfg, dialect)
	if err != nil {
		return err
	}
	backends := autoqa.NewDispatcher()
	backends.Register(provider, aqslog.NewLoggingGenerator(generator, provider, deps.Logger))

	fetcher, err := m.newFetcher(flags.FetchFlags, deps)
	if err != nil {
		return err
	}

	output := flags.Output
	if output == "" {
		output = dialect.ScriptName
	}

	deps.Pipeline = &pipeline.Pipeline{
		Fetcher:   fetcher,
		Extractor: goquery.NewExtractor(),
		Backends:  backends,
		Sanitizer: sanitizer,
		Writer:    fs.NewWriter(output),
		Logger:    deps.Logger,
	}

	if execute {
		runner := aqexec.NewRunner(dialect.Interpreter, aqexec.WithOutput(deps.Stdout))
		deps.Pipeline.Runner = aqslog.NewLoggingRunner(runner, deps.Logger)
	}

	if !flags.NoHistory {
		if err := m.openDB(cli.DB, deps); err != nil {
			return err
		}
		deps.Pipeline.Runs = deps.Runs
	}

	return nil
}

func (m *Main) newFetcher(flags FetchFlags, deps *Dependencies) (autoqa.Fetcher, error) {
	var fetcher autoqa.Fetcher
	if flags.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(flags.FetchTimeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed for --render")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, f)
		fetcher = f
	} else {
		fetcher = aqhttp.NewFetcher(aqhttp.WithTimeout(flags.FetchTimeout))
	}
	return aqslog.NewLoggingFetcher(fetcher, deps.Logger), nil
}

func (m *Main) openDB(path string, deps *Dependencies) error {
	if path == "" {
		path = defaultDBPath()
	}
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		fmt.Fprintf(deps.Stderr, "Hint: Set AUTOQA_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	deps.Runs = sqlite.NewRunService(m.DB)
	return nil
}

// credentialEnv names the environment variable holding each provider's key.
var credentialEnv = map[autoqa.Provider]string{
	autoqa.ProviderGPT4:   "OPENAI_API_KEY",
	autoqa.ProviderClaude: "ANTHROPIC_API_KEY",
	autoqa.ProviderGrok:   "XAI_API_KEY",
	autoqa.ProviderGemini: "GEMINI_API_KEY",
}

func newGenerator(ctx context.Context, cfg autoqa.BackendConfig, d *autoqa.Dialect) (autoqa.Generator, error) {
	switch cfg.Provider {
	case autoqa.ProviderGPT4, autoqa.ProviderGrok, autoqa.ProviderOllama:
		g, err := openai.NewGenerator(cfg, d)
		if err != nil {
			return nil, err
		}
		return g, nil
	case autoqa.ProviderClaude:
		return anthropic.NewGenerator(cfg, d), nil
	case autoqa.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewGenerator(client, d, gemini.WithModel(cfg.Model)), nil
	}
	return nil, autoqa.Errorf(autoqa.EINVALID, "unsupported provider %q", cfg.Provider)
}

func newSanitizer(flags ScriptFlags, logger *slog.Logger) (*autoqa.Sanitizer, error) {
	dialect, err := autoqa.FindDialect(flags.Dialect)
	if err != nil {
		return nil, err
	}

	var formatter autoqa.Formatter = python.NewFormatter()
	if flags.Formatter != "" && flags.Formatter != "builtin" {
		f, err := aqexec.NewNamedFormatter(flags.Formatter)
		if err != nil {
			return nil, err
		}
		formatter = f
	}

	return &autoqa.Sanitizer{
		Dialect:   dialect,
		Formatter: formatter,
		Logger:    logger,
	}, nil
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandName returns the first word of the selected kong command path.
func commandName(ctx *kong.Context) string {
	name, _, _ := strings.Cut(ctx.Command(), " ")
	return name
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "autoqa.db"
	}
	return filepath.Join(home, ".autoqa", "autoqa.db")
}
