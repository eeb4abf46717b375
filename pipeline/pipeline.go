// Package pipeline orchestrates one autoqa run: fetch, extract, prompt,
// generate, sanitize, persist, execute and record. Stages run strictly in
// sequence and every fatal error aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/autoqa"
)

// Pipeline wires the collaborators of a run.
type Pipeline struct {
	Fetcher   autoqa.Fetcher
	Extractor autoqa.Extractor
	Backends  *autoqa.Dispatcher
	Sanitizer *autoqa.Sanitizer
	Writer    autoqa.ScriptWriter

	// Runner executes the persisted script. Optional; without it the
	// pipeline stops after persistence.
	Runner autoqa.Runner

	// Runs records every run that reached generation. Optional.
	Runs autoqa.RunService

	// Logger is optional.
	Logger *slog.Logger
}

// Request describes a single run.
type Request struct {
	URL      string
	Provider autoqa.Provider

	// Execute runs the persisted script when a Runner is configured.
	Execute bool
}

// Result holds the outcome of a successful run.
type Result struct {
	Summary        *autoqa.PageSummary
	Prompt         string
	Raw            string
	Script         *autoqa.Script
	Path           string
	GenerationTime time.Duration

	// Run is nil unless the script was executed.
	Run *autoqa.RunResult
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type     ProgressType
	URL      string
	Provider autoqa.Provider
	Path     string
	Duration time.Duration
}

// ProgressType indicates the stage a run has reached.
type ProgressType int

const (
	ProgressFetching ProgressType = iota
	ProgressGenerating
	ProgressGenerated
	ProgressWritten
	ProgressRunning
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Summarize fetches url and extracts its PageSummary.
// Returns EINVALID for URLs that are not absolute http(s) URLs and EFETCH
// when the page cannot be retrieved.
func (p *Pipeline) Summarize(ctx context.Context, rawURL string) (*autoqa.PageSummary, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	html, err := p.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if autoqa.ErrorCode(err) == autoqa.EINTERNAL && ctx.Err() == nil {
			return nil, autoqa.Errorf(autoqa.EFETCH, "fetch %s: %v", rawURL, err)
		}
		return nil, err
	}

	summary, err := p.Extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	return summary, nil
}

// Execute performs one run. The artifact is written only after the
// generation sanitizes successfully. When a RunService is configured, the
// run is recorded once generation has been attempted, whether it succeeded
// or not; a recording failure is logged and does not fail the run.
func (p *Pipeline) Execute(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if req.Provider == "" {
		return nil, autoqa.Errorf(autoqa.EINVALID, "provider required")
	}

	notify := func(e ProgressEvent) {
		if progress != nil {
			e.URL, e.Provider = req.URL, req.Provider
			progress(e)
		}
	}

	notify(ProgressEvent{Type: ProgressFetching})
	summary, err := p.Summarize(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	dialect := p.dialect()
	prompt, err := autoqa.BuildPrompt(req.URL, summary, dialect)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	record := &autoqa.Run{
		URL:      req.URL,
		Provider: req.Provider,
		Dialect:  dialect.Name,
	}
	result, err := p.generate(ctx, req, summary, prompt, record, notify)
	if err != nil {
		record.ErrorCode = autoqa.ErrorCode(err)
		record.ErrorMessage = autoqa.ErrorMessage(err)
	}
	p.record(ctx, record)

	if err != nil {
		return nil, err
	}

	notify(ProgressEvent{Type: ProgressFinished})
	return result, nil
}

func (p *Pipeline) generate(ctx context.Context, req Request, summary *autoqa.PageSummary, prompt string,
	record *autoqa.Run, notify ProgressFunc) (*Result, error) {
	notify(ProgressEvent{Type: ProgressGenerating})
	begin := time.Now()
	raw, err := p.Backends.Generate(ctx, prompt, req.Provider)
	elapsed := time.Since(begin)
	record.GenerationDur = elapsed
	if err != nil {
		return nil, err
	}
	record.RawBytes = len(raw)
	notify(ProgressEvent{Type: ProgressGenerated, Duration: elapsed})

	script, err := p.Sanitizer.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	record.ScriptBytes = len(script.Text)
	record.ScriptHash = HashScript(script)
	record.StartAnchored = script.StartAnchored
	record.Terminated = script.Terminated

	path, err := p.Writer.WriteScript(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	notify(ProgressEvent{Type: ProgressWritten, Path: path})

	result := &Result{
		Summary:        summary,
		Prompt:         prompt,
		Raw:            raw,
		Script:         script,
		Path:           path,
		GenerationTime: elapsed,
	}

	if !req.Execute || p.Runner == nil {
		return result, nil
	}

	notify(ProgressEvent{Type: ProgressRunning, Path: path})
	run, err := p.Runner.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	record.Executed = true
	record.ExitCode = run.ExitCode
	record.Passed = run.Passed
	record.Failed = run.Failed
	result.Run = run

	return result, nil
}

func (p *Pipeline) record(ctx context.Context, run *autoqa.Run) {
	if p.Runs == nil {
		return
	}
	if err := p.Runs.CreateRun(context.WithoutCancel(ctx), run); err != nil && p.Logger != nil {
		p.Logger.Warn("recording run failed", "url", run.URL, "provider", run.Provider, "err", err)
	}
}

func (p *Pipeline) dialect() *autoqa.Dialect {
	if p.Sanitizer != nil && p.Sanitizer.Dialect != nil {
		return p.Sanitizer.Dialect
	}
	return autoqa.DialectSelenium
}

// HashScript returns a stable hex digest of the script text, used to spot
// identical generations across runs.
func HashScript(script *autoqa.Script) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(script.Text))
}

// ValidateURL returns EINVALID unless rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return autoqa.Errorf(autoqa.EINVALID, "URL required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return autoqa.Errorf(autoqa.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return autoqa.Errorf(autoqa.EINVALID, "URL must use http or https: %q", rawURL)
	}
	if u.Host == "" {
		return autoqa.Errorf(autoqa.EINVALID, "URL must include a host: %q", rawURL)
	}
	return nil
}
