package autoqa

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Script is a sanitized, bounded script derived from one raw generation.
type Script struct {
	// Text is the normalized script without a trailing newline.
	Text string

	// StartAnchored reports whether an import-like line was found.
	StartAnchored bool

	// Terminated reports whether the terminal call was found.
	Terminated bool

	// RawSize is the byte length of the generation the script came from.
	RawSize int
}

// Unanchored reports whether either anchor was missing. This is
// informational: an unanchored script is still persisted and run.
func (s *Script) Unanchored() bool {
	return !s.StartAnchored || !s.Terminated
}

// ScriptWriter persists a script to a fixed artifact location.
type ScriptWriter interface {
	// WriteScript replaces the artifact contents with script.
	// Returns the path written.
	WriteScript(ctx context.Context, script *Script) (path string, err error)
}

// RunResult is the outcome of executing a persisted script.
type RunResult struct {
	ExitCode int
	Output   string
	Duration time.Duration

	// Passed and Failed count "Test N Passed" and "Test N Failed" lines.
	Passed int
	Failed int
}

// Succeeded reports whether the script exited cleanly with no failed tests.
func (r *RunResult) Succeeded() bool {
	return r.ExitCode == 0 && r.Failed == 0
}

// Runner executes a persisted script in an external process.
type Runner interface {
	// Run executes the script at path and waits for it to finish.
	// A non-zero exit is reported in RunResult, not as an error;
	// errors mean the process could not be started (EEXEC).
	Run(ctx context.Context, path string) (*RunResult, error)
}

// Formatter reformats script text into a consistent layout.
type Formatter interface {
	// Format returns the normalized text, or EMALFORMED if the text
	// cannot be parsed.
	Format(src string) (string, error)
}

// testLine matches a console line reporting one test outcome,
// e.g. "Test 3 Passed" or "Test 12: FAILED - element not found".
var testLine = regexp.MustCompile(`(?i)\btest\s*#?\s*\d+\b.*?\b(passed|failed)\b`)

// CountTestResults counts passed and failed test lines in script output.
func CountTestResults(output string) (passed, failed int) {
	for _, l := range strings.Split(output, "\n") {
		m := testLine.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if strings.EqualFold(m[1], "passed") {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
