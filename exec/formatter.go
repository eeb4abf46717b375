package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/fwojciec/autoqa"
)

// DefaultFormatTimeout bounds a single external formatter invocation.
const DefaultFormatTimeout = 30 * time.Second

// FormatterCommands are the external Python formatters known by name.
// Each reads source on stdin and writes the result to stdout.
var FormatterCommands = map[string][]string{
	"autopep8": {"autopep8", "-"},
	"black":    {"black", "--quiet", "-"},
	"ruff":     {"ruff", "format", "-"},
}

// Ensure Formatter implements autoqa.Formatter at compile time.
var _ autoqa.Formatter = (*Formatter)(nil)

// Formatter pipes source through an external formatter process.
type Formatter struct {
	command []string
	timeout time.Duration
}

// NewFormatter creates a Formatter running command.
func NewFormatter(command ...string) *Formatter {
	return &Formatter{command: command, timeout: DefaultFormatTimeout}
}

// NewNamedFormatter creates a Formatter for one of FormatterCommands.
// Returns ENOTFOUND for unknown names.
func NewNamedFormatter(name string) (*Formatter, error) {
	command, ok := FormatterCommands[name]
	if !ok {
		return nil, autoqa.Errorf(autoqa.ENOTFOUND, "unknown formatter %q", name)
	}
	return NewFormatter(command...), nil
}

// Format returns the formatter's stdout for src. A non-zero exit means the
// formatter rejected the source and is EMALFORMED with the first line of
// its diagnostics. Failing to start the formatter is EEXEC.
func (f *Formatter) Format(src string) (string, error) {
	if len(f.command) == 0 {
		return "", autoqa.Errorf(autoqa.EINVALID, "formatter command required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.command[0], f.command[1:]...)
	cmd.Stdin = strings.NewReader(src)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", autoqa.Errorf(autoqa.EEXEC, "%s: %v", f.command[0], ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return stdout.String(), nil
	case errors.As(err, &exitErr):
		return "", autoqa.Errorf(autoqa.EMALFORMED, "%s: %s", f.command[0], firstLine(stderr.String()))
	default:
		return "", autoqa.Errorf(autoqa.EEXEC, "%s: %v", f.command[0], err)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "rejected input"
	}
	return s
}
