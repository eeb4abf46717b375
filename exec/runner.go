// Package exec runs generated scripts and external formatters as child processes.
package exec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/fwojciec/autoqa"
)

// waitDelay bounds how long output copying may outlive a killed process.
const waitDelay = time.Second

// Ensure Runner implements autoqa.Runner at compile time.
var _ autoqa.Runner = (*Runner)(nil)

// Runner executes a persisted script with an interpreter and waits for it.
type Runner struct {
	interpreter []string
	output      io.Writer
	dir         string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOutput streams the script's combined output to w while it runs.
// The output is captured in the RunResult either way.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.output = w
	}
}

// WithDir sets the working directory of the script process.
func WithDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.dir = dir
	}
}

// NewRunner creates a Runner invoking interpreter with the script path as
// its final argument, e.g. []string{"python3"}.
func NewRunner(interpreter []string, opts ...RunnerOption) *Runner {
	r := &Runner{interpreter: interpreter}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the script at path. A non-zero exit is reported through
// RunResult.ExitCode. Failing to start the interpreter, or cancellation
// of ctx, is EEXEC.
func (r *Runner) Run(ctx context.Context, path string) (*autoqa.RunResult, error) {
	if len(r.interpreter) == 0 {
		return nil, autoqa.Errorf(autoqa.EINVALID, "interpreter required")
	}

	args := append(append([]string{}, r.interpreter[1:]...), path)
	cmd := exec.CommandContext(ctx, r.interpreter[0], args...)
	cmd.Dir = r.dir
	cmd.WaitDelay = waitDelay

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.output != nil {
		w = io.MultiWriter(&buf, r.output)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	begin := time.Now()
	err := cmd.Run()
	result := &autoqa.RunResult{
		Output:   buf.String(),
		Duration: time.Since(begin),
	}
	result.Passed, result.Failed = autoqa.CountTestResults(result.Output)

	if ctx.Err() != nil {
		return nil, autoqa.Errorf(autoqa.EEXEC, "run %s: %v", path, ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, autoqa.Errorf(autoqa.EEXEC, "run %s: %v", path, err)
	}

	return result, nil
}
