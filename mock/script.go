package mock

import (
	"context"

	"github.com/fwojciec/autoqa"
)

var (
	_ autoqa.Formatter    = (*Formatter)(nil)
	_ autoqa.ScriptWriter = (*ScriptWriter)(nil)
	_ autoqa.Runner       = (*Runner)(nil)
)

// Formatter is a mock implementation of autoqa.Formatter.
type Formatter struct {
	FormatFn func(src string) (string, error)
}

func (f *Formatter) Format(src string) (string, error) {
	return f.FormatFn(src)
}

// ScriptWriter is a mock implementation of autoqa.ScriptWriter.
type ScriptWriter struct {
	WriteScriptFn func(ctx context.Context, script *autoqa.Script) (string, error)
}

func (w *ScriptWriter) WriteScript(ctx context.Context, script *autoqa.Script) (string, error) {
	return w.WriteScriptFn(ctx, script)
}

// Runner is a mock implementation of autoqa.Runner.
type Runner struct {
	RunFn func(ctx context.Context, path string) (*autoqa.RunResult, error)
}

func (r *Runner) Run(ctx context.Context, path string) (*autoqa.RunResult, error) {
	return r.RunFn(ctx, path)
}
