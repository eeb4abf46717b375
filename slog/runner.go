package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/autoqa"
)

// Ensure LoggingRunner implements autoqa.Runner.
var _ autoqa.Runner = (*LoggingRunner)(nil)

// LoggingRunner wraps a Runner with logging.
type LoggingRunner struct {
	next   autoqa.Runner
	logger *slog.Logger
}

// NewLoggingRunner creates a new LoggingRunner.
func NewLoggingRunner(next autoqa.Runner, logger *slog.Logger) *LoggingRunner {
	return &LoggingRunner{next: next, logger: logger}
}

// Run delegates to the wrapped runner and logs the outcome.
func (r *LoggingRunner) Run(ctx context.Context, path string) (result *autoqa.RunResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"path", path, "duration", time.Since(begin)}
		if result != nil {
			attrs = append(attrs,
				"exit_code", result.ExitCode,
				"passed", result.Passed,
				"failed", result.Failed,
			)
		}
		attrs = append(attrs, "err", err)
		r.logger.Info("run", attrs...)
	}(time.Now())
	return r.next.Run(ctx, path)
}
