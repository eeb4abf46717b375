package mock

import (
	"context"

	"github.com/fwojciec/autoqa"
)

var _ autoqa.RunService = (*RunService)(nil)

// RunService is a mock implementation of autoqa.RunService.
type RunService struct {
	CreateRunFn     func(ctx context.Context, run *autoqa.Run) error
	FindRunsFn      func(ctx context.Context, filter autoqa.RunFilter) ([]*autoqa.Run, error)
	ProviderStatsFn func(ctx context.Context) ([]*autoqa.ProviderStats, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *autoqa.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter autoqa.RunFilter) ([]*autoqa.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) ProviderStats(ctx context.Context) ([]*autoqa.ProviderStats, error) {
	return s.ProviderStatsFn(ctx)
}
