package autoqa

import (
	"context"
	"time"
)

// Run records one pipeline invocation for provider comparison.
type Run struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	Provider      Provider      `json:"provider"`
	Dialect       string        `json:"dialect"`
	GenerationDur time.Duration `json:"generationDuration"`
	RawBytes      int           `json:"rawBytes"`
	ScriptBytes   int           `json:"scriptBytes"`
	ScriptHash    string        `json:"scriptHash"`
	StartAnchored bool          `json:"startAnchored"`
	Terminated    bool          `json:"terminated"`
	Executed      bool          `json:"executed"`
	ExitCode      int           `json:"exitCode"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	ErrorCode     string        `json:"errorCode"`
	ErrorMessage  string        `json:"errorMessage"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "run URL required")
	}
	if r.Provider == "" {
		return Errorf(EINVALID, "run provider required")
	}
	return nil
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Provider *Provider `json:"provider"`
	URL      *string   `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ProviderStats aggregates run history for one provider.
type ProviderStats struct {
	Provider      Provider      `json:"provider"`
	Runs          int           `json:"runs"`
	Failures      int           `json:"failures"`
	Unanchored    int           `json:"unanchored"`
	AvgGeneration time.Duration `json:"avgGeneration"`
	AvgPassed     float64       `json:"avgPassed"`
	AvgFailed     float64       `json:"avgFailed"`
}

// RunService represents a service for recording pipeline runs.
type RunService interface {
	// CreateRun records a new run and assigns its ID and timestamp.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// ProviderStats aggregates all runs per provider.
	ProviderStats(ctx context.Context) ([]*ProviderStats, error)
}
