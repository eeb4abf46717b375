package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/autoqa"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ autoqa.RunService = (*RunService)(nil)

// RunService implements autoqa.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a run, assigning its ID and creation time.
func (s *RunService) CreateRun(ctx context.Context, run *autoqa.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, url, provider, dialect, generation_ns, raw_bytes, script_bytes, script_hash,
			start_anchored, terminated, executed, exit_code, passed, failed, error_code, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.URL, string(run.Provider), run.Dialect, int64(run.GenerationDur), run.RawBytes, run.ScriptBytes,
		run.ScriptHash, run.StartAnchored, run.Terminated, run.Executed, run.ExitCode, run.Passed, run.Failed,
		run.ErrorCode, run.ErrorMessage, formatTime(run.CreatedAt))

	return err
}

// FindRuns retrieves runs matching the filter, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter autoqa.RunFilter) ([]*autoqa.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, url, provider, dialect, generation_ns, raw_bytes, script_bytes, script_hash,
		start_anchored, terminated, executed, exit_code, passed, failed, error_code, error_message, created_at
		FROM runs WHERE 1=1`)

	if filter.Provider != nil {
		query.WriteString(" AND provider = ?")
		args = append(args, string(*filter.Provider))
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*autoqa.Run
	for rows.Next() {
		var run autoqa.Run
		var provider, createdAt string
		var generationNS int64

		if err := rows.Scan(&run.ID, &run.URL, &provider, &run.Dialect, &generationNS, &run.RawBytes,
			&run.ScriptBytes, &run.ScriptHash, &run.StartAnchored, &run.Terminated, &run.Executed,
			&run.ExitCode, &run.Passed, &run.Failed, &run.ErrorCode, &run.ErrorMessage, &createdAt); err != nil {
			return nil, err
		}

		run.Provider = autoqa.Provider(provider)
		run.GenerationDur = time.Duration(generationNS)
		run.CreatedAt, err = parseTime(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// ProviderStats aggregates all runs per provider, ordered by provider name.
// A run fails when it recorded an error or executed with a non-zero exit or
// failed tests. Unanchored counts only runs that produced a script; averages
// of test counts cover executed runs only.
func (s *RunService) ProviderStats(ctx context.Context) ([]*autoqa.ProviderStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			provider,
			COUNT(*),
			SUM(CASE WHEN error_code != '' OR (executed = 1 AND (exit_code != 0 OR failed > 0)) THEN 1 ELSE 0 END),
			SUM(CASE WHEN script_bytes > 0 AND (start_anchored = 0 OR terminated = 0) THEN 1 ELSE 0 END),
			COALESCE(AVG(CASE WHEN generation_ns > 0 THEN generation_ns END), 0),
			COALESCE(AVG(CASE WHEN executed = 1 THEN passed END), 0),
			COALESCE(AVG(CASE WHEN executed = 1 THEN failed END), 0)
		FROM runs
		GROUP BY provider
		ORDER BY provider
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*autoqa.ProviderStats
	for rows.Next() {
		var st autoqa.ProviderStats
		var provider string
		var avgGeneration float64

		if err := rows.Scan(&provider, &st.Runs, &st.Failures, &st.Unanchored, &avgGeneration,
			&st.AvgPassed, &st.AvgFailed); err != nil {
			return nil, err
		}

		st.Provider = autoqa.Provider(provider)
		st.AvgGeneration = time.Duration(avgGeneration)
		stats = append(stats, &st)
	}

	return stats, rows.Err()
}
