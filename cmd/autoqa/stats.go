package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/autoqa"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Runs.ProviderStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
		return err
	}

	if len(stats) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'autoqa run' to create one.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "%-8s %6s %9s %11s %10s %11s %11s\n",
		"PROVIDER", "RUNS", "FAILURES", "UNANCHORED", "AVG GEN", "AVG PASSED", "AVG FAILED")
	for _, s := range stats {
		fmt.Fprintf(deps.Stdout, "%-8s %6d %9d %11d %10s %11.1f %11.1f\n",
			s.Provider, s.Runs, s.Failures, s.Unanchored,
			s.AvgGeneration.Round(100*time.Millisecond), s.AvgPassed, s.AvgFailed)
	}

	return nil
}
