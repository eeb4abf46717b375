package main

import (
	"fmt"

	"github.com/fwojciec/autoqa"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := autoqa.RunFilter{Limit: c.Limit}
	if c.Provider != "" {
		provider, err := autoqa.ParseProvider(c.Provider)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
			return err
		}
		filter.Provider = &provider
	}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'autoqa run' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-7s %-10s %s  %s\n",
			shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Provider, r.Dialect, outcome(r), r.URL)
	}

	return nil
}

// outcome summarizes how a run ended.
func outcome(r *autoqa.Run) string {
	switch {
	case r.ErrorCode != "":
		return red(r.ErrorCode)
	case r.Executed && r.ExitCode == 0 && r.Failed == 0:
		return green(fmt.Sprintf("pass %d/%d", r.Passed, r.Passed+r.Failed))
	case r.Executed:
		return red(fmt.Sprintf("fail %d/%d exit %d", r.Passed, r.Passed+r.Failed, r.ExitCode))
	case !r.StartAnchored || !r.Terminated:
		return "generated (unanchored)"
	}
	return "generated"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
