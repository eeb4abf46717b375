package main

import (
	"fmt"

	"github.com/fwojciec/autoqa"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	summary, err := deps.Pipeline.Summarize(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
		return err
	}

	data, err := summary.JSON()
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	fmt.Fprintln(deps.Stdout, data)
	return nil
}
