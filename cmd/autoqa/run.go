package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/pipeline"
)

// previewBytes is how much of the generated script is echoed after a run.
const previewBytes = 800

var (
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	return execute(deps, c.URL, true)
}

// Run executes the generate command.
func (c *GenerateCmd) Run(deps *Dependencies) error {
	return execute(deps, c.URL, false)
}

func execute(deps *Dependencies, url string, run bool) error {
	progress := newProgress(deps.Stderr)
	defer progress.Stop()

	result, err := deps.Pipeline.Execute(deps.Ctx, pipeline.Request{
		URL:      url,
		Provider: deps.Provider,
		Execute:  run,
	}, progress.Report)
	progress.Stop()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
		return err
	}

	printResult(deps, result)
	return nil
}

func printResult(deps *Dependencies, result *pipeline.Result) {
	if data, err := result.Summary.JSON(); err == nil {
		fmt.Fprintf(deps.Stdout, "Parsed data:\n%s\n\n", data)
	}

	fmt.Fprintf(deps.Stdout, "Generated script (%s, %s) written to %s\n",
		deps.Provider, result.GenerationTime.Round(time.Millisecond), result.Path)
	if result.Script.Unanchored() {
		fmt.Fprintf(deps.Stdout, "%s start anchored: %t, terminated: %t\n",
			gray("warning:"), result.Script.StartAnchored, result.Script.Terminated)
	}

	preview := autoqa.Preview(result.Script.Text, previewBytes)
	fmt.Fprintln(deps.Stdout, preview)
	if len(preview) < len(result.Script.Text) {
		fmt.Fprintln(deps.Stdout, gray(fmt.Sprintf("... (%d more bytes)", len(result.Script.Text)-len(preview))))
	}

	if result.Run == nil {
		return
	}

	status := green("PASS")
	if !result.Run.Succeeded() {
		status = red("FAIL")
	}
	fmt.Fprintf(deps.Stdout, "\n%s %d passed, %d failed (exit %d) in %s\n",
		status, result.Run.Passed, result.Run.Failed, result.Run.ExitCode,
		result.Run.Duration.Round(time.Millisecond))
}
