package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fwojciec/autoqa/pipeline"
)

// progress renders pipeline progress. The spinner only animates when the
// writer is a terminal; status lines are always written.
type progress struct {
	w       io.Writer
	spinner *spinner.Spinner
	once    sync.Once
}

func newProgress(w io.Writer) *progress {
	p := &progress{w: w}
	if f, ok := w.(*os.File); ok {
		p.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(f))
	}
	return p
}

// Report handles a single progress event.
func (p *progress) Report(e pipeline.ProgressEvent) {
	switch e.Type {
	case pipeline.ProgressFetching:
		p.spin(fmt.Sprintf(" fetching %s", e.URL))
	case pipeline.ProgressGenerating:
		p.spin(fmt.Sprintf(" waiting for %s", e.Provider))
	case pipeline.ProgressGenerated:
		p.pause()
		fmt.Fprintf(p.w, "%s responded in %s\n", e.Provider, e.Duration.Round(time.Millisecond))
	case pipeline.ProgressWritten:
		fmt.Fprintf(p.w, "wrote %s\n", e.Path)
	case pipeline.ProgressRunning:
		fmt.Fprintf(p.w, "running %s\n", e.Path)
	}
}

// Stop halts the spinner. Safe to call more than once.
func (p *progress) Stop() {
	p.once.Do(p.pause)
}

func (p *progress) spin(suffix string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = suffix
	p.spinner.Unlock()
	p.spinner.Start()
}

func (p *progress) pause() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}
