package mock

import "github.com/fwojciec/autoqa"

var _ autoqa.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of autoqa.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*autoqa.PageSummary, error)
}

func (e *Extractor) Extract(html string) (*autoqa.PageSummary, error) {
	return e.ExtractFn(html)
}
