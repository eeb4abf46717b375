// Package goquery implements autoqa.Extractor on top of a parsed goquery document.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/autoqa"
)

// Ensure Extractor implements autoqa.Extractor at compile time.
var _ autoqa.Extractor = (*Extractor)(nil)

// Extractor summarizes the structural and interactive elements of a page.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and returns its PageSummary.
func (e *Extractor) Extract(html string) (*autoqa.PageSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, autoqa.Errorf(autoqa.EINVALID, "failed to parse HTML: %v", err)
	}
	return Summarize(doc), nil
}

// Summarize builds a PageSummary from a parsed document. Elements appear in
// document order. Absent attributes are recorded as nil rather than empty
// strings, and every heading level from h1 to h6 is present in Headings.
func Summarize(doc *goquery.Document) *autoqa.PageSummary {
	s := &autoqa.PageSummary{
		Title:    title(doc),
		Links:    attrs(doc.Find("a[href]"), "href"),
		Headings: make(map[string][]string, autoqa.HeadingLevels),
		Images:   attrs(doc.Find("img[src]"), "src"),
		Forms:    []autoqa.Form{},
		Inputs:   []autoqa.Input{},
		Buttons:  []autoqa.Button{},
		Selects:  []autoqa.Select{},
	}

	for level := 1; level <= autoqa.HeadingLevels; level++ {
		key := autoqa.HeadingKey(level)
		s.Headings[key] = texts(doc.Find(key))
	}

	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		s.Forms = append(s.Forms, autoqa.Form{
			Action: attr(sel, "action"),
			Method: attr(sel, "method"),
			ID:     attr(sel, "id"),
			Name:   attr(sel, "name"),
		})
	})

	doc.Find("input").Each(func(_ int, sel *goquery.Selection) {
		s.Inputs = append(s.Inputs, autoqa.Input{
			Type:        attr(sel, "type"),
			Name:        attr(sel, "name"),
			ID:          attr(sel, "id"),
			Placeholder: attr(sel, "placeholder"),
		})
	})

	doc.Find("button").Each(func(_ int, sel *goquery.Selection) {
		s.Buttons = append(s.Buttons, autoqa.Button{
			Text: text(sel),
			Type: attr(sel, "type"),
			ID:   attr(sel, "id"),
			Name: attr(sel, "name"),
		})
	})

	doc.Find("select").Each(func(_ int, sel *goquery.Selection) {
		s.Selects = append(s.Selects, autoqa.Select{
			Name:    attr(sel, "name"),
			ID:      attr(sel, "id"),
			Options: texts(sel.Find("option")),
		})
	})

	return s
}

// title returns the trimmed text of the first <title>, or nil when the
// document has no title or it is blank.
func title(doc *goquery.Document) *string {
	t := text(doc.Find("title").First())
	if t == "" {
		return nil
	}
	return &t
}

// attr returns a pointer to the attribute value, or nil if it is absent.
func attr(sel *goquery.Selection, name string) *string {
	v, ok := sel.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// attrs collects one attribute from every element in sel.
func attrs(sel *goquery.Selection, name string) []string {
	out := []string{}
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(name); ok {
			out = append(out, v)
		}
	})
	return out
}

// texts collects the normalized text of every element in sel.
func texts(sel *goquery.Selection) []string {
	out := []string{}
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, text(s))
	})
	return out
}

// text returns the element text with runs of whitespace collapsed.
func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
