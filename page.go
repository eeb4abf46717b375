package autoqa

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PageSummary is a read-only snapshot of a page's structure at fetch time.
// Nil string pointers mark attributes that were absent from the document.
type PageSummary struct {
	Title    *string          `json:"title"`
	Links    []string         `json:"links"`
	Headings map[string][]string `json:"headings"`
	Images   []string         `json:"images"`
	Forms    []Form           `json:"forms"`
	Inputs   []Input          `json:"inputs"`
	Buttons  []Button         `json:"buttons"`
	Selects  []Select         `json:"selects"`
}

// Form describes a <form> element.
type Form struct {
	Action *string `json:"action"`
	Method *string `json:"method"`
	ID     *string `json:"id"`
	Name   *string `json:"name"`
}

// Input describes an <input> element.
type Input struct {
	Type        *string `json:"type"`
	Name        *string `json:"name"`
	ID          *string `json:"id"`
	Placeholder *string `json:"placeholder"`
}

// Button describes a <button> element.
type Button struct {
	Text string  `json:"text"`
	Type *string `json:"type"`
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// Select describes a <select> element and the text of its options.
type Select struct {
	Name    *string  `json:"name"`
	ID      *string  `json:"id"`
	Options []string `json:"options"`
}

// HeadingLevels is the range of heading levels a PageSummary records.
const HeadingLevels = 6

// HeadingKey returns the Headings key for a heading level, such as "h1".
func HeadingKey(level int) string {
	return "h" + strconv.Itoa(level)
}

// TitleOrDefault returns the page title, or "No title found" when absent.
func (s *PageSummary) TitleOrDefault() string {
	if s.Title == nil || strings.TrimSpace(*s.Title) == "" {
		return "No title found"
	}
	return *s.Title
}

// JSON renders the summary as indented JSON.
func (s *PageSummary) JSON() (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Extractor builds a PageSummary from raw HTML.
type Extractor interface {
	// Extract parses html and summarizes its structural elements.
	// Missing optional attributes never fail the extraction.
	Extract(html string) (*PageSummary, error)
}
