package autoqa

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fenceLine matches a markdown code fence delimiter, with or without a language tag.
var fenceLine = regexp.MustCompile("^[ \t]*```[\\w.+#-]*[ \t]*$")

// wordEnd follows a denylisted word at the start of a prose line. It rejects
// code such as "okay = True" or "replace(x)" that starts with the same word.
const wordEnd = `(?:[,!:]|\.(?:\s|$)|\s+\w|$)`

// preambleLines match conversational lines models put before code.
// The list is a best-effort denylist; it cannot cover every phrasing.
var preambleLines = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(sure|certainly|absolutely|of course|okay|alright|great)` + wordEnd),
	regexp.MustCompile(`(?i)^here(['’]s| is| are)\b`),
	regexp.MustCompile(`(?i)^(below|the following) (is|are)\b`),
	regexp.MustCompile(`(?i)^(i['’]m sorry|i am sorry|sorry|apologies|my apologies|i apologi[sz]e)` + wordEnd),
	regexp.MustCompile(`(?i)^(as an ai|please note|note:)`),
	regexp.MustCompile(`(?i)^(this|the) (script|code|test)s?\b.*:\s*$`),
}

// epilogueLines match conversational lines models put after code.
var epilogueLines = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(hope (this|that|it) helps|let me know|feel free)\b`),
	regexp.MustCompile(`(?i)^(please )?(replace|make sure|ensure)\s+\w`),
	regexp.MustCompile(`(?i)^(this|the above) (script|code)\s+\w`),
	regexp.MustCompile(`(?i)^(note|notes|explanation|key points)\s*:`),
	regexp.MustCompile(`(?i)^(sorry|i apologi[sz]e)` + wordEnd),
	regexp.MustCompile(`(?i)^(to run|remember to)\b`),
}

// line is the byte range of one line of text, excluding its newline.
type line struct {
	start, end int
}

func splitLines(s string) []line {
	var lines []line
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, line{start, i})
			start = i + 1
		}
	}
	return append(lines, line{start, len(s)})
}

// StripWrapping removes markdown fences and conversational wrapping from
// generated text. When the text contains fenced blocks, the body of the first
// block with a line matching start is kept. When no block matches but code
// outside the fences does, the whole text is kept minus the fence lines at
// its ends. Otherwise the first non-blank block is kept.
// Leading preamble and trailing epilogue lines are then removed until none
// remain. The result is always a contiguous substring of text, and applying
// StripWrapping to its own output returns it unchanged.
func StripWrapping(text string, start *regexp.Regexp) string {
	return stripProse(selectFencedBlock(text, start))
}

// selectFencedBlock returns the chosen fenced block body, or text unchanged
// when it contains no fence delimiters. An unclosed fence runs to the end.
func selectFencedBlock(text string, start *regexp.Regexp) string {
	lines := splitLines(text)

	var bodies []string
	for i := 0; i < len(lines); i++ {
		if !isFence(text, lines[i]) {
			continue
		}

		j := i + 1
		for j < len(lines) && !isFence(text, lines[j]) {
			j++
		}

		body := ""
		if j > i+1 {
			body = text[lines[i+1].start:lines[j-1].end]
		}
		bodies = append(bodies, body)
		i = j
	}

	if len(bodies) == 0 {
		return text
	}

	if start != nil {
		for _, body := range bodies {
			if start.MatchString(body) {
				return body
			}
		}
		if start.MatchString(text) {
			return trimFences(text)
		}
	}
	for _, body := range bodies {
		if strings.TrimSpace(body) != "" {
			return body
		}
	}
	return ""
}

func isFence(text string, l line) bool {
	return fenceLine.MatchString(text[l.start:l.end])
}

// trimFences drops fence delimiters and blank lines from both ends of text.
func trimFences(text string) string {
	for {
		lines := splitLines(text)
		first, last := lines[0], lines[len(lines)-1]

		switch {
		case len(lines) == 1:
			if isFence(text, first) {
				return ""
			}
			return text
		case isFence(text, first) || isBlank(text, first):
			text = text[lines[1].start:]
		case isFence(text, last) || isBlank(text, last):
			text = text[:lines[len(lines)-2].end]
		default:
			return text
		}
	}
}

func isBlank(text string, l line) bool {
	return strings.TrimSpace(text[l.start:l.end]) == ""
}

// stripProse drops blank and denylisted lines from both ends of text.
func stripProse(text string) string {
	for {
		lines := splitLines(text)
		first, last := lines[0], lines[len(lines)-1]

		switch {
		case len(lines) > 1 && isProse(text[first.start:first.end], preambleLines):
			text = text[lines[1].start:]
		case len(lines) > 1 && isProse(text[last.start:last.end], epilogueLines):
			text = text[:lines[len(lines)-2].end]
		default:
			trimmed := strings.TrimRight(text, " \t\r\n")
			if len(lines) == 1 && (isProse(trimmed, preambleLines) || isProse(trimmed, epilogueLines)) {
				return ""
			}
			return trimmed
		}
	}
}

func isProse(s string, patterns []*regexp.Regexp) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// AnchorStart discards everything before the first match of pattern.
// It reports false, leaving text unchanged, when nothing matches.
func AnchorStart(text string, pattern *regexp.Regexp) (string, bool) {
	if pattern == nil {
		return text, false
	}
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return text[loc[0]:], true
}

// AnchorEnd truncates text immediately after the first occurrence of call.
// It reports false, leaving text unchanged, when call does not occur.
func AnchorEnd(text string, call string) (string, bool) {
	if call == "" {
		return text, false
	}
	i := strings.Index(text, call)
	if i < 0 {
		return text, false
	}
	return text[:i+len(call)], true
}

// Sanitizer converts raw generated text into a bounded, executable script.
// Stages run in a fixed order: wrapping removal, start anchoring, terminal
// anchoring, then style normalization.
type Sanitizer struct {
	Dialect *Dialect

	// Formatter normalizes the final text. When nil, only trailing
	// whitespace is trimmed.
	Formatter Formatter

	// Logger receives a warning for unanchored generations. Optional.
	Logger *slog.Logger
}

// Sanitize runs the pipeline over raw. It returns EMALFORMED when nothing
// is left after stripping or when the formatter rejects the text.
func (s *Sanitizer) Sanitize(raw string) (*Script, error) {
	d := s.Dialect
	if d == nil {
		d = DialectSelenium
	}

	text := StripWrapping(raw, d.StartPattern)
	text, startOK := AnchorStart(text, d.StartPattern)
	text, endOK := AnchorEnd(text, d.TerminalCall)

	if strings.TrimSpace(text) == "" {
		return nil, malformed(raw, "no code left after stripping")
	}

	formatted := strings.TrimRight(text, " \t\r\n")
	if s.Formatter != nil {
		var err error
		formatted, err = s.Formatter.Format(text)
		if err != nil {
			if ErrorCode(err) == EMALFORMED {
				return nil, malformed(raw, ErrorMessage(err))
			}
			return nil, err
		}
		formatted = strings.TrimRight(formatted, " \t\r\n")
	}
	if strings.TrimSpace(formatted) == "" {
		return nil, malformed(raw, "formatter produced no code")
	}

	script := &Script{
		Text:          formatted,
		StartAnchored: startOK,
		Terminated:    endOK,
		RawSize:       len(raw),
	}

	if script.Unanchored() && s.Logger != nil {
		s.Logger.Warn("unanchored generation",
			"dialect", d.Name,
			"start", startOK,
			"terminated", endOK,
		)
	}

	return script, nil
}

const diagnosticPrefixLen = 80

func malformed(raw, reason string) *Error {
	return Errorf(EMALFORMED, "malformed generation: %s (raw %d bytes, prefix %q)",
		reason, len(raw), Preview(raw, diagnosticPrefixLen))
}

// Preview returns at most n bytes of s without splitting a UTF-8 sequence.
func Preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
