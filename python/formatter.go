// Package python provides a built-in layout normalizer for generated Python scripts.
package python

import (
	"strings"

	"github.com/fwojciec/autoqa"
)

// DefaultIndentWidth is the number of spaces a leading tab expands to.
const DefaultIndentWidth = 4

// maxBlankLines is the longest run of blank lines kept between statements.
const maxBlankLines = 2

// Ensure Formatter implements autoqa.Formatter at compile time.
var _ autoqa.Formatter = (*Formatter)(nil)

// Formatter normalizes Python source layout without changing any token.
// It tokenizes just enough to know where strings, comments and brackets
// are, and rejects text that cannot be a complete Python module.
type Formatter struct {
	indentWidth int
}

// NewFormatter creates a new Formatter.
func NewFormatter() *Formatter {
	return &Formatter{indentWidth: DefaultIndentWidth}
}

// lineState records how a line relates to string literals.
type lineState struct {
	// startsInString is set when the line begins inside a multi-line string.
	startsInString bool

	// endsInString is set when the line's newline belongs to a string.
	endsInString bool
}

type opener struct {
	char byte
	line int
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// Format returns src with normalized line endings, indentation and blank
// lines. Indentation shared by every code line is removed first, so a
// uniformly indented script is accepted. Returns EMALFORMED for unbalanced
// brackets, unterminated strings, or a first statement indented deeper
// than a later one.
func (f *Formatter) Format(src string) (string, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	lines := strings.Split(src, "\n")
	states, err := scan(lines)
	if err != nil {
		return "", err
	}

	for i, text := range lines {
		if states[i].startsInString {
			continue
		}
		text = f.expandIndent(text)
		if !states[i].endsInString {
			text = strings.TrimRight(text, " \t\f")
		}
		lines[i] = text
	}

	dedent(lines, states)

	out := make([]string, 0, len(lines))
	blanks := 0
	for i, text := range lines {
		if !states[i].startsInString && text == "" {
			blanks++
			continue
		}
		if len(out) > 0 {
			for n := 0; n < min(blanks, maxBlankLines); n++ {
				out = append(out, "")
			}
		}
		blanks = 0
		out = append(out, text)
	}

	if len(out) == 0 {
		return "", autoqa.Errorf(autoqa.EMALFORMED, "no statements")
	}
	if out[0] != strings.TrimLeft(out[0], " \t") {
		return "", autoqa.Errorf(autoqa.EMALFORMED, "line 1: unexpected indent")
	}

	return strings.Join(out, "\n"), nil
}

// expandIndent replaces tabs in leading whitespace with spaces.
func (f *Formatter) expandIndent(text string) string {
	n := 0
	for n < len(text) && (text[n] == ' ' || text[n] == '\t') {
		n++
	}
	if !strings.Contains(text[:n], "\t") {
		return text
	}
	indent := strings.ReplaceAll(text[:n], "\t", strings.Repeat(" ", f.indentWidth))
	return indent + text[n:]
}

// dedent removes the indentation shared by every code line.
func dedent(lines []string, states []lineState) {
	common := -1
	for i, text := range lines {
		if states[i].startsInString || text == "" {
			continue
		}
		n := len(text) - len(strings.TrimLeft(text, " "))
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return
	}
	for i, text := range lines {
		if states[i].startsInString || text == "" {
			continue
		}
		lines[i] = text[common:]
	}
}

// scan walks the source tracking string literals, comments and brackets.
func scan(lines []string) ([]lineState, error) {
	states := make([]lineState, len(lines))

	var (
		quote     byte // opening quote character, 0 outside strings
		triple    bool
		quoteLine int
		stack     []opener
	)

	for n, text := range lines {
		states[n].startsInString = quote != 0
		escapedNewline := false

		for i := 0; i < len(text); i++ {
			c := text[i]

			if quote != 0 {
				switch {
				case c == '\\':
					if i == len(text)-1 {
						escapedNewline = true
					}
					i++
				case c == quote && triple:
					if strings.HasPrefix(text[i:], strings.Repeat(string(quote), 3)) {
						quote = 0
						i += 2
					}
				case c == quote:
					quote = 0
				}
				continue
			}

			switch c {
			case '#':
				i = len(text)
			case '\'', '"':
				quote = c
				quoteLine = n + 1
				triple = strings.HasPrefix(text[i:], strings.Repeat(string(c), 3))
				if triple {
					i += 2
				}
			case '(', '[', '{':
				stack = append(stack, opener{char: c, line: n + 1})
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1].char != closers[c] {
					return nil, autoqa.Errorf(autoqa.EMALFORMED, "line %d: unmatched '%c'", n+1, c)
				}
				stack = stack[:len(stack)-1]
			}
		}

		if quote != 0 && !triple && !escapedNewline {
			return nil, autoqa.Errorf(autoqa.EMALFORMED, "line %d: unterminated string literal", n+1)
		}
		states[n].endsInString = quote != 0
	}

	if quote != 0 {
		return nil, autoqa.Errorf(autoqa.EMALFORMED, "line %d: unterminated triple-quoted string", quoteLine)
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, autoqa.Errorf(autoqa.EMALFORMED, "line %d: '%c' was never closed", top.line, top.char)
	}

	return states, nil
}
