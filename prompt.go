package autoqa

import (
	"fmt"
	"strings"
)

// MaxSummaryBytes bounds the page summary JSON embedded in a prompt.
const MaxSummaryBytes = 2000

// SystemInstruction returns the system prompt for generating d scripts.
func SystemInstruction(d *Dialect) string {
	return fmt.Sprintf("You are a Senior QA Automation Engineer with 10+ years of experience in %s. "+
		"Your job is to generate executable test scripts: no markdown, no explanations, only clean code.", d.Framework)
}

// BuildPrompt builds the user prompt asking for a d test script for the page at url.
func BuildPrompt(url string, summary *PageSummary, d *Dialect) (string, error) {
	data, err := summary.JSON()
	if err != nil {
		return "", err
	}
	if len(data) > MaxSummaryBytes {
		data = Preview(data, MaxSummaryBytes) + "..."
	}

	var sb strings.Builder
	sb.WriteString("You are a strict code generator. Your output must contain ONLY executable code, ")
	sb.WriteString("with no explanations, comments, or markdown fences.\n\n")
	fmt.Fprintf(&sb, "Generate %s test code for the following parsed HTML data.\n\n", d.Framework)
	fmt.Fprintf(&sb, "URL: %s\n\n", url)
	fmt.Fprintf(&sb, "Parsed Data:\n%s\n\n", data)
	sb.WriteString("Instructions:\n")
	for _, instruction := range d.Instructions {
		fmt.Fprintf(&sb, "- %s\n", instruction)
	}
	sb.WriteString("- Add tests for JavaScript-based web elements as well.\n")
	sb.WriteString("- Create 30 sequential test cases that interact with the elements (titles, headings, images, links, forms, inputs, buttons, and selects).\n")
	sb.WriteString("- Each test should include realistic user actions (typing, clicking, submitting, selecting options) with short waits between actions.\n")
	sb.WriteString("- Log each test as 'Test X Passed' or 'Test X Failed' directly in the console.\n")
	fmt.Fprintf(&sb, "- Include '%s' at the end of the script.\n", d.TerminalCall)
	sb.WriteString("- Do NOT include markdown (```) or any descriptive text before or after the code.\n")
	sb.WriteString("- The entire output must be syntactically valid and ready to run as-is.\n")
	return sb.String(), nil
}
