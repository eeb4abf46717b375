package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/autoqa"
)

// Run executes the sanitize command.
func (c *SanitizeCmd) Run(deps *Dependencies) error {
	raw, err := c.read(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	script, err := deps.Sanitizer.Sanitize(raw)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", autoqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, script.Text)
	return nil
}

func (c *SanitizeCmd) read(stdin io.Reader) (string, error) {
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", c.File, err)
		}
		return string(data), nil
	}
	if stdin == nil {
		return "", autoqa.Errorf(autoqa.EINVALID, "no input: pass a file or pipe text to stdin")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
