// Package fs persists sanitized scripts to the local filesystem.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/autoqa"
)

// Ensure Writer implements autoqa.ScriptWriter at compile time.
var _ autoqa.ScriptWriter = (*Writer)(nil)

// Writer writes scripts to a single fixed path, replacing prior contents.
type Writer struct {
	path string
}

// NewWriter creates a new Writer for the artifact at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the artifact path.
func (w *Writer) Path() string {
	return w.path
}

// WriteScript writes script.Text followed by one newline. The content is
// written to a temporary file in the same directory and renamed over the
// artifact, so readers never observe a partially written script.
func (w *Writer) WriteScript(ctx context.Context, script *autoqa.Script) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if w.path == "" {
		return "", autoqa.Errorf(autoqa.EINVALID, "artifact path required")
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(script.Text + "\n"); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return "", err
	}

	return w.path, nil
}
