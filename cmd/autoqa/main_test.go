package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/autoqa"
	main "github.com/fwojciec/autoqa/cmd/autoqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><head><title>Login</title></head><body>
<h1>Welcome</h1>
<form id="login"><input type="text" name="user"><button type="submit">Sign in</button></form>
</body></html>`

const chatReply = "Here is the code:\n```python\nfrom selenium import webdriver\ndriver = webdriver.Chrome()\nprint('Test 1 Passed')\ndriver.quit()\n```\nHope this helps!"

func newMain() *main.Main {
	m := main.NewMain()
	m.ConfigPaths = nil
	m.Stdin = strings.NewReader("")
	return m
}

// newSite serves a page at / and an OpenAI-compatible chat endpoint under /v1.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "llama3.1",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": chatReply},
				"finish_reason": "stop",
			}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "autoqa")
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Contains(t, stdout.String(), "generate")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(), []string{}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_UnknownProvider(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(),
		[]string{"generate", "https://example.com", "--provider", "llama-from-space", "--no-history"},
		&stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, autoqa.EINVALID, autoqa.ErrorCode(err))
}

func TestMain_Run_MissingCredentialHintsAtEnv(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(),
		[]string{"generate", "https://example.com", "--provider", "claude", "--anthropic-key=", "--no-history"},
		&stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, autoqa.EINVALID, autoqa.ErrorCode(err))
	assert.Contains(t, stderr.String(), "ANTHROPIC_API_KEY")
}

func TestMain_Run_Extract(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(), []string{"--quiet", "extract", srv.URL}, &stdout, &stderr)

	require.NoError(t, err)

	var summary autoqa.PageSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.NotNil(t, summary.Title)
	assert.Equal(t, "Login", *summary.Title)
	assert.Equal(t, []string{"Welcome"}, summary.Headings["h1"])
	require.Len(t, summary.Buttons, 1)
	assert.Equal(t, "Sign in", summary.Buttons[0].Text)
}

func TestMain_Run_ExtractRejectsNonHTTPURL(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(), []string{"--quiet", "extract", "file:///etc/passwd"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, autoqa.EINVALID, autoqa.ErrorCode(err))
}

func TestMain_Run_GenerateThenHistory(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "generated_test.py")
	db := filepath.Join(dir, "autoqa.db")

	var stdout, stderr bytes.Buffer
	err := newMain().Run(context.Background(), []string{
		"--quiet", "--db", db,
		"generate", srv.URL,
		"--provider", "ollama",
		"--base-url", srv.URL + "/v1",
		"--output", output,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "from selenium import webdriver\ndriver = webdriver.Chrome()\nprint('Test 1 Passed')\ndriver.quit()\n", string(data))
	assert.Contains(t, stdout.String(), "Parsed data:")
	assert.Contains(t, stdout.String(), "written to "+output)
	assert.Contains(t, stdout.String(), "driver.quit()")

	stdout.Reset()
	err = newMain().Run(context.Background(), []string{"--db", db, "history"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "ollama")
	assert.Contains(t, stdout.String(), srv.URL)
	assert.Contains(t, stdout.String(), "generated")

	stdout.Reset()
	err = newMain().Run(context.Background(), []string{"--db", db, "stats"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "PROVIDER")
	assert.Contains(t, stdout.String(), "ollama")
}

func TestMain_Run_SanitizeStdin(t *testing.T) {
	t.Parallel()

	m := newMain()
	m.Stdin = strings.NewReader(chatReply)
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--quiet", "sanitize"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, "from selenium import webdriver\ndriver = webdriver.Chrome()\nprint('Test 1 Passed')\ndriver.quit()\n", stdout.String())
}

func TestMain_Run_SanitizeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte("Sure!\nfrom playwright.sync_api import sync_playwright\nbrowser.close()\nextra"), 0o644))
	var stdout, stderr bytes.Buffer

	err := newMain().Run(context.Background(), []string{"--quiet", "sanitize", "--dialect", "playwright", path}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, "from playwright.sync_api import sync_playwright\nbrowser.close()\n", stdout.String())
}

func TestMain_Run_SanitizeMalformed(t *testing.T) {
	t.Parallel()

	m := newMain()
	m.Stdin = strings.NewReader("```python\n```\nHope this helps!")
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--quiet", "sanitize"}, &stdout, &stderr)

	require.Error(t, err)
	assert.Equal(t, autoqa.EMALFORMED, autoqa.ErrorCode(err))
	assert.Contains(t, stderr.String(), "malformed generation")
	assert.Empty(t, stdout.String())
}
