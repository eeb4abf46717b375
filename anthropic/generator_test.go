package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

const okResponse = `{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"import os\n"},{"type":"text","text":"driver.quit()"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("posts a messages request and joins text blocks", func(t *testing.T) {
		t.Parallel()

		var (
			got     messagesRequest
			headers http.Header
			path    string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			headers = r.Header.Clone()
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, http.StatusOK, okResponse)
		}))
		defer srv.Close()

		g := anthropic.NewGenerator(autoqa.BackendConfig{
			Provider:   autoqa.ProviderClaude,
			Credential: "sk-ant-test",
			Timeout:    5 * time.Second,
			BaseURL:    srv.URL + "/",
		}, autoqa.DialectSelenium)

		text, err := g.Generate(context.Background(), "write a test")

		require.NoError(t, err)
		assert.Equal(t, "import os\ndriver.quit()", text)
		assert.Equal(t, "/v1/messages", path)
		assert.Equal(t, "sk-ant-test", headers.Get("X-Api-Key"))
		assert.NotEmpty(t, headers.Get("Anthropic-Version"))
		assert.Equal(t, anthropic.DefaultModel, got.Model)
		assert.Equal(t, 4000, got.MaxTokens)
		assert.InDelta(t, 0.2, got.Temperature, 0.001)
		require.Len(t, got.System, 1)
		assert.Contains(t, got.System[0].Text, "Senior QA Automation Engineer")
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "user", got.Messages[0].Role)
	})

	t.Run("surfaces API errors without retrying", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusInternalServerError, `{"type":"error","error":{"type":"api_error","message":"overloaded"}}`)
		}))
		defer srv.Close()

		g := anthropic.NewGenerator(autoqa.BackendConfig{
			Provider:   autoqa.ProviderClaude,
			Credential: "k",
			BaseURL:    srv.URL,
		}, autoqa.DialectSelenium)

		_, err := g.Generate(context.Background(), "write a test")

		require.Error(t, err)
		var apiErr *sdk.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("surfaces authentication errors", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
		}))
		defer srv.Close()

		g := anthropic.NewGenerator(autoqa.BackendConfig{
			Provider:   autoqa.ProviderClaude,
			Credential: "bad",
			BaseURL:    srv.URL,
		}, autoqa.DialectSelenium)

		_, err := g.Generate(context.Background(), "write a test")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("uses the configured model", func(t *testing.T) {
		t.Parallel()

		var got messagesRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, http.StatusOK, okResponse)
		}))
		defer srv.Close()

		g := anthropic.NewGenerator(autoqa.BackendConfig{
			Provider:   autoqa.ProviderClaude,
			Credential: "k",
			Model:      "claude-haiku-4-5",
			BaseURL:    srv.URL,
		}, autoqa.DialectSelenium)

		_, err := g.Generate(context.Background(), "write a test")

		require.NoError(t, err)
		assert.Equal(t, "claude-haiku-4-5", got.Model)
	})

	t.Run("rejects empty prompts", func(t *testing.T) {
		t.Parallel()

		g := anthropic.NewGenerator(autoqa.BackendConfig{Provider: autoqa.ProviderClaude, Credential: "k"}, autoqa.DialectSelenium)

		_, err := g.Generate(context.Background(), "")

		assert.Equal(t, autoqa.EINVALID, autoqa.ErrorCode(err))
	})
}
