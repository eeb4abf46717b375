package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate_ReturnsErrorWhenPromptEmpty(t *testing.T) {
	t.Parallel()

	g := gemini.NewGenerator(nil, autoqa.DialectSelenium) // nil client ok for this test

	_, err := g.Generate(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, autoqa.EINVALID, autoqa.ErrorCode(err))
	assert.Contains(t, autoqa.ErrorMessage(err), "prompt required")
}

func TestGenerator_Generate_ReturnsCandidateText(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"import os\ndriver.quit()"}]}}]}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, autoqa.BackendConfig{
		Provider:   autoqa.ProviderGemini,
		Credential: "test-key",
		Timeout:    5 * time.Second,
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)

	g := gemini.NewGenerator(client, autoqa.DialectSelenium, gemini.WithModel("gemini-test"))

	text, err := g.Generate(ctx, "write a test")

	require.NoError(t, err)
	assert.Equal(t, "import os\ndriver.quit()", text)
	assert.True(t, strings.HasSuffix(gotPath, "/models/gemini-test:generateContent"), gotPath)
	assert.Contains(t, gotBody, "systemInstruction")
}

func TestGenerator_Generate_PropagatesAPIErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, autoqa.BackendConfig{
		Provider:   autoqa.ProviderGemini,
		Credential: "test-key",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)

	_, err = gemini.NewGenerator(client, autoqa.DialectSelenium).Generate(ctx, "write a test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(autoqa.DialectSelenium)

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "Senior QA Automation Engineer")
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "Selenium")
}

func TestBuildConfig_SetsLowTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(autoqa.DialectSelenium)

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
}
