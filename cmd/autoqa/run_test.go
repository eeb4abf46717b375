package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/autoqa"
	main "github.com/fwojciec/autoqa/cmd/autoqa"
	"github.com/fwojciec/autoqa/goquery"
	"github.com/fwojciec/autoqa/mock"
	"github.com/fwojciec/autoqa/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(reply string, runner autoqa.Runner) *pipeline.Pipeline {
	backends := autoqa.NewDispatcher()
	backends.Register(autoqa.ProviderClaude, &mock.Generator{
		GenerateFn: func(context.Context, string) (string, error) {
			return reply, nil
		},
	})

	return &pipeline.Pipeline{
		Fetcher: &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return loginPage, nil
			},
		},
		Extractor: goquery.NewExtractor(),
		Backends:  backends,
		Sanitizer: &autoqa.Sanitizer{Dialect: autoqa.DialectSelenium},
		Writer: &mock.ScriptWriter{
			WriteScriptFn: func(context.Context, *autoqa.Script) (string, error) {
				return "generated_test.py", nil
			},
		},
		Runner: runner,
	}
}

func TestRunCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the script preview and a passing summary", func(t *testing.T) {
		t.Parallel()

		runner := &mock.Runner{
			RunFn: func(context.Context, string) (*autoqa.RunResult, error) {
				return &autoqa.RunResult{ExitCode: 0, Passed: 3, Duration: 2 * time.Second}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Provider: autoqa.ProviderClaude,
			Pipeline: newTestPipeline(chatReply, runner),
		}

		err := (&main.RunCmd{URL: "https://example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Parsed data:")
		assert.Contains(t, stdout.String(), "from selenium import webdriver")
		assert.Contains(t, stdout.String(), "PASS")
		assert.Contains(t, stdout.String(), "3 passed, 0 failed (exit 0)")
	})

	t.Run("reports failing tests", func(t *testing.T) {
		t.Parallel()

		runner := &mock.Runner{
			RunFn: func(context.Context, string) (*autoqa.RunResult, error) {
				return &autoqa.RunResult{ExitCode: 1, Passed: 2, Failed: 1}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Provider: autoqa.ProviderClaude,
			Pipeline: newTestPipeline(chatReply, runner),
		}

		err := (&main.RunCmd{URL: "https://example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "FAIL")
		assert.Contains(t, stdout.String(), "2 passed, 1 failed (exit 1)")
	})

	t.Run("prints the error for malformed generations", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Provider: autoqa.ProviderClaude,
			Pipeline: newTestPipeline("Sorry, I can't help with that.", nil),
		}

		err := (&main.RunCmd{URL: "https://example.com"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, autoqa.EMALFORMED, autoqa.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: malformed generation")
	})
}

func TestGenerateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("does not execute the script", func(t *testing.T) {
		t.Parallel()

		runner := &mock.Runner{
			RunFn: func(context.Context, string) (*autoqa.RunResult, error) {
				t.Error("runner must not be called")
				return &autoqa.RunResult{}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Provider: autoqa.ProviderClaude,
			Pipeline: newTestPipeline(chatReply, runner),
		}

		err := (&main.GenerateCmd{URL: "https://example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "written to generated_test.py")
		assert.NotContains(t, stdout.String(), "PASS")
	})

	t.Run("warns about unanchored scripts", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Provider: autoqa.ProviderClaude,
			Pipeline: newTestPipeline("x = 1", nil),
		}

		err := (&main.GenerateCmd{URL: "https://example.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "start anchored: false, terminated: false")
	})
}
