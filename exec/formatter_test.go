//go:build !windows

package exec_test

import (
	"testing"

	"github.com/fwojciec/autoqa"
	"github.com/fwojciec/autoqa/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Format(t *testing.T) {
	t.Parallel()

	t.Run("returns the formatter output", func(t *testing.T) {
		t.Parallel()

		got, err := exec.NewFormatter("tr", "a-z", "A-Z").Format("import os\n")

		require.NoError(t, err)
		assert.Equal(t, "IMPORT OS\n", got)
	})

	t.Run("reports rejection as EMALFORMED", func(t *testing.T) {
		t.Parallel()

		f := exec.NewFormatter("sh", "-c", "echo 'error: cannot parse line 2' >&2; echo detail >&2; exit 123")

		_, err := f.Format("import os\nprint(")

		require.Error(t, err)
		assert.Equal(t, autoqa.EMALFORMED, autoqa.ErrorCode(err))
		assert.Equal(t, "sh: error: cannot parse line 2", autoqa.ErrorMessage(err))
	})

	t.Run("reports a missing binary as EEXEC", func(t *testing.T) {
		t.Parallel()

		_, err := exec.NewFormatter("no-such-formatter-autoqa").Format("import os")

		require.Error(t, err)
		assert.Equal(t, autoqa.EEXEC, autoqa.ErrorCode(err))
	})
}

func TestNewNamedFormatter(t *testing.T) {
	t.Parallel()

	for name := range exec.FormatterCommands {
		f, err := exec.NewNamedFormatter(name)
		require.NoError(t, err)
		assert.NotNil(t, f)
	}

	_, err := exec.NewNamedFormatter("yapf")
	assert.Equal(t, autoqa.ENOTFOUND, autoqa.ErrorCode(err))
}
