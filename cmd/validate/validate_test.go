package validate

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestValidateCommand_AllLinksValidExitsZero(t *testing.T) {
	root := writeTree(t, map[string]string{
		"source.md": "[link](target.md#Header)\n",
		"target.md": "# Header\nbody\n",
	})

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{filepath.Join(root, "source.md"), "--scope", root})

	captureStdout(t, func() {
		err := cmd.Execute()
		assert.NoError(t, err)
	})
}

func TestValidateCommand_BrokenLinkExitsWithError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"source.md": "[broken](missing.md)\n",
	})

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{filepath.Join(root, "source.md"), "--scope", root, "--format", "text"})

	out := captureStdout(t, func() {
		err := cmd.Execute()
		assert.Error(t, err)
	})

	assert.Contains(t, out, "error")
}

func TestValidateCommand_LinesFilterRestrictsReport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"source.md": "[a](target.md#Header)\n\n\n[b](target.md#Header)\n",
		"target.md": "# Header\nbody\n",
	})

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{filepath.Join(root, "source.md"), "--scope", root, "--lines", "1-1", "--format", "json"})

	out := captureStdout(t, func() {
		err := cmd.Execute()
		assert.NoError(t, err)
	})

	assert.Contains(t, out, `"total": 1`)
}
