package validator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeweave/citeweave/internal/cache"
	"github.com/citeweave/citeweave/internal/markdown"
	"github.com/citeweave/citeweave/internal/resolver"
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

func newValidator(t *testing.T, root string) *Validator {
	t.Helper()
	res, err := resolver.New(root)
	require.NoError(t, err)
	return New(res, cache.NewParsedFileCache())
}

func TestValidate_ShortNameRescueEmitsWarning(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/source.md":                 "[X](../wrong/warning-test-target.md#Test%20Anchor)\n",
		"subdir/warning-test-target.md": "## Test Anchor\nbody\n",
	})

	v := newValidator(t, root)
	doc := markdown.Parse([]byte("[X](../wrong/warning-test-target.md#Test%20Anchor)\n"), filepath.Join(root, "a", "source.md"))

	result := v.Validate(doc)
	require.Len(t, result.Links, 1)

	link := result.Links[0]
	require.NotNil(t, link.Validation)
	assert.Equal(t, markdown.StatusWarning, link.Validation.Status)
	require.NotNil(t, link.Validation.PathConversion)
	assert.Equal(t, "../wrong/warning-test-target.md", link.Validation.PathConversion.Original)
	assert.Equal(t, "subdir/warning-test-target.md", link.Validation.PathConversion.Recommended)
}

func TestValidate_FileNotFoundSetsErrorWithSuggestion(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/source.md":   "",
		"other/real.md": "",
	})

	v := newValidator(t, root)
	doc := markdown.Parse([]byte("[X](reel.md)\n"), filepath.Join(root, "a", "source.md"))

	result := v.Validate(doc)
	require.Len(t, result.Links, 1)
	assert.Equal(t, markdown.StatusError, result.Links[0].Validation.Status)
	assert.Equal(t, "real.md", result.Links[0].Validation.Suggestion)
}

func TestValidate_AnchorNotFoundInTargetFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/source.md": "",
		"a/target.md": "# Real Header\n",
	})

	v := newValidator(t, root)
	doc := markdown.Parse([]byte("[X](target.md#Missing%20Header)\n"), filepath.Join(root, "a", "source.md"))

	result := v.Validate(doc)
	require.Len(t, result.Links, 1)
	assert.Equal(t, markdown.StatusError, result.Links[0].Validation.Status)
	assert.Contains(t, result.Links[0].Validation.Error, "anchor not found")
}

func TestValidate_InternalAnchorValid(t *testing.T) {
	source := []byte("# Header One\n\nSee [Header One](#Header%20One) above.\n")
	doc := markdown.Parse(source, "/vault/a.md")

	v := newValidator(t, t.TempDir())
	result := v.Validate(doc)

	require.Len(t, result.Links, 1)
	assert.Equal(t, markdown.StatusValid, result.Links[0].Validation.Status)
}

func TestValidate_InternalBlockAnchorValid(t *testing.T) {
	source := []byte("See [the requirement](#^FR1) below.\n\nFR1: must validate links. ^FR1\n")
	doc := markdown.Parse(source, "/vault/a.md")

	v := newValidator(t, t.TempDir())
	result := v.Validate(doc)

	require.Len(t, result.Links, 2)
	for _, link := range result.Links {
		assert.Equal(t, markdown.StatusValid, link.Validation.Status, "link %q: %+v", link.FullMatch, link.Validation)
	}
}

func TestValidate_IdempotentSecondCallOverwritesOnlyValidation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/source.md": "",
		"a/target.md": "# Header\n",
	})

	v := newValidator(t, root)
	doc := markdown.Parse([]byte("[X](target.md#Header)\n"), filepath.Join(root, "a", "source.md"))

	first := v.Validate(doc)
	second := v.Validate(doc)

	require.Len(t, first.Links, 1)
	require.Len(t, second.Links, 1)
	assert.Equal(t, first.Links[0].Validation.Status, second.Links[0].Validation.Status)
	assert.Equal(t, first.Links[0].FullMatch, second.Links[0].FullMatch)
}
