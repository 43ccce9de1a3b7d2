package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSection_StopsAtNextHeadingOfEqualOrLesserDepth(t *testing.T) {
	source := []byte("# Title\n\n## Section One\ncontent one\n\n## Section Two\ncontent two\n")
	doc := Parse(source, "/vault/a.md")

	section, ok := doc.ExtractSection("Section One")
	require.True(t, ok)
	assert.Contains(t, section, "## Section One")
	assert.Contains(t, section, "content one")
	assert.NotContains(t, section, "Section Two")
}

func TestExtractSection_NestedSubheadingsStayInSection(t *testing.T) {
	source := []byte("## Parent\nintro\n### Child\nchild body\n## Sibling\nsibling body\n")
	doc := Parse(source, "/vault/a.md")

	section, ok := doc.ExtractSection("Parent")
	require.True(t, ok)
	assert.Contains(t, section, "Child")
	assert.Contains(t, section, "child body")
	assert.NotContains(t, section, "Sibling")
}

func TestExtractSection_MissingHeadingReturnsFalse(t *testing.T) {
	doc := Parse([]byte("# Title\n"), "/vault/a.md")
	_, ok := doc.ExtractSection("Nonexistent")
	assert.False(t, ok)
}

func TestExtractBlock_ReturnsExactDeclarationLine(t *testing.T) {
	source := []byte("Some preamble.\n\nFR1: System requirement. ^FR1\n\nMore text.\n")
	doc := Parse(source, "/vault/a.md")

	block, ok := doc.ExtractBlock("FR1")
	require.True(t, ok)
	assert.Equal(t, "FR1: System requirement. ^FR1", block)
}

func TestExtractFullContent_StripsLeadingFrontmatter(t *testing.T) {
	source := []byte("---\ntitle: Doc\n---\n# Body\ntext\n")
	doc := Parse(source, "/vault/a.md")

	content := doc.ExtractFullContent()
	assert.NotContains(t, content, "title: Doc")
	assert.Contains(t, content, "# Body")
}

func TestExtractFullContent_NoFrontmatterReturnsWholeBody(t *testing.T) {
	source := []byte("# Body\ntext\n")
	doc := Parse(source, "/vault/a.md")
	assert.Equal(t, "# Body\ntext\n", doc.ExtractFullContent())
}

func TestExtractContent_Idempotent(t *testing.T) {
	source := []byte("## Section\nbody text\n")
	doc := Parse(source, "/vault/a.md")

	first, ok1 := doc.ExtractSection("Section")
	second, ok2 := doc.ExtractSection("Section")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}
