package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LinkSyntaxes(t *testing.T) {
	source := []byte(`# Intro

A [standard link](other.md#Section%20One) and a [[wiki.md#Heading|alias]].
A [cite: source.md#^FR1] reference.
See ^anchor-declared

` + "```" + `
[not a link](skip.md)
` + "```" + `
`)

	doc := Parse(source, "/vault/source.md")
	links := doc.GetLinks()

	var kinds []LinkType
	for _, l := range links {
		kinds = append(kinds, l.LinkType)
	}
	assert.NotEmpty(t, links)

	for _, l := range links {
		assert.NotContains(t, l.FullMatch, "not a link", "links inside fenced code blocks must never be emitted")
	}
}

func TestParse_StandardLink(t *testing.T) {
	source := []byte("See [text](target.md#My%20Header) for detail.\n")
	doc := Parse(source, "/vault/a.md")
	require.Len(t, doc.GetLinks(), 1)

	l := doc.GetLinks()[0]
	assert.Equal(t, MarkdownLinkType, l.LinkType)
	assert.Equal(t, ScopeCrossDocument, l.Scope)
	assert.Equal(t, AnchorHeader, l.AnchorType)
	assert.Equal(t, "target.md", l.Target.Raw)
	assert.Equal(t, "My%20Header", l.Anchor)
	assert.Equal(t, 1, l.Line)
}

func TestParse_WikiLinkWithAlias(t *testing.T) {
	source := []byte("[[notes/target.md#^FR1|requirement one]]\n")
	doc := Parse(source, "/vault/a.md")
	require.Len(t, doc.GetLinks(), 1)

	l := doc.GetLinks()[0]
	assert.Equal(t, WikiLinkType, l.LinkType)
	assert.Equal(t, AnchorBlock, l.AnchorType)
	assert.Equal(t, "FR1", l.Anchor)
	assert.Equal(t, "requirement one", l.Text)
}

func TestParse_CaretDeclarationProducesAnchorAndInternalLink(t *testing.T) {
	source := []byte("FR1: System requirement. ^FR1\n")
	doc := Parse(source, "/vault/a.md")

	require.Len(t, doc.GetLinks(), 1)
	link := doc.GetLinks()[0]
	assert.Equal(t, ScopeInternal, link.Scope)
	assert.Equal(t, AnchorBlock, link.AnchorType)
	assert.Equal(t, "FR1", link.Anchor, "caret retained in FullMatch but stripped from Anchor")
	assert.Equal(t, "^FR1", link.FullMatch)

	require.Len(t, doc.GetAnchors(), 1)
	anchor := doc.GetAnchors()[0]
	assert.Equal(t, AnchorKindBlock, anchor.Kind)
	assert.Equal(t, "FR1", anchor.ID)

	assert.True(t, doc.HasAnchor(link.Anchor), "caret declaration's own link must resolve against its own anchor")
}

func TestParse_ExtractionMarkerStopBeatsDefault(t *testing.T) {
	source := []byte("[sec](file.md#Intro) %%stop-extract-link%%\n")
	doc := Parse(source, "/vault/a.md")
	require.Len(t, doc.GetLinks(), 1)

	marker := doc.GetLinks()[0].ExtractionMarker
	require.NotNil(t, marker)
	assert.Equal(t, "stop-extract-link", marker.InnerText)
}

func TestParse_UnrecognizedCommentIsNotAMarker(t *testing.T) {
	source := []byte("[sec](file.md#Intro) <!-- just a note -->\n")
	doc := Parse(source, "/vault/a.md")
	require.Len(t, doc.GetLinks(), 1)
	assert.Nil(t, doc.GetLinks()[0].ExtractionMarker)
}

func TestParse_HeadingsInSourceOrderAndAnchorsExactlyOnce(t *testing.T) {
	source := []byte("# One\nbody\n## Two\nbody\n# Three\n")
	doc := Parse(source, "/vault/a.md")

	headings := doc.GetHeadings()
	require.Len(t, headings, 3)
	assert.Equal(t, []string{"One", "Two", "Three"}, []string{headings[0].Text, headings[1].Text, headings[2].Text})

	var headerAnchors int
	seen := map[[2]int]bool{}
	for _, a := range doc.GetAnchors() {
		if a.Kind != AnchorKindHeader {
			continue
		}
		headerAnchors++
		key := [2]int{a.Line, a.Column}
		assert.False(t, seen[key], "duplicate anchor at same line/column")
		seen[key] = true
	}
	assert.Equal(t, 3, headerAnchors)
}

func TestParse_HeaderAnchorHasBothRawAndEncodedForms(t *testing.T) {
	source := []byte("# My Header\n")
	doc := Parse(source, "/vault/a.md")
	require.Len(t, doc.GetAnchors(), 1)

	a := doc.GetAnchors()[0]
	assert.True(t, doc.HasAnchor(a.ID))
	assert.True(t, doc.HasAnchor(a.URLEncodedID))
	assert.Equal(t, "My%20Header", a.URLEncodedID)
}
