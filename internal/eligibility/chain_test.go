package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/citeweave/citeweave/internal/markdown"
)

func TestDecide_StopMarkerBeatsSectionDefault(t *testing.T) {
	link := &markdown.Link{
		AnchorType:       markdown.AnchorHeader,
		ExtractionMarker: &markdown.ExtractionMarker{InnerText: "stop-extract-link"},
	}

	d := Default().Decide(link, Flags{FullFiles: true})
	assert.False(t, d.Eligible)
}

func TestDecide_ForceMarkerOverridesFullFileDefault(t *testing.T) {
	link := &markdown.Link{
		AnchorType:       markdown.AnchorNone,
		ExtractionMarker: &markdown.ExtractionMarker{InnerText: "force-extract"},
	}

	d := Default().Decide(link, Flags{FullFiles: false})
	assert.True(t, d.Eligible)
	assert.Contains(t, d.Reason, "force-extract")
}

func TestDecide_SectionLinkEligibleByDefault(t *testing.T) {
	link := &markdown.Link{AnchorType: markdown.AnchorHeader}
	d := Default().Decide(link, Flags{FullFiles: false})
	assert.True(t, d.Eligible)

	link = &markdown.Link{AnchorType: markdown.AnchorBlock}
	d = Default().Decide(link, Flags{FullFiles: false})
	assert.True(t, d.Eligible)
}

func TestDecide_WholeFileRequiresFullFilesFlag(t *testing.T) {
	link := &markdown.Link{AnchorType: markdown.AnchorNone}

	d := Default().Decide(link, Flags{FullFiles: false})
	assert.False(t, d.Eligible)

	d = Default().Decide(link, Flags{FullFiles: true})
	assert.True(t, d.Eligible)
}

func TestDecide_ChainIsTotal(t *testing.T) {
	links := []*markdown.Link{
		{AnchorType: markdown.AnchorNone},
		{AnchorType: markdown.AnchorHeader},
		{AnchorType: markdown.AnchorBlock},
		{AnchorType: markdown.AnchorNone, ExtractionMarker: &markdown.ExtractionMarker{InnerText: "force-extract"}},
		{AnchorType: markdown.AnchorHeader, ExtractionMarker: &markdown.ExtractionMarker{InnerText: "stop-extract"}},
	}

	chain := Default()
	for _, l := range links {
		d := chain.Decide(l, Flags{})
		assert.NotEmpty(t, d.Reason, "every link must receive a non-null decision")
	}
}
