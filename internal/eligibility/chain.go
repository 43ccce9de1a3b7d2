// Package eligibility decides, for each validated cross-document link,
// whether it should be extracted — via a total, ordered priority chain
// of strategies.
package eligibility

import "github.com/citeweave/citeweave/internal/markdown"

// Decision is a strategy's verdict: whether the link is eligible for
// extraction, and why.
type Decision struct {
	Eligible bool
	Reason   string
}

// Flags are the CLI-supplied knobs the terminal strategy consults.
type Flags struct {
	FullFiles bool
}

// strategy returns a Decision, or nil to defer to the next strategy in
// the chain.
type strategy func(link *markdown.Link, flags Flags) *Decision

// stopMarker: an explicit stop-extract marker always wins.
func stopMarker(link *markdown.Link, _ Flags) *Decision {
	if link.ExtractionMarker == nil {
		return nil
	}
	switch link.ExtractionMarker.InnerText {
	case "stop-extract-link", "stop-extract":
		return &Decision{Eligible: false, Reason: "stop-extract marker prevents extraction"}
	}
	return nil
}

// forceMarker: an explicit force-extract marker wins over defaults.
func forceMarker(link *markdown.Link, _ Flags) *Decision {
	if link.ExtractionMarker == nil {
		return nil
	}
	if link.ExtractionMarker.InnerText == "force-extract" {
		return &Decision{Eligible: true, Reason: "force-extract marker"}
	}
	return nil
}

// sectionLink: anchored links (header or block) are eligible by default.
func sectionLink(link *markdown.Link, _ Flags) *Decision {
	if link.AnchorType == markdown.AnchorHeader || link.AnchorType == markdown.AnchorBlock {
		return &Decision{Eligible: true, Reason: "Markdown anchor links eligible by default"}
	}
	return nil
}

// cliFlag is the terminal strategy: it always returns a non-nil
// Decision, so the chain is total.
func cliFlag(link *markdown.Link, flags Flags) *Decision {
	if flags.FullFiles && link.AnchorType == markdown.AnchorNone {
		return &Decision{Eligible: true, Reason: "Full-file extraction enabled by CLI flag"}
	}
	return &Decision{Eligible: false, Reason: "Full-file link ineligible without --full-files flag"}
}

// defaultChain is the §4.6 default order, highest precedence first.
var defaultChain = []strategy{stopMarker, forceMarker, sectionLink, cliFlag}

// Chain is an ordered, total list of eligibility strategies.
type Chain struct {
	strategies []strategy
}

// Default returns the chain in stop-marker > force-marker > section-link
// > cli-flag precedence order.
func Default() *Chain {
	return &Chain{strategies: defaultChain}
}

// Decide runs the chain against link, returning the first non-nil
// decision. The terminal strategy guarantees this never returns nil.
func (c *Chain) Decide(link *markdown.Link, flags Flags) Decision {
	for _, s := range c.strategies {
		if d := s(link, flags); d != nil {
			return *d
		}
	}
	// Unreachable given the default chain's terminal strategy, but kept
	// as an explicit fallback so a custom chain missing a terminal
	// strategy still always returns a decision.
	return Decision{Eligible: false, Reason: "no strategy in the chain produced a decision"}
}
