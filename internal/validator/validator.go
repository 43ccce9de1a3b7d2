// Package validator resolves each link's file and anchor targets and
// enriches the link in place with a validation verdict.
package validator

import (
	"fmt"
	"path/filepath"

	"github.com/citeweave/citeweave/internal/cache"
	"github.com/citeweave/citeweave/internal/markdown"
	"github.com/citeweave/citeweave/internal/resolver"
)

// Summary tallies validation verdicts across a document's links.
type Summary struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Result is the validator's output: the source link set enriched in
// place, plus roll-up counts.
type Result struct {
	Summary Summary         `json:"summary"`
	Links   []markdown.Link `json:"links"`
}

// Validator resolves cross-document targets via the given Resolver and
// parses them through the given ParsedFileCache.
type Validator struct {
	resolver *resolver.Resolver
	cache    *cache.ParsedFileCache
}

func New(res *resolver.Resolver, fileCache *cache.ParsedFileCache) *Validator {
	return &Validator{resolver: res, cache: fileCache}
}

// Validate enriches every link from doc (the already-parsed source
// document) with a validation verdict and returns the roll-up summary.
// Calling Validate twice on the same links is idempotent: the second
// call overwrites each Validation without touching any other field.
func (v *Validator) Validate(doc *markdown.ParsedDocument) Result {
	links := doc.GetLinks()
	result := Result{Links: links}

	for i := range result.Links {
		v.ValidateLink(&result.Links[i], doc)
		result.Summary.Total++
		switch result.Links[i].Validation.Status {
		case markdown.StatusValid:
			result.Summary.Valid++
		case markdown.StatusWarning:
			result.Summary.Warnings++
		case markdown.StatusError:
			result.Summary.Errors++
		}
	}

	return result
}

// ValidateLink enriches a single link in place. doc is the source
// document the link was found in, consulted for internal-scope anchor
// lookups; it may be nil for a synthetic link (§6), which is always
// cross-document.
func (v *Validator) ValidateLink(link *markdown.Link, doc *markdown.ParsedDocument) {
	if link.Scope == markdown.ScopeInternal {
		v.validateInternal(link, doc)
		return
	}
	v.validateCrossDocument(link, doc)
}

func (v *Validator) validateInternal(link *markdown.Link, doc *markdown.ParsedDocument) {
	if doc.HasAnchor(link.Anchor) {
		link.Validation = &markdown.Validation{Status: markdown.StatusValid}
		return
	}

	suggestion := suggestAnchor(link.Anchor, doc.GetAnchors())
	link.Validation = &markdown.Validation{
		Status:     markdown.StatusError,
		Error:      fmt.Sprintf("anchor not found: %s", link.Anchor),
		Suggestion: suggestion,
	}
}

func (v *Validator) validateCrossDocument(link *markdown.Link, doc *markdown.ParsedDocument) {
	sourceDir := filepath.Dir(link.SourceAbsolutePath)
	res := v.resolver.Resolve(link.Target.Raw, sourceDir)

	if !res.Found {
		switch res.Reason {
		case resolver.ReasonDuplicate:
			link.Validation = &markdown.Validation{
				Status:     markdown.StatusError,
				Error:      "multiple files match this target",
				Candidates: res.Candidates,
			}
		default:
			suggestion, _ := resolver.SuggestAnchor(link.Target.Raw, res.Candidates)
			link.Validation = &markdown.Validation{
				Status:     markdown.StatusError,
				Error:      "File not found",
				Suggestion: suggestion,
				Candidates: res.Candidates,
			}
		}
		return
	}

	link.Target.Absolute = res.AbsolutePath
	link.Target.Relative = res.Relative

	var pathConversion *markdown.PathConversion
	status := markdown.StatusValid
	if res.Reason == resolver.ReasonCache {
		pathConversion = &markdown.PathConversion{
			Type:        "path-conversion",
			Original:    link.Target.Raw,
			Recommended: res.Relative,
		}
		status = markdown.StatusWarning
	}

	if link.AnchorType == markdown.AnchorNone {
		link.Validation = &markdown.Validation{Status: status, PathConversion: pathConversion}
		return
	}

	targetDoc, err := v.cache.Get(res.AbsolutePath)
	if err != nil {
		link.Validation = &markdown.Validation{
			Status:         markdown.StatusError,
			Error:          fmt.Sprintf("could not parse target file: %v", err),
			PathConversion: pathConversion,
		}
		return
	}

	if !targetDoc.HasAnchor(link.Anchor) {
		suggestion := suggestAnchor(link.Anchor, targetDoc.GetAnchors())
		link.Validation = &markdown.Validation{
			Status:         markdown.StatusError,
			Error:          fmt.Sprintf("anchor not found: %s", link.Anchor),
			Suggestion:     suggestion,
			PathConversion: pathConversion,
		}
		return
	}

	link.Validation = &markdown.Validation{Status: status, PathConversion: pathConversion}
}

// suggestAnchor builds the candidate id list (both raw and
// url-encoded forms) from anchors and returns the closest fuzzy match
// to target, per §7's suggestion rule.
func suggestAnchor(target string, anchors []markdown.Anchor) string {
	candidates := make([]string, 0, len(anchors)*2)
	for _, a := range anchors {
		candidates = append(candidates, a.ID)
		if a.URLEncodedID != "" && a.URLEncodedID != a.ID {
			candidates = append(candidates, a.URLEncodedID)
		}
	}
	best, ok := resolver.SuggestAnchor(target, candidates)
	if !ok {
		return ""
	}
	return best
}
