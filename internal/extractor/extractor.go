// Package extractor orchestrates validate → filter → extract →
// deduplicate for one or more links, producing the
// citation.ExtractedContent output contract.
package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/citeweave/citeweave/internal/cache"
	"github.com/citeweave/citeweave/internal/eligibility"
	"github.com/citeweave/citeweave/internal/markdown"
	"github.com/citeweave/citeweave/internal/validator"
	"github.com/citeweave/citeweave/pkg/citation"
)

// Extractor runs the full pipeline against one source file, or a
// single synthetic link constructed by the CLI for `extract
// header`/`extract file`.
type Extractor struct {
	cache     *cache.ParsedFileCache
	validator *validator.Validator
	chain     *eligibility.Chain
}

func New(fileCache *cache.ParsedFileCache, v *validator.Validator, chain *eligibility.Chain) *Extractor {
	if chain == nil {
		chain = eligibility.Default()
	}
	return &Extractor{cache: fileCache, validator: v, chain: chain}
}

// accumulator collects per-link processing results across one
// extraction run, whether that run covers a whole document's links or
// a single synthetic link.
type accumulator struct {
	blocks           map[string]citation.ContentBlock
	entries          []citation.ProcessedLinkEntry
	validationErrors []string
	totalContentSize int
	tokensSaved      int
	uniqueContent    int
}

func newAccumulator() *accumulator {
	return &accumulator{blocks: make(map[string]citation.ContentBlock)}
}

// Run executes the pipeline against every link in sourcePath and
// returns the deduplicated output contract. flags.FullFiles feeds the
// terminal eligibility strategy. The returned []string collects
// per-link validation error messages suitable for printing to stderr.
func (e *Extractor) Run(sourcePath string, flags eligibility.Flags) (citation.ExtractedContent, []string, error) {
	doc, err := e.cache.Get(sourcePath)
	if err != nil {
		return citation.ExtractedContent{}, nil, fmt.Errorf("parsing source file: %w", err)
	}

	result := e.validator.Validate(doc)

	acc := newAccumulator()
	for i := range result.Links {
		link := &result.Links[i]
		if link.Scope == markdown.ScopeInternal {
			continue
		}
		e.processLink(acc, link, flags)
	}

	return e.finalize(acc, sourcePath), acc.validationErrors, nil
}

// RunSyntheticLink validates and processes a single CLI-constructed
// link (the `extract header`/`extract file` path, §6). The link has
// no source document of its own, so internal-scope validation never
// applies to it.
func (e *Extractor) RunSyntheticLink(link *markdown.Link, sourcePath string, flags eligibility.Flags) (citation.ExtractedContent, []string) {
	e.validator.ValidateLink(link, nil)

	acc := newAccumulator()
	e.processLink(acc, link, flags)

	return e.finalize(acc, sourcePath), acc.validationErrors
}

func (e *Extractor) processLink(acc *accumulator, link *markdown.Link, flags eligibility.Flags) {
	if link.Validation != nil && link.Validation.Status == markdown.StatusError {
		acc.validationErrors = append(acc.validationErrors, fmt.Sprintf("%s:%d: %s", link.SourceAbsolutePath, link.Line, link.Validation.Error))
		acc.entries = append(acc.entries, citation.ProcessedLinkEntry{
			Status:         "skipped",
			FailureDetails: &citation.FailureDetails{Reason: "Link failed validation: " + link.Validation.Error},
		})
		return
	}

	decision := e.chain.Decide(link, flags)
	if !decision.Eligible {
		acc.entries = append(acc.entries, citation.ProcessedLinkEntry{
			Status:            "skipped",
			EligibilityReason: decision.Reason,
			FailureDetails:    &citation.FailureDetails{Reason: decision.Reason},
		})
		return
	}

	content, extractErr := e.extractContent(link)
	if extractErr != nil {
		acc.entries = append(acc.entries, citation.ProcessedLinkEntry{
			Status:         "error",
			FailureDetails: &citation.FailureDetails{Reason: extractErr.Error()},
		})
		return
	}

	contentID := contentIDFor(content)
	sourceLink := citation.SourceLink{RawSourceLink: link.FullMatch, SourceLine: link.Line}

	if existing, dup := acc.blocks[contentID]; dup {
		existing.SourceLinks = append(existing.SourceLinks, sourceLink)
		acc.blocks[contentID] = existing
		acc.tokensSaved += existing.ContentLength
	} else {
		acc.blocks[contentID] = citation.ContentBlock{
			Content:       content,
			ContentLength: len(content),
			SourceLinks:   []citation.SourceLink{sourceLink},
		}
		acc.totalContentSize += len(content)
		acc.uniqueContent++
	}

	acc.entries = append(acc.entries, citation.ProcessedLinkEntry{
		Status:            "extracted",
		ContentID:         strPtr(contentID),
		EligibilityReason: decision.Reason,
		SourceLink:        &sourceLink,
	})
}

func (e *Extractor) finalize(acc *accumulator, sourcePath string) citation.ExtractedContent {
	totalLinks := len(acc.entries)
	duplicateContentDetected := totalLinks - acc.uniqueContent
	if duplicateContentDetected < 0 {
		duplicateContentDetected = 0
	}

	var ratio float64
	denominator := acc.totalContentSize + acc.tokensSaved
	if denominator > 0 {
		ratio = float64(acc.tokensSaved) / float64(denominator)
	}

	return citation.ExtractedContent{
		ExtractedContentBlocks: citation.ExtractedContentBlocks{
			TotalContentCharacterLength: acc.totalContentSize,
			Blocks:                      acc.blocks,
		},
		OutgoingLinksReport: citation.OutgoingLinksReport{
			SourceFilePath: sourcePath,
			ProcessedLinks: acc.entries,
		},
		Stats: citation.Stats{
			TotalLinks:               totalLinks,
			UniqueContent:            acc.uniqueContent,
			DuplicateContentDetected: duplicateContentDetected,
			TokensSaved:              acc.tokensSaved,
			CompressionRatio:         ratio,
		},
	}
}

func (e *Extractor) extractContent(link *markdown.Link) (string, error) {
	targetDoc, err := e.cache.Get(link.Target.Absolute)
	if err != nil {
		return "", fmt.Errorf("parsing target file %s: %w", link.Target.Absolute, err)
	}

	switch link.AnchorType {
	case markdown.AnchorHeader:
		anchor, ok := targetDoc.ResolveAnchor(link.Anchor)
		if !ok {
			return "", fmt.Errorf("anchor %q not found in %s", link.Anchor, link.Target.Absolute)
		}
		section, ok := targetDoc.ExtractSection(anchor.RawText)
		if !ok {
			return "", fmt.Errorf("section %q not found in %s", anchor.RawText, link.Target.Absolute)
		}
		return section, nil
	case markdown.AnchorBlock:
		block, ok := targetDoc.ExtractBlock(link.Anchor)
		if !ok {
			return "", fmt.Errorf("block %q not found in %s", link.Anchor, link.Target.Absolute)
		}
		return block, nil
	default:
		return targetDoc.ExtractFullContent(), nil
	}
}

func contentIDFor(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

func strPtr(s string) *string { return &s }

// ReadSource reads a source file's raw bytes, used by callers that
// need the content hash for the external session cache before running
// the pipeline.
func ReadSource(path string) ([]byte, error) {
	return os.ReadFile(path)
}
