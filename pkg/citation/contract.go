// Package citation defines citeweave's public output contract: the
// deduplicated, machine-readable payload the extract commands print to
// stdout as JSON.
package citation

import "encoding/json"

// ContentBlock is one unit of deduplicated extracted content, keyed in
// ExtractedContentBlocks by its contentId (first 12 hex chars of the
// SHA-256 of Content).
type ContentBlock struct {
	Content       string       `json:"content"`
	ContentLength int          `json:"contentLength"`
	SourceLinks   []SourceLink `json:"sourceLinks"`
}

// SourceLink records one link that produced (or duplicated) a content block.
type SourceLink struct {
	RawSourceLink string `json:"rawSourceLink"`
	SourceLine    int    `json:"sourceLine"`
}

// ExtractedContentBlocks is keyed by contentId, plus a reserved
// "_totalContentCharacterLength" accounting field sharing the same
// flat JSON object — so it gets a hand-written Marshal/Unmarshal pair
// instead of the default struct encoding.
type ExtractedContentBlocks struct {
	TotalContentCharacterLength int
	Blocks                      map[string]ContentBlock
}

func (b ExtractedContentBlocks) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(b.Blocks)+1)
	flat["_totalContentCharacterLength"] = b.TotalContentCharacterLength
	for id, block := range b.Blocks {
		flat[id] = block
	}
	return json.Marshal(flat)
}

func (b *ExtractedContentBlocks) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	b.Blocks = make(map[string]ContentBlock, len(flat))
	for key, raw := range flat {
		if key == "_totalContentCharacterLength" {
			if err := json.Unmarshal(raw, &b.TotalContentCharacterLength); err != nil {
				return err
			}
			continue
		}
		var block ContentBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return err
		}
		b.Blocks[key] = block
	}
	return nil
}

// FailureDetails explains why a link was skipped or failed.
type FailureDetails struct {
	Reason string `json:"reason"`
}

// ProcessedLinkEntry is one line of the outgoing-links report.
type ProcessedLinkEntry struct {
	Status           string          `json:"status"` // extracted|success|skipped|error|failed
	ContentID        *string         `json:"contentId"`
	EligibilityReason string         `json:"eligibilityReason,omitempty"`
	SourceLink       *SourceLink     `json:"sourceLink,omitempty"`
	FailureDetails   *FailureDetails `json:"failureDetails,omitempty"`
}

// OutgoingLinksReport wraps the processed-link list for one source document.
type OutgoingLinksReport struct {
	SourceFilePath string                `json:"sourceFilePath,omitempty"`
	ProcessedLinks []ProcessedLinkEntry  `json:"processedLinks"`
}

// Stats is the run's summary counters.
type Stats struct {
	TotalLinks               int     `json:"totalLinks"`
	UniqueContent             int     `json:"uniqueContent"`
	DuplicateContentDetected int     `json:"duplicateContentDetected"`
	TokensSaved              int     `json:"tokensSaved"`
	CompressionRatio         float64 `json:"compressionRatio"`
}

// ExtractedContent is the full Outgoing-Links Extracted Content output
// contract emitted by `extract links|header|file`.
type ExtractedContent struct {
	ExtractedContentBlocks ExtractedContentBlocks `json:"extractedContentBlocks"`
	OutgoingLinksReport    OutgoingLinksReport     `json:"outgoingLinksReport"`
	Stats                  Stats                   `json:"stats"`
}
