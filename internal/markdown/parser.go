package markdown

import "strings"

// Parse runs the structural scan and both families of regex extraction
// over source and assembles a ParsedDocument. sourceAbsolutePath is
// recorded on every Link so downstream components (resolver, cache) can
// resolve relative targets without re-threading the path everywhere.
func Parse(source []byte, sourceAbsolutePath string) *ParsedDocument {
	scan := scanStructure(source)
	links := extractLinks(source, sourceAbsolutePath, scan)
	anchors := buildAnchors(source, scan)

	return &ParsedDocument{
		sourceAbsolutePath: sourceAbsolutePath,
		raw:                source,
		scan:               scan,
		links:              links,
		anchors:            anchors,
		anchorIndex:        indexAnchors(anchors),
	}
}

// buildAnchors collects one Anchor per heading occurrence (Kind=header)
// and one per ^blockId declaration site (Kind=block). Two anchors with
// the same ID are both kept; anchor lookups by that ID resolve to the
// first one in source order.
func buildAnchors(source []byte, scan structuralScan) []Anchor {
	var anchors []Anchor

	for _, h := range scan.headings {
		anchors = append(anchors, Anchor{
			Kind:         AnchorKindHeader,
			ID:           h.Text,
			URLEncodedID: percentEncodeUnreserved(h.Text),
			RawText:      h.Text,
			FullMatch:    h.Raw,
			Line:         h.Line,
		})
	}

	content := string(source)
	lines := strings.Split(content, "\n")
	offset := 0
	for _, lineText := range lines {
		lineStart := offset
		offset += len(lineText) + 1

		m := caretRefRe.FindStringSubmatchIndex(lineText)
		if m == nil {
			continue
		}
		id := lineText[m[2]:m[3]]
		matchStart := strings.LastIndex(lineText[:m[1]], "^")
		if matchStart == -1 {
			continue
		}
		start := lineStart + matchStart
		end := lineStart + m[1]
		if scan.inCodeRange(start, end) {
			continue
		}
		fullMatch := "^" + id
		line, col := lineColAt(scan.lineStarts, start)
		anchors = append(anchors, Anchor{
			Kind:         AnchorKindBlock,
			ID:           id,
			URLEncodedID: percentEncodeUnreserved(id),
			FullMatch:    fullMatch,
			Line:         line,
			Column:       col,
		})
	}

	return anchors
}

func indexAnchors(anchors []Anchor) map[string][]Anchor {
	idx := make(map[string][]Anchor, len(anchors))
	for _, a := range anchors {
		idx[a.ID] = append(idx[a.ID], a)
		if a.URLEncodedID != a.ID {
			idx[a.URLEncodedID] = append(idx[a.URLEncodedID], a)
		}
	}
	return idx
}
