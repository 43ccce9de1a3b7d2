package markdown

import "fmt"

// ParsedDocument is the parse result for one source file: its links,
// headings, anchors, and enough of the raw source to extract sections,
// blocks, or the whole body on demand.
type ParsedDocument struct {
	sourceAbsolutePath string
	raw                []byte
	scan               structuralScan
	links              []Link
	anchors            []Anchor
	anchorIndex        map[string][]Anchor
}

// SourcePath returns the absolute path this document was parsed from.
func (d *ParsedDocument) SourcePath() string { return d.sourceAbsolutePath }

// GetLinks returns every link discovered in the document, in source order.
func (d *ParsedDocument) GetLinks() []Link { return d.links }

// GetAnchors returns every anchor (header and block) in the document,
// in source order.
func (d *ParsedDocument) GetAnchors() []Anchor { return d.anchors }

// GetHeadings returns every heading in document order.
func (d *ParsedDocument) GetHeadings() []Heading { return d.scan.headings }

// HasAnchor reports whether id resolves against either the raw or
// percent-encoded form of some anchor in the document.
func (d *ParsedDocument) HasAnchor(id string) bool {
	_, ok := d.anchorIndex[id]
	return ok
}

// ResolveAnchor returns the first anchor matching id, trying the raw
// form then the percent-encoded form, and the ok flag mirrors HasAnchor.
func (d *ParsedDocument) ResolveAnchor(id string) (Anchor, bool) {
	matches, ok := d.anchorIndex[id]
	if !ok || len(matches) == 0 {
		return Anchor{}, false
	}
	return matches[0], true
}

// ExtractFullContent returns the document body with any leading YAML
// frontmatter block stripped — citeweave never interprets frontmatter
// fields, but every body-returning extraction excludes the block itself.
func (d *ParsedDocument) ExtractFullContent() string {
	return string(d.raw[d.bodyStart():])
}

// ExtractSection returns the content of the heading whose text matches
// headingText exactly, through (but not including) the next heading of
// equal or lesser level. ok is false when no such heading exists.
func (d *ParsedDocument) ExtractSection(headingText string) (string, bool) {
	for i, span := range d.scan.blocks {
		if span.Heading == nil || span.Heading.Text != headingText {
			continue
		}
		end := len(d.raw)
		level := span.Heading.Level
		for j := i + 1; j < len(d.scan.blocks); j++ {
			next := d.scan.blocks[j]
			if next.Heading != nil && next.Heading.Level <= level {
				end = next.Start
				break
			}
		}
		return string(d.raw[span.Start:end]), true
	}
	return "", false
}

// ExtractBlock returns the raw text of the block whose trailing
// ^blockId declaration matches id. ok is false when no block carries
// that id.
func (d *ParsedDocument) ExtractBlock(id string) (string, bool) {
	anchor, ok := d.ResolveAnchor(id)
	if !ok || anchor.Kind != AnchorKindBlock {
		return "", false
	}
	for _, span := range d.scan.blocks {
		if anchor.Line >= lineOf(d.scan.lineStarts, span.Start) && anchor.Line <= lineOf(d.scan.lineStarts, span.End-1) {
			return span.Raw, true
		}
	}
	return "", false
}

func lineOf(lineStarts []int, offset int) int {
	line, _ := lineColAt(lineStarts, offset)
	return line
}

// bodyStart returns the byte offset where the document body begins,
// skipping a leading "---\n...\n---\n" YAML frontmatter delimiter pair
// if one opens the file.
func (d *ParsedDocument) bodyStart() int {
	const delim = "---"
	raw := d.raw
	if len(raw) < len(delim) || string(raw[:len(delim)]) != delim {
		return 0
	}
	rest := raw[len(delim):]
	if len(rest) == 0 || (rest[0] != '\n' && !(len(rest) > 1 && rest[0] == '\r' && rest[1] == '\n')) {
		return 0
	}
	nlLen := 1
	if rest[0] == '\r' {
		nlLen = 2
	}
	body := rest[nlLen:]
	closeIdx := findFrontmatterClose(body)
	if closeIdx == -1 {
		return 0
	}
	return len(delim) + nlLen + closeIdx
}

// findFrontmatterClose scans body for a line that is exactly "---" and
// returns the byte offset just past that line's trailing newline.
func findFrontmatterClose(body []byte) int {
	lineStart := 0
	for i := 0; i <= len(body); i++ {
		if i == len(body) || body[i] == '\n' {
			line := body[lineStart:i]
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			if string(line) == "---" {
				return i + 1
			}
			lineStart = i + 1
		}
	}
	return -1
}

// String implements fmt.Stringer for debug output.
func (d *ParsedDocument) String() string {
	return fmt.Sprintf("ParsedDocument{path=%s links=%d anchors=%d}", d.sourceAbsolutePath, len(d.links), len(d.anchors))
}
