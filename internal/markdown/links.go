package markdown

import (
	"regexp"
	"sort"
	"strings"
)

// Recognizers for the four supported link syntaxes: standard Markdown,
// wiki-style, cite-style, and caret block declarations. Position
// and fullMatch truth comes directly from these regex matches against
// the raw source — not from any AST reconstruction — so line/column
// are exact by construction. Matches landing inside a code range from
// the structural scan are dropped before anything else runs.
var (
	standardLinkOpenRe = regexp.MustCompile(`\[([^\]]*)\]\(`)
	wikiLinkRe         = regexp.MustCompile(`(\[\[)([^\]]+)(\]\])`)
	citeLinkRe         = regexp.MustCompile(`\[cite:\s*([^\]]+)\]`)
	caretRefRe         = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9_-]+)[ \t]*$`)
)

var reservedMarkers = map[string]bool{
	"force-extract":     true,
	"stop-extract-link": true,
	"stop-extract":      true,
}

// extractLinks recognizes all four link syntaxes over source, excludes
// matches that fall inside code ranges, attaches extraction markers,
// and returns the links sorted in source order (line, then column).
func extractLinks(source []byte, sourceAbsolutePath string, scan structuralScan) []Link {
	content := string(source)
	var links []Link

	links = append(links, extractStandardLinks(content, sourceAbsolutePath, scan)...)
	links = append(links, extractWikiLinks(content, sourceAbsolutePath, scan)...)
	links = append(links, extractCiteLinks(content, sourceAbsolutePath, scan)...)
	links = append(links, extractCaretRefs(content, sourceAbsolutePath, scan)...)

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].Line != links[j].Line {
			return links[i].Line < links[j].Line
		}
		return links[i].Column < links[j].Column
	})

	for i := range links {
		links[i].ExtractionMarker = findExtractionMarker(content, links[i])
	}

	return links
}

func extractStandardLinks(content, sourcePath string, scan structuralScan) []Link {
	var links []Link
	for _, m := range standardLinkOpenRe.FindAllStringSubmatchIndex(content, -1) {
		openParen := m[1] // index just past "]("
		text := content[m[2]:m[3]]
		target, endPos := findBalancedTarget(content, openParen)
		if target == "" {
			continue
		}
		start := m[0]
		end := endPos + 1
		if scan.inCodeRange(start, end) {
			continue
		}
		fullMatch := content[start:end]
		line, col := lineColAt(scan.lineStarts, start)

		link := Link{
			LinkType:           MarkdownLinkType,
			SourceAbsolutePath: sourcePath,
			Text:               text,
			FullMatch:          fullMatch,
			Line:               line,
			Column:             col,
		}
		applyTargetAndAnchor(&link, target)
		links = append(links, link)
	}
	return links
}

func findBalancedTarget(content string, start int) (target string, endPos int) {
	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return content[start:i], i
			}
			depth--
		}
	}
	return "", -1
}

func extractWikiLinks(content, sourcePath string, scan structuralScan) []Link {
	var links []Link
	for _, m := range wikiLinkRe.FindAllStringSubmatchIndex(content, -1) {
		start, end := m[0], m[1]
		if scan.inCodeRange(start, end) {
			continue
		}
		inner := content[m[4]:m[5]]

		display := ""
		target := inner
		if idx := strings.Index(inner, "|"); idx != -1 {
			target = inner[:idx]
			display = inner[idx+1:]
		}

		fullMatch := content[start:end]
		line, col := lineColAt(scan.lineStarts, start)

		link := Link{
			LinkType:           WikiLinkType,
			SourceAbsolutePath: sourcePath,
			Text:               display,
			FullMatch:          fullMatch,
			Line:               line,
			Column:             col,
		}
		applyTargetAndAnchor(&link, target)
		if link.Text == "" && link.Scope == ScopeCrossDocument {
			link.Text = link.Target.Raw
		}
		links = append(links, link)
	}
	return links
}

func extractCiteLinks(content, sourcePath string, scan structuralScan) []Link {
	var links []Link
	for _, m := range citeLinkRe.FindAllStringSubmatchIndex(content, -1) {
		start, end := m[0], m[1]
		if scan.inCodeRange(start, end) {
			continue
		}
		target := strings.TrimSpace(content[m[2]:m[3]])
		fullMatch := content[start:end]
		line, col := lineColAt(scan.lineStarts, start)

		link := Link{
			LinkType:           MarkdownLinkType,
			SourceAbsolutePath: sourcePath,
			Text:               fullMatch,
			FullMatch:          fullMatch,
			Line:               line,
			Column:             col,
		}
		applyTargetAndAnchor(&link, target)
		links = append(links, link)
	}
	return links
}

// extractCaretRefs finds bare ^identifier tokens at end-of-line in
// running text. Each declares a block anchor (handled in anchors
// extraction) and also produces an internal wiki-scoped block link.
func extractCaretRefs(content, sourcePath string, scan structuralScan) []Link {
	var links []Link
	lines := strings.Split(content, "\n")
	offset := 0
	for _, lineText := range lines {
		lineStart := offset
		offset += len(lineText) + 1

		if m := caretRefRe.FindStringSubmatchIndex(lineText); m != nil {
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
			lineNo, col := lineColAt(scan.lineStarts, start)
			links = append(links, Link{
				LinkType:           WikiLinkType,
				Scope:              ScopeInternal,
				AnchorType:         AnchorBlock,
				SourceAbsolutePath: sourcePath,
				Anchor:             id,
				FullMatch:          fullMatch,
				Line:               lineNo,
				Column:             col,
			})
		}
	}
	return links
}

// applyTargetAndAnchor splits a raw link target into path/anchor parts
// and fills in Scope, AnchorType, Target, and Anchor. An internal
// (caret/same-document) link leaves all target.path fields nil.
func applyTargetAndAnchor(link *Link, rawTarget string) {
	path := rawTarget
	anchor := ""
	if idx := strings.Index(rawTarget, "#"); idx != -1 {
		path = rawTarget[:idx]
		anchor = rawTarget[idx+1:]
	}

	if path == "" {
		link.Scope = ScopeInternal
	} else {
		link.Scope = ScopeCrossDocument
		link.Target.Raw = path
	}

	switch {
	case anchor == "":
		link.AnchorType = AnchorNone
	case strings.HasPrefix(anchor, "^"):
		link.AnchorType = AnchorBlock
		link.Anchor = anchor[1:]
	default:
		link.AnchorType = AnchorHeader
		link.Anchor = anchor
	}
}

// findExtractionMarker scans the remainder of the link's source line
// for a %%token%% or <!-- token --> annotation immediately following
// the link (whitespace permitted in between).
func findExtractionMarker(content string, link Link) *ExtractionMarker {
	endOfMatch := matchEndOffset(content, link)
	rest := content[endOfMatch:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[:nl]
	}

	trimmed := strings.TrimLeft(rest, " \t")
	var inner, open, close string
	switch {
	case strings.HasPrefix(trimmed, "%%"):
		open, close = "%%", "%%"
	case strings.HasPrefix(trimmed, "<!--"):
		open, close = "<!--", "-->"
	default:
		return nil
	}
	body := trimmed[len(open):]
	end := strings.Index(body, close)
	if end == -1 {
		return nil
	}
	inner = body[:end]

	innerText := strings.TrimSpace(inner)
	if !reservedMarkers[innerText] {
		return nil
	}
	fullMatch := trimmed[:len(open)+end+len(close)]
	return &ExtractionMarker{FullMatch: fullMatch, InnerText: innerText}
}

// matchEndOffset finds where link.FullMatch ends in content, searching
// from the line the link was recorded on to disambiguate duplicates.
func matchEndOffset(content string, link Link) int {
	lineStarts := computeLineStarts([]byte(content))
	if link.Line-1 >= len(lineStarts) {
		return len(content)
	}
	searchFrom := lineStarts[link.Line-1]
	idx := strings.Index(content[searchFrom:], link.FullMatch)
	if idx == -1 {
		return len(content)
	}
	return searchFrom + idx + len(link.FullMatch)
}
