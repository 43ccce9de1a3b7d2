package markdown

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// byteRange is a half-open [Start, End) span of source bytes.
type byteRange struct {
	Start, End int
}

func (r byteRange) overlaps(start, end int) bool {
	return start < r.End && end > r.Start
}

// blockSpan is one top-level (direct child of the document) block,
// carrying its raw source bytes. Section extraction walks this slice.
type blockSpan struct {
	Start, End int
	Raw        string
	Heading    *Heading // non-nil when this block is an ATX/Setext heading
}

// structuralScan is the result of running the document through
// goldmark once: headings, top-level block spans (for section
// extraction), and the byte ranges that must be excluded from regex
// based link/anchor scanning (fenced/indented code blocks and inline
// code spans) so link syntax never matches inside code.
type structuralScan struct {
	lineStarts []int
	blocks     []blockSpan
	headings   []Heading
	codeRanges []byteRange
}

var gmParser = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

func scanStructure(source []byte) structuralScan {
	reader := text.NewReader(source)
	doc := gmParser.Parser().Parse(reader)

	scan := structuralScan{lineStarts: computeLineStarts(source)}

	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		start, end, ok := blockByteSpan(c, source)
		if !ok {
			continue
		}
		span := blockSpan{Start: start, End: end, Raw: string(source[start:end])}
		if h, isHeading := c.(*gast.Heading); isHeading {
			text := headingText(h, source)
			line, _ := lineColAt(scan.lineStarts, start)
			// goldmark's heading segment begins after the "#" markers;
			// widen the span to the start of the heading's line so Raw
			// and section extraction include the whole heading line.
			span.Start = scan.lineStarts[line-1]
			span.Raw = string(source[span.Start:end])
			heading := Heading{Level: h.Level, Text: text, Raw: span.Raw, Line: line}
			span.Heading = &heading
			scan.headings = append(scan.headings, heading)
		}
		scan.blocks = append(scan.blocks, span)
	}

	gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch n.(type) {
		case *gast.FencedCodeBlock, *gast.CodeBlock:
			if start, end, ok := blockByteSpan(n, source); ok {
				scan.codeRanges = append(scan.codeRanges, byteRange{start, end})
			}
			return gast.WalkSkipChildren, nil
		case *gast.CodeSpan:
			if start, end, ok := blockByteSpan(n, source); ok {
				// Pad by one byte on each side for the backtick delimiters,
				// which the span's text segments themselves don't cover.
				if start > 0 {
					start--
				}
				if end < len(source) {
					end++
				}
				scan.codeRanges = append(scan.codeRanges, byteRange{start, end})
			}
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})

	sort.Slice(scan.codeRanges, func(i, j int) bool { return scan.codeRanges[i].Start < scan.codeRanges[j].Start })

	return scan
}

// blockByteSpan computes the [start,end) byte range a node covers in
// source, recursing into children for container nodes (list, list
// item, blockquote) that do not carry their own line segments.
func blockByteSpan(n gast.Node, source []byte) (start, end int, ok bool) {
	if t, isText := n.(*gast.Text); isText {
		return t.Segment.Start, t.Segment.Stop, true
	}

	type liner interface {
		Lines() *text.Segments
	}
	if l, isLiner := n.(liner); isLiner {
		lines := l.Lines()
		if lines.Len() > 0 {
			first := lines.At(0)
			last := lines.At(lines.Len() - 1)
			return first.Start, last.Stop, true
		}
	}

	found := false
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cs, ce, cok := blockByteSpan(c, source)
		if !cok {
			continue
		}
		if !found || cs < start {
			start = cs
		}
		if !found || ce > end {
			end = ce
		}
		found = true
	}
	return start, end, found
}

// headingText reconstructs a heading's raw display text by
// concatenating the literal source bytes of every descendant text
// segment, in document order.
func headingText(h *gast.Heading, source []byte) string {
	var out []byte
	gast.Walk(h, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if t, isText := n.(*gast.Text); isText {
			out = append(out, t.Segment.Value(source)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				out = append(out, ' ')
			}
		}
		if t, isString := n.(*gast.String); isString {
			out = append(out, t.Value...)
		}
		return gast.WalkContinue, nil
	})
	return strings.TrimSpace(string(out))
}

func computeLineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineColAt converts a byte offset to a 1-based line and 0-based
// column (byte offset from the start of that line).
func lineColAt(lineStarts []int, offset int) (line, col int) {
	i := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - lineStarts[i]
}

// inCodeRange reports whether [start, end) overlaps any excluded code
// range from the structural scan.
func (s structuralScan) inCodeRange(start, end int) bool {
	for _, r := range s.codeRanges {
		if r.overlaps(start, end) {
			return true
		}
	}
	return false
}

