// Package corrector aligns annotation spans with tag boundaries in the
// original markup text.
//
// Annotations are computed over stripped (markup-free) text and re-mapped
// into original-text byte offsets before they reach this package. A
// re-mapped span can land just past a closing delimiter, or need to grow
// over adjacent whitespace and enclosing tags before it can be wrapped in
// new markup without breaking nesting. CorrectPair performs that
// adjustment, or reports that the span cannot be aligned without crossing
// real content.
package corrector

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/markalign/core/tagtable"
)

// Span is a half-open [Start, End) byte range in the original text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the length of the span.
func (s Span) Len() int { return s.End - s.Start }

// String formats the span as a mathematical range like "[12,34)".
func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.Start, s.End) }

// Corrector corrects candidate spans against one document's text and tag
// table. It borrows both for its lifetime and never mutates them, so any
// number of Correctors may share the same table.
//
// CorrectPair returns its result by value and keeps no per-call state; a
// single Corrector is safe for concurrent use.
type Corrector struct {
	docText string
	tags    *tagtable.Table
}

// New returns a Corrector over docText and its tag table.
func New(docText string, tags *tagtable.Table) *Corrector {
	return &Corrector{docText: docText, tags: tags}
}

// CorrectPair corrects the candidate span [left, right). The left bound is
// pulled left over whitespace and opening delimiters, the right bound
// pulled right over whitespace and closing delimiters, until both sit on
// the boundary of a common enclosing tag (or of the document). It returns
// ok=false when either bound would have to cross non-whitespace content,
// meaning the candidate cannot be aligned and should be discarded.
//
// Offsets outside [0, len(docText)] or with left > right are a caller bug
// and panic.
func (c *Corrector) CorrectPair(left, right int) (Span, bool) {
	if left < 0 || left > right || right > len(c.docText) {
		panic(fmt.Sprintf("corrector: offset pair [%d,%d) out of range for document of length %d",
			left, right, len(c.docText)))
	}

	right = c.snapBackCloseTag(right)

	// Walk up from the tag enclosing the left bound until we reach a tag
	// that also encloses the right bound. Every tag left behind must be
	// separated from the left bound by whitespace only, and contributes its
	// open delimiter to the span.
	iTag := c.tags.EnclosingTag(left)
	endTag := c.tags.EnclosingTag(right)
	for ; !c.tagEnclosesOffset(iTag, right); iTag = c.tags.Parent(iTag) {
		if c.hasNonWhitespace(c.tags.OpenEnd(iTag), left) {
			return Span{}, false
		}
		left = c.tags.OpenStart(iTag)
	}
	ancestorTag := iTag

	// Walk the right bound up to the same ancestor, swallowing close
	// delimiters over whitespace-only gaps.
	for iTag = endTag; iTag != ancestorTag; iTag = c.tags.Parent(iTag) {
		if c.hasNonWhitespace(right, c.tags.CloseStart(iTag)) {
			return Span{}, false
		}
		right = c.tags.CloseEnd(iTag)
	}

	return Span{Start: left, End: right}, true
}

// snapBackCloseTag pulls an end offset that points just past a '>' back to
// the nearest preceding '<'. Markup stripping maps a token's end offset to
// the first original position after any skipped markup, which places it
// after the closing delimiter instead of before it.
func (c *Corrector) snapBackCloseTag(end int) int {
	if end == 0 || c.docText[end-1] != '>' {
		return end
	}
	if lt := strings.LastIndexByte(c.docText[:end-1], '<'); lt >= 0 {
		return lt
	}
	return end
}

// hasNonWhitespace reports whether [start, end) contains any
// non-whitespace character. An empty or inverted range has none.
func (c *Corrector) hasNonWhitespace(start, end int) bool {
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(c.docText[i:])
		if !unicode.IsSpace(r) {
			return true
		}
		i += size
	}
	return false
}

// tagEnclosesOffset reports whether off falls within [OpenStart, CloseEnd)
// of tag. RootTag encloses every offset.
func (c *Corrector) tagEnclosesOffset(tag, off int) bool {
	if tag == tagtable.RootTag {
		return true
	}
	return off >= c.tags.OpenStart(tag) && off < c.tags.CloseEnd(tag)
}
