// Package tagtable stores the tag structure of a markup document as a flat,
// append-only table of tag records plus a derived index for offset-to-tag
// lookup.
//
// Each tag is identified by a sequential 0-based id and records its parent
// tag and the half-open offset ranges of its opening and closing delimiters.
// The table is populated once by a markup scanner and is read-only
// afterwards, so it may be shared freely between goroutines.
package tagtable

import "sort"

// RootTag is the sentinel id for "no enclosing tag". Its virtual boundaries
// span the whole document, so ancestor walks terminate uniformly without
// special-casing top-level tags.
const RootTag = -1

// record holds one tag's parent id and delimiter offsets.
// Invariant: OpenStart < OpenEnd <= CloseStart < CloseEnd, and the interval
// [OpenStart, CloseEnd) strictly contains every descendant tag's interval.
type record struct {
	parent     int
	openStart  int
	openEnd    int
	closeStart int
	closeEnd   int
}

// Table is an immutable, sequentially-indexed table of tag records plus the
// parent-change index used for enclosing-tag lookup.
type Table struct {
	tags []record

	// Parent-change index: changeOffsets is strictly ascending; changeIDs is
	// the parallel tag id that becomes the innermost enclosing tag at that
	// offset.
	changeOffsets []int
	changeIDs     []int
}

// Len returns the number of tags in the table.
func (t *Table) Len() int { return len(t.tags) }

// Parent returns the id of the innermost enclosing tag, or RootTag.
func (t *Table) Parent(tag int) int { return t.tags[tag].parent }

// OpenStart returns the offset of the first byte of the opening delimiter.
func (t *Table) OpenStart(tag int) int { return t.tags[tag].openStart }

// OpenEnd returns the offset just past the opening delimiter.
func (t *Table) OpenEnd(tag int) int { return t.tags[tag].openEnd }

// CloseStart returns the offset of the first byte of the closing delimiter.
func (t *Table) CloseStart(tag int) int { return t.tags[tag].closeStart }

// CloseEnd returns the offset just past the closing delimiter.
func (t *Table) CloseEnd(tag int) int { return t.tags[tag].closeEnd }

// EnclosingTag returns the id of the innermost tag whose [OpenStart,
// CloseEnd) interval contains off, or RootTag if no tag does.
//
// It binary-searches the parent-change index for the greatest recorded
// offset <= off. Offsets before the first change point resolve to RootTag;
// negative offsets are a programming error.
func (t *Table) EnclosingTag(off int) int {
	if off < 0 {
		panic("tagtable: negative offset")
	}
	// First index with changeOffsets[i] > off, minus one (round down).
	idx := sort.SearchInts(t.changeOffsets, off+1) - 1
	if idx < 0 {
		return RootTag
	}
	return t.changeIDs[idx]
}

// Builder accumulates tag records and parent-change points in document
// order. Tags are assigned ids at open, so a parent's id is always smaller
// than any of its descendants'.
type Builder struct {
	t Table
}

// NewBuilder returns a Builder sized for roughly sizeHint tags. The
// parent-change index is seeded with an entry mapping offset 0 to RootTag.
func NewBuilder(sizeHint int) *Builder {
	if sizeHint < 4 {
		sizeHint = 4
	}
	b := &Builder{}
	b.t.tags = make([]record, 0, sizeHint)
	b.t.changeOffsets = make([]int, 0, sizeHint*2)
	b.t.changeIDs = make([]int, 0, sizeHint*2)
	b.recordChange(0, RootTag)
	return b
}

// OpenTag registers a new tag with the given parent and opening delimiter
// range and returns its id. The closing delimiter is supplied later via
// CloseTag.
func (b *Builder) OpenTag(parent, openStart, openEnd int) int {
	id := len(b.t.tags)
	b.t.tags = append(b.t.tags, record{
		parent:     parent,
		openStart:  openStart,
		openEnd:    openEnd,
		closeStart: -1,
		closeEnd:   -1,
	})
	b.recordChange(openStart, id)
	return id
}

// CloseTag records the closing delimiter range of a previously opened tag.
func (b *Builder) CloseTag(tag, closeStart, closeEnd int) {
	r := &b.t.tags[tag]
	r.closeStart = closeStart
	r.closeEnd = closeEnd
	b.recordChange(closeEnd, r.parent)
}

// recordChange appends a parent-change point, keeping offsets strictly
// ascending. A change at the same offset as the previous one replaces it
// (the later registration wins, e.g. a tag opening exactly where its
// predecessor's close delimiter ended).
func (b *Builder) recordChange(off, tag int) {
	n := len(b.t.changeOffsets)
	if n > 0 && b.t.changeOffsets[n-1] == off {
		b.t.changeIDs[n-1] = tag
		return
	}
	if n > 0 && b.t.changeOffsets[n-1] > off {
		panic("tagtable: parent-change offsets must be ascending")
	}
	b.t.changeOffsets = append(b.t.changeOffsets, off)
	b.t.changeIDs = append(b.t.changeIDs, tag)
}

// Table returns the built table. The builder must not be used afterwards.
func (b *Builder) Table() *Table {
	return &b.t
}
