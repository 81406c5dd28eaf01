package model

import (
	"cmp"
	"fmt"
	"slices"
)

// Position is a boundary point: the path of a container node from the root
// plus an offset inside it. For elements the offset is a child index, for text
// leaves it is a rune offset.
type Position struct {
	Path   []int
	Offset int
}

// Pos builds a position from an offset and a container path.
func Pos(offset int, path ...int) Position {
	return Position{Path: path, Offset: offset}
}

// Equal reports whether two positions denote the same boundary point.
func (p Position) Equal(o Position) bool {
	return p.Offset == o.Offset && slices.Equal(p.Path, o.Path)
}

// String formats the position as path:offset.
func (p Position) String() string {
	return fmt.Sprintf("%v:%d", p.Path, p.Offset)
}

// Compare orders two positions in document order. It returns -1, 0 or 1.
func Compare(a, b Position) int {
	n := min(len(a.Path), len(b.Path))
	for i := 0; i < n; i++ {
		if a.Path[i] != b.Path[i] {
			return cmp.Compare(a.Path[i], b.Path[i])
		}
	}
	switch {
	case len(a.Path) == len(b.Path):
		return cmp.Compare(a.Offset, b.Offset)
	case len(a.Path) < len(b.Path):
		if a.Offset <= b.Path[len(a.Path)] {
			return -1
		}
		return 1
	default:
		if b.Offset <= a.Path[len(b.Path)] {
			return 1
		}
		return -1
	}
}

// Bias selects which side of an insertion a position sticks to.
type Bias int8

// Bias values.
const (
	// BiasLeft keeps a position attached to the content before an insertion.
	BiasLeft Bias = -1
	// BiasRight attaches a position to the content after an insertion.
	BiasRight Bias = 1
)

// Range is an ordered pair of positions in one document.
type Range struct {
	Start Position
	End   Position
	doc   *Document
}

// NewRange builds a range over doc. The endpoints are put in document order.
func NewRange(doc *Document, a, b Position) (Range, error) {
	if err := doc.Resolve(a); err != nil {
		return Range{}, fmt.Errorf("range start: %w", err)
	}
	if err := doc.Resolve(b); err != nil {
		return Range{}, fmt.Errorf("range end: %w", err)
	}
	if Compare(a, b) > 0 {
		a, b = b, a
	}
	return Range{Start: a, End: b, doc: doc}, nil
}

// MustRange is NewRange for endpoints that must resolve. It panics otherwise.
func MustRange(doc *Document, a, b Position) Range {
	r, err := NewRange(doc, a, b)
	if err != nil {
		panic(err)
	}
	return r
}

// DocumentRange spans the whole document.
func DocumentRange(doc *Document) Range {
	return Range{Start: doc.Start(), End: doc.End(), doc: doc}
}

// NodeRange spans exactly one node of doc.
func NodeRange(doc *Document, n *Node) (Range, error) {
	before, err := doc.PosBefore(n)
	if err != nil {
		return Range{}, err
	}
	after, err := doc.PosAfter(n)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: before, End: after, doc: doc}, nil
}

// Document returns the document the range belongs to.
func (r Range) Document() *Document {
	return r.doc
}

// Collapsed reports whether the range is empty.
func (r Range) Collapsed() bool {
	return Compare(r.Start, r.End) == 0
}

// Contains reports whether pos lies within the range, endpoints included.
func (r Range) Contains(pos Position) bool {
	return Compare(r.Start, pos) <= 0 && Compare(pos, r.End) <= 0
}

// Covers reports whether the span [before, after] lies wholly inside the range.
func (r Range) Covers(before, after Position) bool {
	return Compare(r.Start, before) <= 0 && Compare(after, r.End) <= 0
}

// Overlaps reports whether the span [before, after] shares content with the
// range. A collapsed range overlaps a span it lies strictly inside.
func (r Range) Overlaps(before, after Position) bool {
	if r.Collapsed() {
		return Compare(before, r.Start) < 0 && Compare(r.Start, after) < 0
	}
	return Compare(before, r.End) < 0 && Compare(r.Start, after) < 0
}

// Encloses reports whether the span [before, after] contains the whole range.
func (r Range) Encloses(before, after Position) bool {
	return Compare(before, r.Start) <= 0 && Compare(r.End, after) <= 0
}

func hasPrefix(path, prefix []int) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}
