package model

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// PosMap translates positions across one applied step.
type PosMap interface {
	Map(pos Position, bias Bias) Position
}

// Step is one atomic edit of a document.
type Step interface {
	// Apply produces the next document state and the map for positions
	// across the edit. It never mutates doc.
	Apply(doc *Document) (*Document, PosMap, error)
}

// RangeMap describes the replacement of offsets [From, To) of the container
// at Path with Size new offsets.
type RangeMap struct {
	Path     []int
	From, To int
	Size     int
}

// Map translates pos. Positions inside the replaced span collapse to its start
// (BiasLeft) or end (BiasRight).
func (m RangeMap) Map(pos Position, bias Bias) Position {
	d := len(m.Path)
	if !hasPrefix(pos.Path, m.Path) {
		return pos
	}
	if len(pos.Path) == d {
		return Position{Path: pos.Path, Offset: m.mapOffset(pos.Offset, bias)}
	}
	c := pos.Path[d]
	switch {
	case c < m.From:
		return pos
	case c >= m.To:
		path := slices.Clone(pos.Path)
		path[d] = c + m.Size - (m.To - m.From)
		return Position{Path: path, Offset: pos.Offset}
	case bias == BiasLeft:
		return Position{Path: slices.Clone(m.Path), Offset: m.From}
	default:
		return Position{Path: slices.Clone(m.Path), Offset: m.From + m.Size}
	}
}

func (m RangeMap) mapOffset(off int, bias Bias) int {
	switch {
	case off < m.From:
		return off
	case off > m.To:
		return off + m.Size - (m.To - m.From)
	case m.From == m.To:
		if bias == BiasLeft {
			return off
		}
		return off + m.Size
	case off == m.From:
		return m.From
	case off == m.To:
		return m.From + m.Size
	case bias == BiasLeft:
		return m.From
	default:
		return m.From + m.Size
	}
}

// SplitMap describes splitting the node at Path into two siblings at offset At.
type SplitMap struct {
	Path []int
	At   int
}

// Map translates pos. The split point itself stays at the end of the first
// half for BiasLeft and moves to the start of the second half for BiasRight.
func (m SplitMap) Map(pos Position, bias Bias) Position {
	if len(m.Path) == 0 {
		return pos
	}
	parent := m.Path[:len(m.Path)-1]
	idx := m.Path[len(m.Path)-1]
	if !hasPrefix(pos.Path, parent) {
		return pos
	}
	d := len(parent)
	if len(pos.Path) == d {
		if pos.Offset > idx {
			return Position{Path: pos.Path, Offset: pos.Offset + 1}
		}
		return pos
	}
	c := pos.Path[d]
	if c > idx {
		path := slices.Clone(pos.Path)
		path[d] = c + 1
		return Position{Path: path, Offset: pos.Offset}
	}
	if c < idx {
		return pos
	}
	second := slices.Clone(m.Path)
	second[d] = idx + 1
	if len(pos.Path) == d+1 {
		switch {
		case pos.Offset < m.At:
			return pos
		case pos.Offset > m.At || bias == BiasRight:
			return Position{Path: second, Offset: pos.Offset - m.At}
		default:
			return pos
		}
	}
	inner := pos.Path[d+1]
	if inner < m.At {
		return pos
	}
	path := append(second, pos.Path[d+1:]...)
	path[d+1] = inner - m.At
	return Position{Path: path, Offset: pos.Offset}
}

// JoinMap describes merging child Index+1 of the container at Path into child
// Index, whose size before the join was LeftSize.
type JoinMap struct {
	Path     []int
	Index    int
	LeftSize int
}

// Map translates pos.
func (m JoinMap) Map(pos Position, _ Bias) Position {
	d := len(m.Path)
	if !hasPrefix(pos.Path, m.Path) {
		return pos
	}
	if len(pos.Path) == d {
		switch {
		case pos.Offset <= m.Index:
			return pos
		case pos.Offset == m.Index+1:
			return Position{Path: appendPath(m.Path, m.Index), Offset: m.LeftSize}
		default:
			return Position{Path: pos.Path, Offset: pos.Offset - 1}
		}
	}
	c := pos.Path[d]
	switch {
	case c <= m.Index:
		return pos
	case c > m.Index+1:
		path := slices.Clone(pos.Path)
		path[d] = c - 1
		return Position{Path: path, Offset: pos.Offset}
	}
	path := slices.Clone(pos.Path)
	path[d] = m.Index
	if len(pos.Path) == d+1 {
		return Position{Path: path, Offset: pos.Offset + m.LeftSize}
	}
	path[d+1] += m.LeftSize
	return Position{Path: path, Offset: pos.Offset}
}

type identityMap struct{}

func (identityMap) Map(pos Position, _ Bias) Position { return pos }

// ReplaceStep replaces children [From, To) of the element at Path with Nodes.
type ReplaceStep struct {
	Path     []int
	From, To int
	Nodes    []*Node
}

// Apply implements Step.
func (s ReplaceStep) Apply(doc *Document) (*Document, PosMap, error) {
	root, err := updateAt(doc.Root, s.Path, func(n *Node) (*Node, error) {
		if n.IsText() {
			return nil, fmt.Errorf("%w: cannot replace children of a text node", ErrInvalidStep)
		}
		if s.From < 0 || s.To < s.From || s.To > len(n.Children) {
			return nil, fmt.Errorf("%w: span [%d, %d) outside %d children", ErrInvalidStep, s.From, s.To, len(n.Children))
		}
		children := make([]*Node, 0, len(n.Children)-(s.To-s.From)+len(s.Nodes))
		children = append(children, n.Children[:s.From]...)
		children = append(children, s.Nodes...)
		children = append(children, n.Children[s.To:]...)
		return n.WithChildren(children), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc.WithRoot(root), RangeMap{Path: slices.Clone(s.Path), From: s.From, To: s.To, Size: len(s.Nodes)}, nil
}

// ReplaceTextStep replaces runes [From, To) of the text leaf at Path with Text.
type ReplaceTextStep struct {
	Path     []int
	From, To int
	Text     string
}

// Apply implements Step.
func (s ReplaceTextStep) Apply(doc *Document) (*Document, PosMap, error) {
	root, err := updateAt(doc.Root, s.Path, func(n *Node) (*Node, error) {
		if !n.IsText() {
			return nil, fmt.Errorf("%w: not a text node", ErrInvalidStep)
		}
		runes := []rune(n.Text)
		if s.From < 0 || s.To < s.From || s.To > len(runes) {
			return nil, fmt.Errorf("%w: span [%d, %d) outside text of length %d", ErrInvalidStep, s.From, s.To, len(runes))
		}
		c := n.Copy()
		c.Text = string(runes[:s.From]) + s.Text + string(runes[s.To:])
		return c, nil
	})
	if err != nil {
		return nil, nil, err
	}
	size := utf8.RuneCountInString(s.Text)
	return doc.WithRoot(root), RangeMap{Path: slices.Clone(s.Path), From: s.From, To: s.To, Size: size}, nil
}

// SetNodeStep replaces the data of the element at Path with that of Node,
// keeping the existing children. Positions are unaffected.
type SetNodeStep struct {
	Path []int
	Node *Node
}

// Apply implements Step.
func (s SetNodeStep) Apply(doc *Document) (*Document, PosMap, error) {
	root, err := updateAt(doc.Root, s.Path, func(n *Node) (*Node, error) {
		if n.Kind != s.Node.Kind {
			return nil, fmt.Errorf("%w: node kind mismatch", ErrInvalidStep)
		}
		c := s.Node.Copy()
		if !c.IsText() {
			c.Children = n.Children
		}
		return c, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc.WithRoot(root), identityMap{}, nil
}

// SplitStep splits the node at Path into two siblings at offset At. The
// second half copies the element data but starts without identity, subject
// or RDFa bookkeeping.
type SplitStep struct {
	Path []int
	At   int
}

// Apply implements Step.
func (s SplitStep) Apply(doc *Document) (*Document, PosMap, error) {
	if len(s.Path) == 0 {
		return nil, nil, fmt.Errorf("%w: cannot split the root", ErrInvalidStep)
	}
	parentPath := s.Path[:len(s.Path)-1]
	idx := s.Path[len(s.Path)-1]
	root, err := updateAt(doc.Root, parentPath, func(parent *Node) (*Node, error) {
		if idx < 0 || idx >= len(parent.Children) {
			return nil, fmt.Errorf("%w: no child %d", ErrInvalidStep, idx)
		}
		n := parent.Children[idx]
		if s.At < 0 || s.At > n.Size() {
			return nil, fmt.Errorf("%w: split offset %d outside [0, %d]", ErrInvalidStep, s.At, n.Size())
		}
		var first, second *Node
		if n.IsText() {
			runes := []rune(n.Text)
			first, second = Text(string(runes[:s.At])), Text(string(runes[s.At:]))
		} else {
			first = n.WithChildren(append([]*Node(nil), n.Children[:s.At]...))
			second = Element(n.Tag, n.Attrs, append([]*Node(nil), n.Children[s.At:]...)...)
		}
		children := make([]*Node, 0, len(parent.Children)+1)
		children = append(children, parent.Children[:idx]...)
		children = append(children, first, second)
		children = append(children, parent.Children[idx+1:]...)
		return parent.WithChildren(children), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc.WithRoot(root), SplitMap{Path: slices.Clone(s.Path), At: s.At}, nil
}

// JoinStep merges child Index+1 of the element at Path into child Index. Both
// children must be of the same kind; the right element's own data is dropped.
type JoinStep struct {
	Path  []int
	Index int
}

// Apply implements Step.
func (s JoinStep) Apply(doc *Document) (*Document, PosMap, error) {
	var leftSize int
	root, err := updateAt(doc.Root, s.Path, func(parent *Node) (*Node, error) {
		if s.Index < 0 || s.Index+1 >= len(parent.Children) {
			return nil, fmt.Errorf("%w: cannot join children %d and %d", ErrInvalidStep, s.Index, s.Index+1)
		}
		left, right := parent.Children[s.Index], parent.Children[s.Index+1]
		if left.Kind != right.Kind {
			return nil, fmt.Errorf("%w: cannot join nodes of different kinds", ErrInvalidStep)
		}
		leftSize = left.Size()
		var joined *Node
		if left.IsText() {
			joined = left.Copy()
			joined.Text = left.Text + right.Text
		} else {
			joined = left.WithChildren(append(append([]*Node(nil), left.Children...), right.Children...))
		}
		children := make([]*Node, 0, len(parent.Children)-1)
		children = append(children, parent.Children[:s.Index]...)
		children = append(children, joined)
		children = append(children, parent.Children[s.Index+2:]...)
		return parent.WithChildren(children), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc.WithRoot(root), JoinMap{Path: slices.Clone(s.Path), Index: s.Index, LeftSize: leftSize}, nil
}

// updateAt rebuilds the spine from root to path, replacing the node at path by fn's result.
func updateAt(root *Node, path []int, fn func(*Node) (*Node, error)) (*Node, error) {
	if len(path) == 0 {
		return fn(root)
	}
	idx := path[0]
	if root.IsText() || idx < 0 || idx >= len(root.Children) {
		return nil, fmt.Errorf("%w: path %v does not resolve", ErrInvalidPosition, path)
	}
	child, err := updateAt(root.Children[idx], path[1:], fn)
	if err != nil {
		return nil, err
	}
	children := append([]*Node(nil), root.Children...)
	children[idx] = child
	return root.WithChildren(children), nil
}
