package model

import (
	"fmt"
	"slices"

	"github.com/c360studio/semdoc/term"
)

// Transaction accumulates steps against a document. Positions passed to its
// methods refer to the current state, Doc(). The first failing step sticks:
// later calls are no-ops and Err reports it.
type Transaction struct {
	before  *Document
	doc     *Document
	steps   []Step
	mapping *Mapping
	err     error
}

// NewTransaction starts a transaction on doc.
func NewTransaction(doc *Document) *Transaction {
	return &Transaction{before: doc, doc: doc, mapping: NewMapping()}
}

// Before returns the document the transaction started from.
func (t *Transaction) Before() *Document { return t.before }

// Doc returns the current document state.
func (t *Transaction) Doc() *Document { return t.doc }

// Steps returns the applied steps.
func (t *Transaction) Steps() []Step { return slices.Clone(t.steps) }

// Mapping returns the composed position mapping from Before to Doc.
func (t *Transaction) Mapping() *Mapping { return t.mapping }

// Err returns the first error encountered.
func (t *Transaction) Err() error { return t.err }

// DocChanged reports whether any step was applied.
func (t *Transaction) DocChanged() bool { return len(t.steps) > 0 }

// Step applies a single step.
func (t *Transaction) Step(s Step) *Transaction {
	if t.err != nil {
		return t
	}
	doc, pm, err := s.Apply(t.doc)
	if err != nil {
		t.err = err
		return t
	}
	t.doc = doc
	t.steps = append(t.steps, s)
	t.mapping.Append(pm)
	return t
}

func (t *Transaction) fail(err error) *Transaction {
	if t.err == nil {
		t.err = err
	}
	return t
}

func (t *Transaction) container(path []int) (*Node, bool) {
	if t.err != nil {
		return nil, false
	}
	n, err := t.doc.NodeAt(path)
	if err != nil {
		t.err = err
		return nil, false
	}
	return n, true
}

// mapSince maps pos through the maps appended after the first from maps.
func (t *Transaction) mapSince(from int, pos Position, bias Bias) Position {
	return NewMapping(t.mapping.maps[from:]...).Map(pos, bias)
}

// Insert places nodes at pos. A position inside a text leaf splits the leaf
// first.
func (t *Transaction) Insert(pos Position, nodes ...*Node) *Transaction {
	n, ok := t.container(pos.Path)
	if !ok {
		return t
	}
	if n.IsText() {
		if len(pos.Path) == 0 {
			return t.fail(fmt.Errorf("%w: root is a text node", ErrInvalidStep))
		}
		parent := slices.Clone(pos.Path[:len(pos.Path)-1])
		idx := pos.Path[len(pos.Path)-1]
		switch pos.Offset {
		case 0:
			return t.Step(ReplaceStep{Path: parent, From: idx, To: idx, Nodes: nodes})
		case n.Size():
			return t.Step(ReplaceStep{Path: parent, From: idx + 1, To: idx + 1, Nodes: nodes})
		}
		t.Step(SplitStep{Path: slices.Clone(pos.Path), At: pos.Offset})
		return t.Step(ReplaceStep{Path: parent, From: idx + 1, To: idx + 1, Nodes: nodes})
	}
	return t.Step(ReplaceStep{Path: slices.Clone(pos.Path), From: pos.Offset, To: pos.Offset, Nodes: nodes})
}

// InsertText inserts text at pos. Inside an element a new text leaf is created.
func (t *Transaction) InsertText(pos Position, text string) *Transaction {
	n, ok := t.container(pos.Path)
	if !ok || text == "" {
		return t
	}
	if n.IsText() {
		return t.Step(ReplaceTextStep{Path: slices.Clone(pos.Path), From: pos.Offset, To: pos.Offset, Text: text})
	}
	return t.Insert(pos, Text(text))
}

// DeleteText removes runes [from, to) of the text leaf at path.
func (t *Transaction) DeleteText(path []int, from, to int) *Transaction {
	if _, ok := t.container(path); !ok {
		return t
	}
	return t.Step(ReplaceTextStep{Path: slices.Clone(path), From: from, To: to})
}

// Delete removes the content of r, which must belong to the current
// document. Containers only partially covered by r are kept and trimmed;
// they are not joined.
func (t *Transaction) Delete(r Range) *Transaction {
	if t.err != nil {
		return t
	}
	if r.doc != t.doc {
		return t.fail(ErrForeignRange)
	}
	if r.Collapsed() {
		return t
	}
	start, end := r.Start, r.End
	c := commonDepth(start.Path, end.Path)

	// Trailing side first: it only touches content after the start branch.
	for d := len(end.Path); d > c; d-- {
		to := end.Offset
		if d < len(end.Path) {
			to = end.Path[d]
		}
		t.deleteSpan(end.Path[:d], 0, to)
	}

	from := start.Offset
	if len(start.Path) > c {
		from = start.Path[c] + 1
	}
	to := end.Offset
	if len(end.Path) > c {
		to = end.Path[c]
	}
	t.deleteSpan(start.Path[:c], from, to)

	for d := len(start.Path); d > c; d-- {
		container, ok := t.container(start.Path[:d])
		if !ok {
			return t
		}
		from := start.Offset
		if d < len(start.Path) {
			from = start.Path[d] + 1
		}
		t.deleteSpan(start.Path[:d], from, container.Size())
	}
	return t
}

func (t *Transaction) deleteSpan(path []int, from, to int) {
	if from >= to {
		return
	}
	n, ok := t.container(path)
	if !ok {
		return
	}
	if n.IsText() {
		t.Step(ReplaceTextStep{Path: slices.Clone(path), From: from, To: to})
		return
	}
	t.Step(ReplaceStep{Path: slices.Clone(path), From: from, To: to})
}

// Replace deletes r and inserts nodes at its start.
func (t *Transaction) Replace(r Range, nodes ...*Node) *Transaction {
	mark := t.mapping.Len()
	t.Delete(r)
	if t.err != nil {
		return t
	}
	return t.Insert(t.mapSince(mark, r.Start, BiasLeft), nodes...)
}

// Move relocates the children spanned by r, which must start and end in the
// same element, to target. target refers to the document before the move and
// must lie outside r. Moved nodes keep their identity.
func (t *Transaction) Move(r Range, target Position) *Transaction {
	if t.err != nil {
		return t
	}
	if !slices.Equal(r.Start.Path, r.End.Path) {
		return t.fail(fmt.Errorf("%w: move range must start and end in one element", ErrInvalidStep))
	}
	if r.Contains(target) && !target.Equal(r.Start) && !target.Equal(r.End) {
		return t.fail(fmt.Errorf("%w: move target %s inside moved range", ErrInvalidStep, target))
	}
	n, ok := t.container(r.Start.Path)
	if !ok {
		return t
	}
	if n.IsText() {
		return t.fail(fmt.Errorf("%w: move range must select elements", ErrInvalidStep))
	}
	nodes := slices.Clone(n.Children[r.Start.Offset:r.End.Offset])
	mark := t.mapping.Len()
	t.Delete(r)
	if t.err != nil {
		return t
	}
	return t.Insert(t.mapSince(mark, target, BiasLeft), nodes...)
}

// SetNode replaces the data of the node at path, keeping its children.
func (t *Transaction) SetNode(path []int, n *Node) *Transaction {
	if t.err != nil {
		return t
	}
	return t.Step(SetNodeStep{Path: slices.Clone(path), Node: n})
}

func (t *Transaction) update(path []int, fn func(*Node) *Node) *Transaction {
	n, ok := t.container(path)
	if !ok {
		return t
	}
	return t.SetNode(path, fn(n))
}

// SetAttr sets one HTML attribute on the element at path. An empty value removes it.
func (t *Transaction) SetAttr(path []int, key, value string) *Transaction {
	return t.update(path, func(n *Node) *Node { return n.WithAttr(key, value) })
}

// SetResource makes the element at path declare the given subject.
func (t *Transaction) SetResource(path []int, resource string) *Transaction {
	return t.update(path, func(n *Node) *Node { return n.WithResource(resource) })
}

// SetProperties replaces the outgoing triples of the element at path.
func (t *Transaction) SetProperties(path []int, props []term.OutgoingTriple) *Transaction {
	return t.update(path, func(n *Node) *Node { return n.WithProperties(props) })
}

// AddProperty appends one outgoing triple to the element at path.
func (t *Transaction) AddProperty(path []int, predicate string, object term.Term) *Transaction {
	return t.update(path, func(n *Node) *Node {
		return n.WithProperties(append(slices.Clone(n.Properties), term.OutgoingTriple{Predicate: predicate, Object: object}))
	})
}

// RemoveProperty drops every outgoing triple of the element at path that
// equals the given one.
func (t *Transaction) RemoveProperty(path []int, predicate string, object term.Term) *Transaction {
	want := term.OutgoingTriple{Predicate: predicate, Object: object}
	return t.update(path, func(n *Node) *Node {
		return n.WithProperties(slices.DeleteFunc(slices.Clone(n.Properties), want.Equals))
	})
}

// Split splits the container of pos at its offset.
func (t *Transaction) Split(pos Position) *Transaction {
	if t.err != nil {
		return t
	}
	return t.Step(SplitStep{Path: slices.Clone(pos.Path), At: pos.Offset})
}

// Join merges child index+1 of the element at path into child index.
func (t *Transaction) Join(path []int, index int) *Transaction {
	if t.err != nil {
		return t
	}
	return t.Step(JoinStep{Path: slices.Clone(path), Index: index})
}

func commonDepth(a, b []int) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
