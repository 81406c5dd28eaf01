// Package walker provides filtered, bidirectional traversal over a model
// document. A walk starts from the document root, from a subtree, or from a
// range, and visits nodes in document order (or its exact reverse).
//
// The filter decides per node: Accept yields the node and descends, Skip
// descends without yielding, Reject prunes the subtree. Walks use an explicit
// stack so arbitrarily deep trees are safe.
package walker

import (
	"iter"

	"github.com/c360studio/semdoc/model"
)

// Verdict is the filter outcome for a node.
type Verdict uint8

// Filter verdicts.
const (
	Accept Verdict = iota
	Skip
	Reject
)

// Filter classifies a node during a walk.
type Filter func(n *model.Node) Verdict

// AcceptAll yields every node.
func AcceptAll(*model.Node) Verdict { return Accept }

// Elements yields element nodes and skips text.
func Elements(n *model.Node) Verdict {
	if n.IsText() {
		return Skip
	}
	return Accept
}

// Subjects yields nodes that declare an RDF subject.
func Subjects(n *model.Node) Verdict {
	if n.IsSubject() {
		return Accept
	}
	return Skip
}

// RdfaAware yields nodes that carry RDFa bookkeeping.
func RdfaAware(n *model.Node) Verdict {
	if n.IsRdfaAware() {
		return Accept
	}
	return Skip
}

// Options configure a walk.
type Options struct {
	// Filter defaults to AcceptAll.
	Filter Filter

	// Reverse walks in reverse document order.
	Reverse bool
}

// Walker is a single-use cursor over a document.
type Walker struct {
	doc     *model.Document
	root    *model.Node
	rootAt  []int
	rng     *model.Range
	filter  Filter
	reverse bool

	stack   []frame
	started bool
	current *model.Node
}

type frame struct {
	node    *model.Node
	path    []int
	visited bool
	yield   bool
}

// FromRoot walks the whole document, root included.
func FromRoot(doc *model.Document, opts Options) *Walker {
	return newWalker(doc, doc.Root, nil, nil, opts)
}

// FromSubtree walks n and its descendants. n must belong to doc.
func FromSubtree(doc *model.Document, n *model.Node, opts Options) (*Walker, error) {
	path, ok := doc.PathOf(n)
	if !ok {
		return nil, model.ErrNodeNotFound
	}
	return newWalker(doc, n, path, nil, opts), nil
}

// FromRange walks the nodes wholly inside r. Nodes that only partially overlap
// r are descended into but never yielded; a collapsed range yields nothing.
func FromRange(r model.Range, opts Options) *Walker {
	doc := r.Document()
	return newWalker(doc, doc.Root, nil, &r, opts)
}

func newWalker(doc *model.Document, root *model.Node, rootAt []int, rng *model.Range, opts Options) *Walker {
	filter := opts.Filter
	if filter == nil {
		filter = AcceptAll
	}
	return &Walker{
		doc:     doc,
		root:    root,
		rootAt:  rootAt,
		rng:     rng,
		filter:  filter,
		reverse: opts.Reverse,
	}
}

// Current returns the node last returned by Next.
func (w *Walker) Current() *model.Node {
	return w.current
}

// Next advances to the next yielded node.
func (w *Walker) Next() (*model.Node, bool) {
	if !w.started {
		w.started = true
		if w.rng == nil || !w.rng.Collapsed() {
			w.stack = append(w.stack, frame{node: w.root, path: w.rootAt})
		}
	}
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		if f.visited {
			if f.yield {
				w.current = f.node
				return f.node, true
			}
			continue
		}

		yield, descend := w.classify(f)
		if !descend {
			continue
		}
		if w.reverse {
			w.stack = append(w.stack, frame{node: f.node, visited: true, yield: yield})
			for i, c := range f.node.Children {
				w.stack = append(w.stack, frame{node: c, path: childPath(f.path, i)})
			}
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			w.stack = append(w.stack, frame{node: f.node.Children[i], path: childPath(f.path, i)})
		}
		if yield {
			w.current = f.node
			return f.node, true
		}
	}
	w.current = nil
	return nil, false
}

// classify reports whether the node in f is yielded and whether its children
// are visited.
func (w *Walker) classify(f frame) (yield, descend bool) {
	v := w.filter(f.node)
	if v == Reject {
		return false, false
	}
	if w.rng == nil {
		return v == Accept, true
	}
	before, after := span(w.doc, f.path)
	if !w.rng.Overlaps(before, after) {
		return false, false
	}
	return v == Accept && w.rng.Covers(before, after), true
}

// span returns the boundary positions around the node at path.
func span(doc *model.Document, path []int) (model.Position, model.Position) {
	if len(path) == 0 {
		return doc.Start(), doc.End()
	}
	parent := path[:len(path)-1]
	idx := path[len(path)-1]
	return model.Position{Path: parent, Offset: idx}, model.Position{Path: parent, Offset: idx + 1}
}

func childPath(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}

// Nodes returns a fresh sequence over the walk. Each call restarts it.
func (w *Walker) Nodes() iter.Seq[*model.Node] {
	return func(yield func(*model.Node) bool) {
		c := newWalker(w.doc, w.root, w.rootAt, w.rng, Options{Filter: w.filter, Reverse: w.reverse})
		for {
			n, ok := c.Next()
			if !ok || !yield(n) {
				return
			}
		}
	}
}

// Collect returns all nodes of a fresh walk.
func (w *Walker) Collect() []*model.Node {
	var out []*model.Node
	for n := range w.Nodes() {
		out = append(out, n)
	}
	return out
}
