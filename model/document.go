package model

import (
	"fmt"
	"sync"

	"github.com/c360studio/semdoc/vocabulary"
)

// Document is one immutable state of the structural tree.
//
// A *Node pointer should appear at most once in a tree; lookups by node
// resolve to its first occurrence in document order.
type Document struct {
	Root *Node

	// Declared holds the prefixes the document itself declares on top of the defaults.
	Declared vocabulary.Prefixes

	// Vocab is the vocabulary declared at the document root.
	Vocab string

	once  sync.Once
	byID  map[string]*Node
	paths map[*Node][]int
}

// NewDocument wraps a root node.
func NewDocument(root *Node) *Document {
	return &Document{Root: root, Declared: vocabulary.Prefixes{}}
}

// WithRoot returns a new document state with the same declarations.
func (d *Document) WithRoot(root *Node) *Document {
	return &Document{Root: root, Declared: d.Declared.Clone(), Vocab: d.Vocab}
}

// Prefixes returns the default prefix table merged with the document declarations.
func (d *Document) Prefixes() vocabulary.Prefixes {
	p := vocabulary.DefaultPrefixes().Merge(d.Declared)
	if d.Vocab != "" {
		p[""] = d.Vocab
	}
	return p
}

func (d *Document) index() {
	d.once.Do(func() {
		d.byID = make(map[string]*Node)
		d.paths = make(map[*Node][]int)

		type frame struct {
			node *Node
			path []int
		}
		stack := []frame{{node: d.Root}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := d.paths[f.node]; !seen {
				d.paths[f.node] = f.path
			}
			if f.node.RdfaID != "" {
				if _, seen := d.byID[f.node.RdfaID]; !seen {
					d.byID[f.node.RdfaID] = f.node
				}
			}
			for i := len(f.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: f.node.Children[i], path: appendPath(f.path, i)})
			}
		}
	})
}

// NodeAt resolves a path of child indices from the root.
func (d *Document) NodeAt(path []int) (*Node, error) {
	n := d.Root
	for depth, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			return nil, fmt.Errorf("%w: path %v fails at depth %d", ErrInvalidPosition, path, depth)
		}
		n = n.Children[idx]
	}
	return n, nil
}

// PathOf returns the path of n from the root.
func (d *Document) PathOf(n *Node) ([]int, bool) {
	d.index()
	p, ok := d.paths[n]
	if !ok {
		return nil, false
	}
	return append([]int(nil), p...), true
}

// Contains reports whether n is part of this document.
func (d *Document) Contains(n *Node) bool {
	d.index()
	_, ok := d.paths[n]
	return ok
}

// NodeByRdfaID finds the element with the given identifier.
func (d *Document) NodeByRdfaID(id string) (*Node, bool) {
	d.index()
	n, ok := d.byID[id]
	return n, ok
}

// MustNodeByRdfaID is NodeByRdfaID for identifiers that must exist. It panics
// when the identifier is unknown.
func (d *Document) MustNodeByRdfaID(id string) *Node {
	n, ok := d.NodeByRdfaID(id)
	if !ok {
		panic(fmt.Errorf("%w: rdfaId %q", ErrNodeNotFound, id))
	}
	return n
}

// RdfaIDs returns every identifier present in the document.
func (d *Document) RdfaIDs() []string {
	d.index()
	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	return ids
}

// Start is the first position in the document.
func (d *Document) Start() Position {
	return Position{}
}

// End is the last position in the document.
func (d *Document) End() Position {
	return Position{Offset: len(d.Root.Children)}
}

// PosBefore returns the position immediately before n.
func (d *Document) PosBefore(n *Node) (Position, error) {
	path, ok := d.PathOf(n)
	if !ok {
		return Position{}, ErrNodeNotFound
	}
	if len(path) == 0 {
		return d.Start(), nil
	}
	return Position{Path: path[:len(path)-1], Offset: path[len(path)-1]}, nil
}

// PosAfter returns the position immediately after n.
func (d *Document) PosAfter(n *Node) (Position, error) {
	path, ok := d.PathOf(n)
	if !ok {
		return Position{}, ErrNodeNotFound
	}
	if len(path) == 0 {
		return d.End(), nil
	}
	return Position{Path: path[:len(path)-1], Offset: path[len(path)-1] + 1}, nil
}

// Resolve checks that pos points inside this document.
func (d *Document) Resolve(pos Position) error {
	n, err := d.NodeAt(pos.Path)
	if err != nil {
		return err
	}
	if pos.Offset < 0 || pos.Offset > n.Size() {
		return fmt.Errorf("%w: offset %d outside [0, %d] at %v", ErrInvalidPosition, pos.Offset, n.Size(), pos.Path)
	}
	return nil
}

func appendPath(path []int, idx int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = idx
	return out
}
