// Package datastore provides an immutable, queryable snapshot of the triples
// extracted from a document together with the subject ↔ node indices.
//
// Every operation that narrows the triple set returns a new Datastore. The
// node indices of derived stores are computed lazily by intersecting the
// shared base index with the surviving subjects.
package datastore

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

// Source is the output of one RDFa read, used to build a Datastore.
type Source struct {
	Document *model.Document
	Quads    []term.Quad

	// SubjectNodes maps a subject value ("_:x" for blank nodes) to the
	// structural nodes declaring it, in document order.
	SubjectNodes map[string][]*model.Node

	// SubjectOrder lists the keys of SubjectNodes in document order.
	SubjectOrder []string

	// Literals maps the rdfaId of a literal node to the literal it holds.
	Literals map[string]term.Term

	Prefixes vocabulary.Prefixes
}

type baseIndex struct {
	nodes   map[string][]*model.Node
	subject map[*model.Node]string
	order   []string
}

// Datastore is an immutable triple snapshot over one document state.
type Datastore struct {
	doc      *model.Document
	quads    []term.Quad
	prefixes vocabulary.Prefixes
	literals map[string]term.Term
	base     *baseIndex

	// restricted stores only index subjects that still have triples.
	restricted bool

	once    sync.Once
	nodes   map[string][]*model.Node
	ordered []string
}

// New builds a datastore from a read result.
func New(src Source) *Datastore {
	base := &baseIndex{
		nodes:   make(map[string][]*model.Node, len(src.SubjectNodes)),
		subject: make(map[*model.Node]string),
	}
	seen := make(map[string]bool, len(src.SubjectOrder))
	add := func(s string) {
		if seen[s] {
			return
		}
		nodes := src.SubjectNodes[s]
		if len(nodes) == 0 {
			return
		}
		seen[s] = true
		base.order = append(base.order, s)
		base.nodes[s] = append([]*model.Node(nil), nodes...)
		for _, n := range nodes {
			base.subject[n] = s
		}
	}
	for _, s := range src.SubjectOrder {
		add(s)
	}
	for s := range src.SubjectNodes {
		add(s)
	}

	prefixes := src.Prefixes
	if prefixes == nil {
		prefixes = vocabulary.DefaultPrefixes()
	}
	literals := src.Literals
	if literals == nil {
		literals = map[string]term.Term{}
	}
	return &Datastore{
		doc:      src.Document,
		quads:    append([]term.Quad(nil), src.Quads...),
		prefixes: prefixes,
		literals: literals,
		base:     base,
	}
}

func (ds *Datastore) derive(quads []term.Quad) *Datastore {
	return &Datastore{
		doc:        ds.doc,
		quads:      quads,
		prefixes:   ds.prefixes,
		literals:   ds.literals,
		base:       ds.base,
		restricted: true,
	}
}

func (ds *Datastore) index() {
	ds.once.Do(func() {
		if !ds.restricted {
			ds.nodes = ds.base.nodes
			ds.ordered = ds.base.order
			return
		}
		live := make(map[string]bool)
		for _, q := range ds.quads {
			live[q.Subject.SubjectValue()] = true
		}
		ds.nodes = make(map[string][]*model.Node)
		for _, s := range ds.base.order {
			if live[s] {
				ds.nodes[s] = ds.base.nodes[s]
				ds.ordered = append(ds.ordered, s)
			}
		}
	})
}

// Document returns the document state the datastore was read from.
func (ds *Datastore) Document() *model.Document { return ds.doc }

// Prefixes returns the prefix table used to resolve concise terms.
func (ds *Datastore) Prefixes() vocabulary.Prefixes { return ds.prefixes.Clone() }

// Len returns the number of quads.
func (ds *Datastore) Len() int { return len(ds.quads) }

// Literal returns the literal held by the literal node with the given rdfaId.
func (ds *Datastore) Literal(rdfaID string) (term.Term, bool) {
	t, ok := ds.literals[rdfaID]
	return t, ok
}

// Resolve replaces a LiteralNode by the literal it holds. Other terms are
// returned unchanged.
func (ds *Datastore) Resolve(t term.Term) term.Term {
	if t.Type == term.TypeLiteralNode {
		if lit, ok := ds.literals[t.Value]; ok {
			return lit
		}
	}
	return t
}

// Subjects lists the indexed subject values in document order.
func (ds *Datastore) Subjects() []string {
	ds.index()
	return append([]string(nil), ds.ordered...)
}

// Nodes returns the structural nodes declaring subject.
func (ds *Datastore) Nodes(subject string) []*model.Node {
	ds.index()
	return append([]*model.Node(nil), ds.nodes[subject]...)
}

// SubjectOf returns the subject declared by n if it is indexed.
func (ds *Datastore) SubjectOf(n *model.Node) (string, bool) {
	ds.index()
	s, ok := ds.base.subject[n]
	if !ok {
		return "", false
	}
	_, live := ds.nodes[s]
	return s, live
}

// Quads returns a copy of the quads.
func (ds *Datastore) Quads() []term.Quad {
	return append([]term.Quad(nil), ds.quads...)
}

// AsQuads returns a sequence over the quads. Each call starts afresh.
func (ds *Datastore) AsQuads() iter.Seq[term.Quad] {
	return func(yield func(term.Quad) bool) {
		for _, q := range ds.quads {
			if !yield(q) {
				return
			}
		}
	}
}

// AsSubjectNodes returns a sequence of subjects with their structural nodes,
// in document order. Each call starts afresh.
func (ds *Datastore) AsSubjectNodes() iter.Seq2[term.Term, []*model.Node] {
	return func(yield func(term.Term, []*model.Node) bool) {
		ds.index()
		for _, s := range ds.ordered {
			if !yield(subjectTerm(s), append([]*model.Node(nil), ds.nodes[s]...)) {
				return
			}
		}
	}
}

// Match keeps the quads matching the pattern. Each argument is nil (any), a
// term.Term or a concise string such as "besluit:Besluit". An argument that
// cannot be resolved matches nothing.
func (ds *Datastore) Match(subject, predicate, object any) *Datastore {
	s, ok := ds.pattern(subject, false)
	if !ok {
		return ds.derive(nil)
	}
	p, ok := ds.pattern(predicate, true)
	if !ok {
		return ds.derive(nil)
	}
	o, ok := ds.pattern(object, false)
	if !ok {
		return ds.derive(nil)
	}

	var out []term.Quad
	for _, q := range ds.quads {
		if ds.matches(s, q.Subject) && ds.matches(p, q.Predicate) && ds.matches(o, q.Object) {
			out = append(out, q)
		}
	}
	return ds.derive(out)
}

// pattern resolves a match argument. A zero term means wildcard.
func (ds *Datastore) pattern(arg any, predicate bool) (term.Term, bool) {
	switch v := arg.(type) {
	case nil:
		return term.Term{}, true
	case term.Term:
		if v.Type == term.TypeVariable {
			return term.Term{}, true
		}
		return v, true
	case *term.Term:
		if v == nil {
			return term.Term{}, true
		}
		return ds.pattern(*v, predicate)
	case string:
		if v == "" {
			return term.Term{}, true
		}
		var t term.Term
		var err error
		if predicate {
			t, err = term.ParseConcisePredicate(v, ds.prefixes)
		} else {
			t, err = term.ParseConcise(v, ds.prefixes)
		}
		if err != nil {
			return term.Term{}, false
		}
		return ds.pattern(t, predicate)
	case fmt.Stringer:
		return ds.pattern(v.String(), predicate)
	}
	return term.Term{}, false
}

func (ds *Datastore) matches(pattern, actual term.Term) bool {
	if pattern.IsZero() {
		return true
	}
	if term.Equals(pattern, actual) {
		return true
	}
	switch pattern.Type {
	case term.TypeResourceNode:
		return actual.IsResource() && actual.SubjectValue() == pattern.Value
	case term.TypeNamedNode, term.TypeBlankNode:
		return actual.Type == term.TypeResourceNode && actual.Value == pattern.SubjectValue()
	case term.TypeLiteral:
		if actual.Type != term.TypeLiteralNode {
			return false
		}
		lit, ok := ds.literals[actual.Value]
		return ok && term.Equals(pattern, lit)
	case term.TypeLiteralNode:
		return actual.Type == term.TypeLiteralNode && actual.Value == pattern.Value
	}
	return false
}

// LimitToRange keeps the quads whose subject is reachable from r according
// to strategy. r must belong to the datastore's document; a range from
// another document panics with model.ErrForeignRange.
func (ds *Datastore) LimitToRange(r model.Range, strategy Strategy) *Datastore {
	if r.Document() != ds.doc {
		panic(fmt.Errorf("%w: limit to range", model.ErrForeignRange))
	}
	if strategy == nil {
		strategy = RangeContains
	}
	reachable := make(map[string]bool)
	for _, n := range strategy(r) {
		if s, ok := ds.base.subject[n]; ok {
			reachable[s] = true
		}
	}
	var out []term.Quad
	for _, q := range ds.quads {
		if reachable[q.Subject.SubjectValue()] {
			out = append(out, q)
		}
	}
	return ds.derive(out)
}

// TransformDataset applies fn to a copy of the quads and returns a datastore
// over the result, keeping the node indices.
func (ds *Datastore) TransformDataset(fn func([]term.Quad) []term.Quad) *Datastore {
	return ds.derive(fn(ds.Quads()))
}

func subjectTerm(s string) term.Term {
	if strings.HasPrefix(s, "_:") {
		return term.BlankNode(s)
	}
	return term.NamedNode(s)
}
