// Package model provides the structural document tree the RDFa core reconciles
// against: immutable nodes, documents, positions, ranges, and the steps and
// mappings that describe edits.
//
// Nodes are treated as immutable once they are part of a Document. Edits build
// new nodes along the edited path and share every untouched subtree, so a
// *Node pointer is a stable identity for the lifetime of the documents that
// contain it.
package model

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/semdoc/term"
)

// Kind distinguishes element nodes from text leaves.
type Kind uint8

// Node kinds.
const (
	KindElement Kind = iota + 1
	KindText
)

// Node is a structural document node.
type Node struct {
	Kind Kind

	// Tag is the lower-case element name. Empty for text nodes.
	Tag string

	// Attrs holds the non-RDFa HTML attributes of an element.
	Attrs map[string]string

	// Text is the content of a text node.
	Text string

	Children []*Node

	// RdfaID is the stable identifier of an RDFa-aware element.
	RdfaID string

	// Resource is the subject value declared by this node ("_:x" for blank nodes).
	Resource string

	// Properties are the outgoing triples authored at this node.
	Properties []term.OutgoingTriple

	// Backlinks are the incoming triples that point at this node.
	Backlinks []term.IncomingTriple
}

// Element creates an element node.
func Element(tag string, attrs map[string]string, children ...*Node) *Node {
	return &Node{
		Kind:     KindElement,
		Tag:      strings.ToLower(tag),
		Attrs:    cloneAttrs(attrs),
		Children: children,
	}
}

// Text creates a text leaf.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// IsSubject reports whether n declares an RDF subject.
func (n *Node) IsSubject() bool {
	return n.Resource != ""
}

// IsLiteral reports whether n is the object of some triple without being a subject itself.
func (n *Node) IsLiteral() bool {
	return n.Resource == "" && len(n.Backlinks) > 0
}

// IsRdfaAware reports whether n carries any RDFa bookkeeping.
func (n *Node) IsRdfaAware() bool {
	return n.RdfaID != "" || n.Resource != "" || len(n.Properties) > 0 || len(n.Backlinks) > 0
}

// Subject returns the subject term declared by n, or the zero term.
func (n *Node) Subject() term.Term {
	switch {
	case n.Resource == "":
		return term.Term{}
	case strings.HasPrefix(n.Resource, "_:"):
		return term.BlankNode(n.Resource)
	default:
		return term.NamedNode(n.Resource)
	}
}

// Size is the number of offsets inside n: runes for text, children for elements.
func (n *Node) Size() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	return len(n.Children)
}

// Attr returns the value of a non-RDFa attribute.
func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

// AttrKeys returns the attribute names in lexical order.
func (n *Node) AttrKeys() []string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextContent concatenates the text of all descendant leaves.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var sb strings.Builder
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsText() {
			sb.WriteString(cur.Text)
			continue
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return sb.String()
}

// Copy returns a shallow copy of n with independent attribute map and slices.
// Children pointers are shared.
func (n *Node) Copy() *Node {
	c := *n
	c.Attrs = cloneAttrs(n.Attrs)
	c.Children = append([]*Node(nil), n.Children...)
	c.Properties = append([]term.OutgoingTriple(nil), n.Properties...)
	c.Backlinks = append([]term.IncomingTriple(nil), n.Backlinks...)
	return &c
}

// WithChildren returns a copy of n with the given children.
func (n *Node) WithChildren(children []*Node) *Node {
	c := n.Copy()
	c.Children = children
	return c
}

// WithAttr returns a copy of n with one attribute set. An empty value removes it.
func (n *Node) WithAttr(key, value string) *Node {
	c := n.Copy()
	if value == "" {
		delete(c.Attrs, key)
		return c
	}
	if c.Attrs == nil {
		c.Attrs = make(map[string]string)
	}
	c.Attrs[key] = value
	return c
}

// WithResource returns a copy of n declaring the given subject.
func (n *Node) WithResource(resource string) *Node {
	c := n.Copy()
	c.Resource = resource
	return c
}

// WithProperties returns a copy of n with the given outgoing triples.
func (n *Node) WithProperties(props []term.OutgoingTriple) *Node {
	c := n.Copy()
	c.Properties = append([]term.OutgoingTriple(nil), props...)
	return c
}

// WithBacklinks returns a copy of n with the given incoming triples.
func (n *Node) WithBacklinks(links []term.IncomingTriple) *Node {
	c := n.Copy()
	c.Backlinks = append([]term.IncomingTriple(nil), links...)
	return c
}

// WithRdfaID returns a copy of n with the given identifier.
func (n *Node) WithRdfaID(id string) *Node {
	c := n.Copy()
	c.RdfaID = id
	return c
}

func cloneAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
