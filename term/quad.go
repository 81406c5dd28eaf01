package term

import "strings"

// Quad is a triple with an optional graph. A zero Graph means the default graph.
type Quad struct {
	Subject   Term `json:"subject"`
	Predicate Term `json:"predicate"`
	Object    Term `json:"object"`
	Graph     Term `json:"graph"`
}

// NewQuad returns a quad in the default graph.
func NewQuad(subject, predicate, object Term) Quad {
	return Quad{Subject: subject, Predicate: predicate, Object: object, Graph: DefaultGraph()}
}

// Equals compares quads component-wise. A zero graph equals the default graph.
func (q Quad) Equals(other Quad) bool {
	return Equals(q.Subject, other.Subject) &&
		Equals(q.Predicate, other.Predicate) &&
		Equals(q.Object, other.Object) &&
		Equals(q.graph(), other.graph())
}

func (q Quad) graph() Term {
	if q.Graph.IsZero() {
		return DefaultGraph()
	}
	return q.Graph
}

// Key returns a string that is equal for two quads exactly when Equals holds.
func (q Quad) Key() string {
	return q.Subject.Key() + "\x00" + q.Predicate.Key() + "\x00" + q.Object.Key() + "\x00" + q.graph().Key()
}

// String renders the quad as a single N-Quads-like line.
func (q Quad) String() string {
	var sb strings.Builder
	sb.WriteString(q.Subject.String())
	sb.WriteByte(' ')
	sb.WriteString(q.Predicate.String())
	sb.WriteByte(' ')
	sb.WriteString(q.Object.String())
	if g := q.graph(); g.Type != TypeDefaultGraph {
		sb.WriteByte(' ')
		sb.WriteString(g.String())
	}
	sb.WriteString(" .")
	return sb.String()
}

// OutgoingTriple is a properties entry on a structural node: the node's subject
// is implied.
type OutgoingTriple struct {
	Predicate string `json:"predicate"`
	Object    Term   `json:"object"`
}

// Equals compares two outgoing triples.
func (t OutgoingTriple) Equals(other OutgoingTriple) bool {
	return t.Predicate == other.Predicate && Equals(t.Object, other.Object)
}

// IncomingTriple is a backlinks entry on a structural node: the node itself is
// the object. Subject is a LiteralNode of the subject IRI when the node is a
// literal element, a ResourceNode when the subject has a structural node, and
// a NamedNode or BlankNode otherwise.
type IncomingTriple struct {
	Subject   Term   `json:"subject"`
	Predicate string `json:"predicate"`
}

// Equals compares two incoming triples.
func (t IncomingTriple) Equals(other IncomingTriple) bool {
	return t.Predicate == other.Predicate && Equals(t.Subject, other.Subject)
}
