// Package term provides the RDF term model used by the RDFa reconciliation core.
//
// A Term is a tagged union over the standard RDF/JS term kinds plus three
// document-specific kinds: ResourceNode (a subject materialized as a structural
// node), LiteralNode (a literal whose lexical value is the content of a
// structural node) and ContentLiteral (the content of the subject node itself).
package term

import (
	"fmt"
	"strings"

	"github.com/c360studio/semdoc/vocabulary"
)

// Type tags the variant held by a Term.
type Type uint8

// Term variants.
const (
	TypeInvalid Type = iota
	TypeNamedNode
	TypeBlankNode
	TypeLiteral
	TypeVariable
	TypeDefaultGraph
	TypeResourceNode
	TypeLiteralNode
	TypeContentLiteral
)

var typeNames = [...]string{
	TypeInvalid:        "Invalid",
	TypeNamedNode:      "NamedNode",
	TypeBlankNode:      "BlankNode",
	TypeLiteral:        "Literal",
	TypeVariable:       "Variable",
	TypeDefaultGraph:   "DefaultGraph",
	TypeResourceNode:   "ResourceNode",
	TypeLiteralNode:    "LiteralNode",
	TypeContentLiteral: "ContentLiteral",
}

// String returns the RDF/JS termType name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Term is an RDF term. The zero value is invalid.
//
// Value holds the IRI (NamedNode, ResourceNode), the blank node label without
// the "_:" prefix (BlankNode), the lexical form (Literal), the variable name
// (Variable) or the rdfaId of the structural node (LiteralNode). In the
// backlinks of a literal element a LiteralNode holds the subject IRI whose
// literal the element is. Datatype and
// Language are only meaningful for the literal-like variants.
type Term struct {
	Type     Type   `json:"termType"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Language string `json:"language,omitempty"`
}

// NamedNode returns an IRI term.
func NamedNode(iri string) Term {
	return Term{Type: TypeNamedNode, Value: iri}
}

// BlankNode returns a blank node term. A leading "_:" is stripped.
func BlankNode(label string) Term {
	return Term{Type: TypeBlankNode, Value: strings.TrimPrefix(label, "_:")}
}

// Literal returns a plain xsd:string literal.
func Literal(value string) Term {
	return Term{Type: TypeLiteral, Value: value, Datatype: vocabulary.XSDString}
}

// LangLiteral returns a language-tagged literal. An empty language yields a plain literal.
func LangLiteral(value, language string) Term {
	if language == "" {
		return Literal(value)
	}
	return Term{Type: TypeLiteral, Value: value, Datatype: vocabulary.RDFLangString, Language: strings.ToLower(language)}
}

// TypedLiteral returns a literal with an explicit datatype. An empty datatype yields a plain literal.
func TypedLiteral(value, datatype string) Term {
	if datatype == "" {
		return Literal(value)
	}
	return Term{Type: TypeLiteral, Value: value, Datatype: datatype}
}

// Variable returns a query variable.
func Variable(name string) Term {
	return Term{Type: TypeVariable, Value: strings.TrimPrefix(name, "?")}
}

// DefaultGraph returns the default graph term.
func DefaultGraph() Term {
	return Term{Type: TypeDefaultGraph}
}

// ResourceNode returns a term referring to the structural node(s) declaring subject.
func ResourceNode(subject string) Term {
	return Term{Type: TypeResourceNode, Value: subject}
}

// LiteralNode returns a term referring to the structural node with the given rdfaId
// whose content is the literal value.
func LiteralNode(rdfaID string) Term {
	return Term{Type: TypeLiteralNode, Value: rdfaID}
}

// LiteralNodeOf returns a LiteralNode carrying the datatype and language of its content.
func LiteralNodeOf(rdfaID, datatype, language string) Term {
	return Term{Type: TypeLiteralNode, Value: rdfaID, Datatype: datatype, Language: strings.ToLower(language)}
}

// ContentLiteral returns a term standing for the content of the subject node itself.
func ContentLiteral(datatype, language string) Term {
	return Term{Type: TypeContentLiteral, Datatype: datatype, Language: strings.ToLower(language)}
}

// IsZero reports whether t is the zero (invalid) term.
func (t Term) IsZero() bool {
	return t.Type == TypeInvalid
}

// IsLiteralLike reports whether t stands for a literal value.
func (t Term) IsLiteralLike() bool {
	switch t.Type {
	case TypeLiteral, TypeLiteralNode, TypeContentLiteral:
		return true
	}
	return false
}

// IsResource reports whether t names a resource (IRI, blank node or resource node).
func (t Term) IsResource() bool {
	switch t.Type {
	case TypeNamedNode, TypeBlankNode, TypeResourceNode:
		return true
	}
	return false
}

// Equals reports whether t and other are interchangeable.
func (t Term) Equals(other Term) bool {
	return Equals(t, other)
}

// Equals compares two terms structurally: same variant, same value and,
// for the literal-like variants, same datatype and language.
func Equals(a, b Term) bool {
	if a.Type != b.Type || a.Value != b.Value {
		return false
	}
	switch a.Type {
	case TypeLiteral, TypeLiteralNode, TypeContentLiteral:
		return normalizedDatatype(a) == normalizedDatatype(b) && a.Language == b.Language
	}
	return true
}

func normalizedDatatype(t Term) string {
	if t.Datatype != "" {
		return t.Datatype
	}
	if t.Language != "" {
		return vocabulary.RDFLangString
	}
	return vocabulary.XSDString
}

// Key returns a string that is equal for two terms exactly when Equals holds.
// It is used to index terms in maps.
func (t Term) Key() string {
	switch t.Type {
	case TypeLiteral, TypeLiteralNode, TypeContentLiteral:
		return fmt.Sprintf("%d|%s|%s|%s", t.Type, t.Value, normalizedDatatype(t), t.Language)
	}
	return fmt.Sprintf("%d|%s", t.Type, t.Value)
}

// SubjectValue returns the value used for subject indexing. Blank nodes keep
// their "_:" prefix so they never collide with IRIs.
func (t Term) SubjectValue() string {
	if t.Type == TypeBlankNode {
		return "_:" + t.Value
	}
	return t.Value
}

// String renders the term in an N-Quads-like notation. Document-specific
// variants use a bracketed pseudo-syntax.
func (t Term) String() string {
	switch t.Type {
	case TypeNamedNode:
		return "<" + t.Value + ">"
	case TypeBlankNode:
		return "_:" + t.Value
	case TypeLiteral:
		s := `"` + Escape(t.Value) + `"`
		if t.Language != "" {
			return s + "@" + t.Language
		}
		if t.Datatype != "" && t.Datatype != vocabulary.XSDString {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	case TypeVariable:
		return "?" + t.Value
	case TypeDefaultGraph:
		return ""
	case TypeResourceNode:
		return "[resource " + t.Value + "]"
	case TypeLiteralNode:
		return "[literal " + t.Value + "]"
	case TypeContentLiteral:
		return "[content]"
	}
	return "[invalid]"
}

// Escape escapes a lexical form for N-Triples style output.
func Escape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
