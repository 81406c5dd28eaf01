package export

import (
	"fmt"
	"strings"

	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatNQuads produces N-Quads (.nq) output.
	FormatNQuads Format = "nquads"

	// FormatJSONLD produces compacted JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatMarkdown produces the visible text of the document as Markdown.
	FormatMarkdown Format = "markdown"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatNQuads: {
		Name:        FormatNQuads,
		MIMEType:    "application/n-quads",
		Extension:   ".nq",
		Description: "N-Quads - Line-based RDF dataset format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatMarkdown: {
		Name:        FormatMarkdown,
		MIMEType:    "text/markdown",
		Extension:   ".md",
		Description: "Markdown - Visible document text",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for name, info := range FormatRegistry {
		if s == string(name) || s == info.Extension || "."+s == info.Extension {
			return name, nil
		}
	}
	switch s {
	case "nt", "ntriples", "n-quads":
		return FormatNQuads, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// TurtleWriter writes RDF in Turtle format. Prefix declarations are emitted
// only for prefixes that the body uses.
type TurtleWriter struct {
	prefixes vocabulary.Prefixes
	used     map[string]bool
	sb       strings.Builder
}

// NewTurtleWriter creates a Turtle writer compacting IRIs against prefixes.
func NewTurtleWriter(prefixes vocabulary.Prefixes) *TurtleWriter {
	return &TurtleWriter{
		prefixes: prefixes.Clone(),
		used:     make(map[string]bool),
	}
}

// SetPrefix sets a namespace prefix.
func (w *TurtleWriter) SetPrefix(prefix, iri string) {
	w.prefixes[prefix] = iri
}

// WriteSubject starts a new subject block.
func (w *TurtleWriter) WriteSubject(subject term.Term) {
	w.sb.WriteString(w.format(subject))
	w.sb.WriteString("\n")
}

// WritePredicate writes a predicate-object pair.
func (w *TurtleWriter) WritePredicate(predicate string, object term.Term, last bool) {
	terminator := " ;"
	if last {
		terminator = " ."
	}
	p := "a"
	if predicate != vocabulary.RDFType {
		p = w.iri(predicate)
	}
	fmt.Fprintf(&w.sb, "    %s %s%s\n", p, w.format(object), terminator)
}

// WriteBlank writes a blank line for readability.
func (w *TurtleWriter) WriteBlank() {
	w.sb.WriteString("\n")
}

// String returns the prefix declarations followed by the accumulated body.
func (w *TurtleWriter) String() string {
	var head strings.Builder
	for _, prefix := range w.prefixes.Sorted() {
		if w.used[prefix] {
			fmt.Fprintf(&head, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
		}
	}
	if head.Len() > 0 {
		head.WriteString("\n")
	}
	return head.String() + w.sb.String()
}

func (w *TurtleWriter) format(t term.Term) string {
	switch t.Type {
	case term.TypeNamedNode:
		return w.iri(t.Value)
	case term.TypeBlankNode:
		return "_:" + t.Value
	case term.TypeLiteral:
		s := `"` + term.Escape(t.Value) + `"`
		switch {
		case t.Language != "":
			return s + "@" + t.Language
		case t.Datatype != "" && t.Datatype != vocabulary.XSDString:
			return s + "^^" + w.iri(t.Datatype)
		}
		return s
	}
	return `""`
}

// iri returns the prefixed name of iri when it has a valid Turtle local
// part, else the IRI in angle brackets.
func (w *TurtleWriter) iri(iri string) string {
	if name, ok := w.prefixes.Compact(iri); ok {
		prefix, local, _ := strings.Cut(name, ":")
		if validLocal(local) {
			w.used[prefix] = true
			return name
		}
	}
	return "<" + iri + ">"
}

func validLocal(s string) bool {
	if s == "" || strings.HasSuffix(s, ".") || strings.HasPrefix(s, "-") || strings.HasPrefix(s, ".") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}
