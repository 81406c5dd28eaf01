// Package export renders the triples of a document datastore as standard RDF
// serializations, and the document itself as Markdown.
//
// Document-specific terms are resolved on the way out: a LiteralNode becomes
// the literal its structural node holds and a ResourceNode becomes the named
// or blank node of its subject. Triples whose object cannot be resolved are
// skipped.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/piprate/json-gold/ld"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/rdfa"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

// Exporter exports the triples of a datastore.
type Exporter struct {
	ds       *datastore.Datastore
	prefixes vocabulary.Prefixes
	render   []rdfa.Option
	logger   *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPrefixes layers extra prefixes over the datastore's prefix table for
// Turtle and JSON-LD compaction.
func WithPrefixes(p vocabulary.Prefixes) Option {
	return func(e *Exporter) {
		e.prefixes = e.prefixes.Merge(p)
	}
}

// WithRenderOptions sets the options used to render the document for
// Markdown export.
func WithRenderOptions(opts ...rdfa.Option) Option {
	return func(e *Exporter) {
		e.render = opts
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExporter creates an exporter over ds.
func NewExporter(ds *datastore.Datastore, opts ...Option) *Exporter {
	e := &Exporter{
		ds:       ds,
		prefixes: ds.Prefixes(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export serializes the datastore to the specified format.
func (e *Exporter) Export(format Format) (string, error) {
	switch format {
	case FormatNQuads:
		return e.NQuads()
	case FormatJSONLD:
		return e.JSONLD()
	case FormatTurtle:
		return e.Turtle(), nil
	case FormatMarkdown:
		return e.Markdown()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Triples returns the quads with document-specific terms resolved.
func (e *Exporter) Triples() []term.Quad {
	var out []term.Quad
	for q := range e.ds.AsQuads() {
		s, ok := e.resolve(q.Subject)
		if !ok || s.Type == term.TypeLiteral {
			e.logger.Debug("quad with unexportable subject skipped", slog.String("quad", q.String()))
			continue
		}
		o, ok := e.resolve(q.Object)
		if !ok {
			e.logger.Debug("quad with unresolvable object skipped", slog.String("quad", q.String()))
			continue
		}
		out = append(out, term.NewQuad(s, q.Predicate, o))
	}
	return out
}

func (e *Exporter) resolve(t term.Term) (term.Term, bool) {
	switch t.Type {
	case term.TypeNamedNode, term.TypeBlankNode, term.TypeLiteral:
		return t, true
	case term.TypeResourceNode:
		if strings.HasPrefix(t.Value, "_:") {
			return term.BlankNode(t.Value), true
		}
		return term.NamedNode(t.Value), true
	case term.TypeLiteralNode:
		lit := e.ds.Resolve(t)
		return lit, lit.Type == term.TypeLiteral
	}
	return term.Term{}, false
}

// Dataset converts the resolved triples to a json-gold dataset with a
// single default graph.
func (e *Exporter) Dataset() *ld.RDFDataset {
	dataset := ld.NewRDFDataset()
	var quads []*ld.Quad
	for _, q := range e.Triples() {
		quads = append(quads, ld.NewQuad(toNode(q.Subject), ld.NewIRI(q.Predicate.Value), toNode(q.Object), "@default"))
	}
	dataset.Graphs["@default"] = quads
	return dataset
}

func toNode(t term.Term) ld.Node {
	switch t.Type {
	case term.TypeBlankNode:
		return ld.NewBlankNode("_:" + t.Value)
	case term.TypeLiteral:
		datatype := t.Datatype
		switch {
		case t.Language != "":
			datatype = ld.RDFLangString
		case datatype == "":
			datatype = ld.XSDString
		}
		return ld.NewLiteral(t.Value, datatype, t.Language)
	}
	return ld.NewIRI(t.Value)
}

// NQuads serializes the triples as N-Quads.
func (e *Exporter) NQuads() (string, error) {
	serializer := &ld.NQuadRDFSerializer{}
	res, err := serializer.Serialize(e.Dataset())
	if err != nil {
		return "", fmt.Errorf("serialize n-quads: %w", err)
	}
	s, _ := res.(string)
	return s, nil
}

// JSONLD serializes the triples as JSON-LD compacted against the prefixes
// the triples use.
func (e *Exporter) JSONLD() (string, error) {
	opts := ld.NewJsonLdOptions("")
	expanded, err := ld.NewJsonLdApi().FromRDF(e.Dataset(), opts)
	if err != nil {
		return "", fmt.Errorf("convert to json-ld: %w", err)
	}

	ctx := make(map[string]any)
	for prefix, ns := range e.usedPrefixes() {
		ctx[prefix] = ns
	}
	compact, err := ld.NewJsonLdProcessor().Compact(expanded, map[string]any{"@context": ctx}, opts)
	if err != nil {
		return "", fmt.Errorf("compact json-ld: %w", err)
	}
	data, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json-ld: %w", err)
	}
	return string(data) + "\n", nil
}

// usedPrefixes returns the prefixes whose namespace compacts an IRI of the
// triples.
func (e *Exporter) usedPrefixes() vocabulary.Prefixes {
	used := make(vocabulary.Prefixes)
	mark := func(iri string) {
		if name, ok := e.prefixes.Compact(iri); ok {
			prefix, _, _ := strings.Cut(name, ":")
			used[prefix] = e.prefixes[prefix]
		}
	}
	for _, q := range e.Triples() {
		mark(q.Subject.Value)
		mark(q.Predicate.Value)
		switch q.Object.Type {
		case term.TypeNamedNode:
			mark(q.Object.Value)
		case term.TypeLiteral:
			if q.Object.Language == "" {
				mark(q.Object.Datatype)
			}
		}
	}
	return used
}

// Turtle serializes the triples as Turtle, grouped by subject in order of
// first appearance.
func (e *Exporter) Turtle() string {
	var order []term.Term
	groups := make(map[string][]term.Quad)
	for _, q := range e.Triples() {
		key := q.Subject.Key()
		if _, ok := groups[key]; !ok {
			order = append(order, q.Subject)
		}
		groups[key] = append(groups[key], q)
	}

	w := NewTurtleWriter(e.prefixes)
	for i, s := range order {
		if i > 0 {
			w.WriteBlank()
		}
		w.WriteSubject(s)
		quads := groups[s.Key()]
		for j, q := range quads {
			w.WritePredicate(q.Predicate.Value, q.Object, j == len(quads)-1)
		}
	}
	return w.String()
}

// Markdown renders the visible text of the datastore's document.
func (e *Exporter) Markdown() (string, error) {
	doc := e.ds.Document()
	if doc == nil || doc.Root == nil {
		return "", ErrNoDocument
	}
	html, err := rdfa.RenderString(doc, e.render...)
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	markdown = excessiveLinesRe.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown) + "\n", nil
}
