package rdfa

import (
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

// literalRef is a triple whose object is the content of a literal element.
type literalRef struct {
	subject   string
	predicate string
	object    term.Term
}

type writer struct {
	opts     Options
	doc      *model.Document
	literals map[string][]literalRef

	// origin maps every emitted element back to its model node.
	origin map[*html.Node]*model.Node
}

type writeFrame struct {
	node    *model.Node
	parent  *html.Node
	subject string
	lang    string
}

// Serialize renders doc as an x/net/html tree rooted at a marked <div>.
// Subject nodes carry about, their resource and plain literal properties
// go into a hidden container, and literal elements carry the property that
// points at them.
func Serialize(doc *model.Document, opts ...Option) *html.Node {
	return newWriter(doc, newOptions(opts)).serialize()
}

func newWriter(doc *model.Document, o Options) *writer {
	return &writer{
		opts:     o,
		doc:      doc,
		literals: make(map[string][]literalRef),
		origin:   make(map[*html.Node]*model.Node),
	}
}

func (w *writer) serialize() *html.Node {
	w.collectLiterals()
	doc := w.doc

	rootAttrs := []html.Attribute{{Key: DocumentMarker, Val: "true"}}
	if p := doc.Declared.Attribute(); p != "" {
		rootAttrs = append(rootAttrs, html.Attribute{Key: "prefix", Val: p})
	}
	if doc.Vocab != "" {
		rootAttrs = append(rootAttrs, html.Attribute{Key: "vocab", Val: doc.Vocab})
	}

	lang := strings.ToLower(w.opts.Language)
	holder := &html.Node{Type: html.DocumentNode}
	stack := []writeFrame{{node: doc.Root, parent: holder, lang: lang}}
	first := true
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node.IsText() {
			f.parent.AppendChild(&html.Node{Type: html.TextNode, Data: f.node.Text})
			continue
		}

		el, subject, lang := w.element(f, first)
		if first {
			el.Attr = append(rootAttrs, el.Attr...)
			first = false
		}
		f.parent.AppendChild(el)
		w.origin[el] = f.node

		if IsVoid(f.node.Tag) {
			if container := w.container(f.node, f.lang); container != nil {
				f.parent.AppendChild(container)
			}
			continue
		}
		if container := w.container(f.node, lang); container != nil {
			el.AppendChild(container)
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, writeFrame{node: f.node.Children[i], parent: el, subject: subject, lang: lang})
		}
	}

	root := holder.FirstChild
	holder.RemoveChild(root)
	return root
}

// Render writes the serialized document as HTML.
func Render(out io.Writer, doc *model.Document, opts ...Option) error {
	return html.Render(out, Serialize(doc, opts...))
}

// RenderString is Render into a string.
func RenderString(doc *model.Document, opts ...Option) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, doc, opts...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// collectLiterals indexes the properties that point at literal elements.
func (w *writer) collectLiterals() {
	stack := []*model.Node{w.doc.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
		if len(n.Properties) == 0 {
			continue
		}
		if n.Resource == "" {
			w.opts.Logger.Debug("properties on a node without subject skipped", slog.String("rdfa_id", n.RdfaID))
			continue
		}
		for _, p := range n.Properties {
			if p.Object.Type != term.TypeLiteralNode {
				continue
			}
			if _, ok := w.doc.NodeByRdfaID(p.Object.Value); !ok {
				w.opts.Logger.Debug("dangling literal reference skipped",
					slog.String("subject", n.Resource), slog.String("rdfa_id", p.Object.Value))
				continue
			}
			w.literals[p.Object.Value] = append(w.literals[p.Object.Value], literalRef{
				subject:   n.Resource,
				predicate: p.Predicate,
				object:    p.Object,
			})
		}
	}
}

// element builds the html element for f.node and returns the subject and
// language its children inherit.
func (w *writer) element(f writeFrame, root bool) (*html.Node, string, string) {
	n := f.node
	tag := n.Tag
	if root {
		tag = "div"
	}
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}

	subject := f.subject
	var about string
	var predicates []string
	var literalTerm term.Term

	if n.Resource != "" {
		about = n.Resource
		subject = n.Resource
		for _, p := range n.Properties {
			if p.Object.Type == term.TypeContentLiteral {
				predicates = append(predicates, p.Predicate)
				if literalTerm.IsZero() {
					literalTerm = p.Object
				}
			}
		}
	}

	if refs := w.literals[n.RdfaID]; n.RdfaID != "" && len(refs) > 0 {
		owner := refs[0].subject
		switch {
		case n.Resource != "" && owner != n.Resource:
			w.opts.Logger.Debug("literal reference to another subject's node skipped",
				slog.String("rdfa_id", n.RdfaID), slog.String("subject", owner))
		default:
			if n.Resource == "" && owner != f.subject {
				about = owner
				subject = owner
			}
			for _, ref := range refs {
				if ref.subject != owner || slices.Contains(predicates, ref.predicate) {
					continue
				}
				predicates = append(predicates, ref.predicate)
				if literalTerm.IsZero() {
					literalTerm = ref.object
				}
			}
		}
	}

	lang := f.lang
	langVal, hasLang := n.Attrs["lang"]
	if hasLang {
		lang = strings.ToLower(langVal)
	}
	if root && !hasLang && lang != "" {
		langVal, hasLang = lang, true
	}
	datatype := ""
	if len(predicates) > 0 {
		datatype = literalTerm.Datatype
		if datatype == "" && literalTerm.Language != lang {
			langVal, hasLang = literalTerm.Language, true
			lang = literalTerm.Language
		}
	}

	if about != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "about", Val: about})
	}
	if len(predicates) > 0 {
		el.Attr = append(el.Attr, html.Attribute{Key: "property", Val: strings.Join(predicates, " ")})
	}
	if datatype != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "datatype", Val: datatype})
	}
	if hasLang {
		el.Attr = append(el.Attr, html.Attribute{Key: "lang", Val: langVal})
	}
	if n.RdfaID != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: w.opts.IDAttribute, Val: n.RdfaID})
	}
	for _, k := range n.AttrKeys() {
		if k == "lang" || k == w.opts.IDAttribute || rdfaAttrs[k] {
			continue
		}
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	return el, subject, lang
}

// container renders the resource and plain literal properties of a subject
// node, and the incoming triples of subjects without a node, as hidden
// spans. It returns nil when there is nothing to render.
func (w *writer) container(n *model.Node, lang string) *html.Node {
	if n.Resource == "" {
		return nil
	}
	void := IsVoid(n.Tag)
	var spans []*html.Node
	for _, p := range n.Properties {
		var attrs []html.Attribute
		if void {
			attrs = append(attrs, html.Attribute{Key: "about", Val: n.Resource})
		}
		attrs = append(attrs, html.Attribute{Key: "property", Val: p.Predicate})

		switch p.Object.Type {
		case term.TypeNamedNode, term.TypeBlankNode, term.TypeResourceNode:
			attrs = append(attrs, html.Attribute{Key: "resource", Val: p.Object.SubjectValue()})
		case term.TypeLiteral:
			attrs = append(attrs, html.Attribute{Key: "content", Val: p.Object.Value})
			if dt := p.Object.Datatype; dt != "" && dt != vocabulary.XSDString && dt != vocabulary.RDFLangString {
				attrs = append(attrs, html.Attribute{Key: "datatype", Val: dt})
			} else if p.Object.Language != lang {
				attrs = append(attrs, html.Attribute{Key: "lang", Val: p.Object.Language})
			}
		default:
			continue
		}
		spans = append(spans, &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span, Attr: attrs})
	}
	// Incoming triples from subjects without a node of their own have no
	// other place in the markup.
	for _, l := range n.Backlinks {
		if l.Subject.Type != term.TypeNamedNode && l.Subject.Type != term.TypeBlankNode {
			continue
		}
		var attrs []html.Attribute
		if void {
			attrs = append(attrs, html.Attribute{Key: "about", Val: n.Resource})
		}
		attrs = append(attrs,
			html.Attribute{Key: "rev", Val: l.Predicate},
			html.Attribute{Key: "resource", Val: l.Subject.SubjectValue()})
		spans = append(spans, &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span, Attr: attrs})
	}
	if len(spans) == 0 {
		return nil
	}
	c := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: ContainerMarker, Val: "true"},
			{Key: "style", Val: "display: none"},
		},
	}
	for _, s := range spans {
		c.AppendChild(s)
	}
	return c
}
