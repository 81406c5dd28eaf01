package rdfa

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/term"
)

// rdfaAttrs are consumed by the reader and never kept on structural nodes.
var rdfaAttrs = map[string]bool{
	"about": true, "resource": true, "property": true, "typeof": true,
	"prefix": true, "vocab": true, "datatype": true, "content": true,
	"inlist": true, DocumentMarker: true, ContainerMarker: true,
}

// Parsed is a structural document together with its triples.
type Parsed struct {
	Document   *model.Document
	Datastore  *datastore.Datastore
	Recoveries int
}

// Parse reads an HTML+RDFa document. Malformed RDFa never fails the parse;
// only a broken reader or an unknown mode returns an error.
func Parse(r io.Reader, opts ...Option) (*Parsed, error) {
	o := newOptions(opts)
	start := time.Now()
	dom, recoveries, err := parseDOM(r, o)
	if err != nil {
		return nil, err
	}
	p := build(findParseRoot(dom), o)
	p.Recoveries += recoveries
	o.observe(start, p)
	return p, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*Parsed, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseNode reads an already parsed x/net/html tree. The marked document
// element, else <body>, else root is the parse root.
func ParseNode(root *html.Node, opts ...Option) *Parsed {
	o := newOptions(opts)
	start := time.Now()
	p := build(findParseRoot(root), o)
	o.observe(start, p)
	return p
}

func (o Options) observe(start time.Time, p *Parsed) {
	elapsed := time.Since(start)
	if o.Recorder != nil {
		o.Recorder.ObserveParse(elapsed, p.Datastore.Len(), p.Recoveries)
	}
	o.Logger.Debug("parsed rdfa document",
		slog.Int("quads", p.Datastore.Len()),
		slog.Int("subjects", len(p.Datastore.Subjects())),
		slog.Int("recoveries", p.Recoveries),
		slog.Duration("elapsed", elapsed))
}

type builder struct {
	opts  Options
	root  *html.Node
	res   *Result[*html.Node]
	props map[*html.Node][]term.OutgoingTriple
	links map[*html.Node][]term.IncomingTriple
}

func build(root *html.Node, o Options) *Parsed {
	cfg := htmlConfig(root)
	cfg.BaseIRI = o.BaseIRI
	cfg.Language = o.Language
	cfg.Prefixes = o.Prefixes
	cfg.IDAttribute = o.IDAttribute
	cfg.Factory = o.Factory
	cfg.Logger = o.Logger

	b := &builder{
		opts:  o,
		root:  root,
		res:   Read(cfg),
		props: make(map[*html.Node][]term.OutgoingTriple),
		links: make(map[*html.Node][]term.IncomingTriple),
	}
	b.collate()
	built := b.tree()

	declared, _ := parsePrefixAttr(attrOf(root, "prefix"))
	declared = o.Prefixes.Merge(declared)
	doc := model.NewDocument(built[root])
	doc.Declared = declared
	if v := strings.TrimSpace(attrOf(root, "vocab")); v != "" {
		ctx := evalContext{base: o.BaseIRI}
		doc.Vocab = ctx.resolveIRI(v)
	}

	subjectNodes := make(map[string][]*model.Node, len(b.res.SubjectNodes))
	for s, nodes := range b.res.SubjectNodes {
		for _, h := range nodes {
			if n := built[h]; n != nil {
				subjectNodes[s] = append(subjectNodes[s], n)
			}
		}
	}
	ds := datastore.New(datastore.Source{
		Document:     doc,
		Quads:        b.res.Quads,
		SubjectNodes: subjectNodes,
		SubjectOrder: b.res.SubjectOrder,
		Literals:     b.res.Literals,
		Prefixes:     doc.Prefixes(),
	})
	return &Parsed{Document: doc, Datastore: ds, Recoveries: b.res.Recoveries}
}

func attrOf(n *html.Node, key string) string {
	v, _ := attr(n, key)
	return v
}

// first returns the node that carries the properties of subject s.
func (b *builder) first(s string) (*html.Node, bool) {
	nodes := b.res.SubjectNodes[s]
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// collate distributes the triples over the structural nodes: every triple
// becomes a property of the first node of its subject and a backlink of
// the node its object refers to. A backlink on a literal element names its
// subject as a LiteralNode; one on a resource node as a ResourceNode, or
// as the plain subject term when no node declares the subject.
func (b *builder) collate() {
	for _, q := range b.res.Quads {
		s := q.Subject.SubjectValue()
		owner, structural := b.first(s)
		subjectRef := q.Subject
		if structural {
			subjectRef = term.ResourceNode(s)
		}

		obj := q.Object
		var target *html.Node
		switch obj.Type {
		case term.TypeNamedNode, term.TypeBlankNode:
			if n, ok := b.first(obj.SubjectValue()); ok {
				obj = term.ResourceNode(obj.SubjectValue())
				target = n
			}
		case term.TypeLiteralNode:
			if n, ok := b.res.LiteralNodes[obj.Value]; ok {
				if structural && n == owner {
					obj = term.ContentLiteral(obj.Datatype, obj.Language)
				} else {
					target = n
					subjectRef = term.LiteralNode(s)
				}
			}
		}

		if structural {
			b.props[owner] = append(b.props[owner], term.OutgoingTriple{Predicate: q.Predicate.Value, Object: obj})
		}
		if target != nil {
			b.links[target] = append(b.links[target], term.IncomingTriple{Subject: subjectRef, Predicate: q.Predicate.Value})
		}
	}
}

// tree converts the html tree below the parse root into model nodes,
// bottom-up with an explicit stack.
func (b *builder) tree() map[*html.Node]*model.Node {
	built := make(map[*html.Node]*model.Node)
	type frame struct {
		node  *html.Node
		ready bool
	}
	stack := []frame{{node: b.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h := f.node

		if h != b.root {
			switch {
			case h.Type == html.TextNode:
				built[h] = model.Text(h.Data)
				continue
			case h.Type != html.ElementNode:
				continue
			case b.res.Containers[h] || b.res.Metadata[h]:
				continue
			}
		}
		if !f.ready {
			stack = append(stack, frame{node: h, ready: true})
			for c := h.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, frame{node: c})
			}
			continue
		}

		var children []*model.Node
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if n := built[c]; n != nil {
				children = append(children, n)
			}
		}
		built[h] = b.element(h, children)
	}
	return built
}

func (b *builder) element(h *html.Node, children []*model.Node) *model.Node {
	tag := h.Data
	if h == b.root {
		tag = "div"
	}
	attrs := make(map[string]string)
	for _, a := range h.Attr {
		key := attrKey(a)
		switch {
		case rdfaAttrs[key], key == b.opts.IDAttribute, strings.HasPrefix(key, "xmlns:"):
			continue
		case (key == "rel" || key == "rev") && b.res.RelUsed[h]:
			continue
		}
		attrs[key] = a.Val
	}
	if len(attrs) == 0 {
		attrs = nil
	}

	n := model.Element(tag, attrs, children...)
	n.RdfaID = b.res.IDs[h]
	n.Resource = b.res.NodeSubject[h]
	n.Properties = b.props[h]
	n.Backlinks = b.links[h]
	return n
}
