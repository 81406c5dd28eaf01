package rdfa

import (
	"log/slog"
	"strings"

	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

// Config describes a tree to the RDFa reader. N is the node handle of the
// tree, compared by identity.
type Config[N comparable] struct {
	Root        N
	Tag         func(N) string
	Attributes  func(N) map[string]string
	IsText      func(N) bool
	Children    func(N) []N
	TextContent func(N) string

	BaseIRI  string
	Language string

	// Prefixes are layered over the default prefix table.
	Prefixes vocabulary.Prefixes

	// IDAttribute names the rdfaId attribute. Defaults to DefaultIDAttribute.
	IDAttribute string

	Factory *term.Factory
	Logger  *slog.Logger
}

// Result is what one reader pass extracts from a tree.
type Result[N comparable] struct {
	Quads []term.Quad

	// SubjectNodes groups subject-bearing nodes by subject value, in document order.
	SubjectNodes map[string][]N
	SubjectOrder []string
	NodeSubject  map[N]string

	// IDs holds the rdfaId of every node that has or needs one.
	IDs map[N]string

	// Literals maps the rdfaId of a literal node to its literal value.
	Literals     map[string]term.Term
	LiteralNodes map[string]N

	// RelUsed marks nodes whose rel or rev attribute produced triples.
	RelUsed map[N]bool

	// Metadata marks empty elements that only state a property value.
	Metadata map[N]bool

	// Containers marks data-rdfa-container elements.
	Containers map[N]bool

	// Recoveries counts malformed input that was skipped.
	Recoveries int
}

type reader[N comparable] struct {
	cfg  Config[N]
	res  *Result[N]
	seen map[string]bool
	log  *slog.Logger
}

type readFrame[N comparable] struct {
	node N
	ctx  *evalContext
}

// Read runs the RDFa 1.1 chaining algorithm over the tree described by cfg.
// It never fails: malformed input is skipped and counted in Recoveries.
func Read[N comparable](cfg Config[N]) *Result[N] {
	if cfg.IDAttribute == "" {
		cfg.IDAttribute = DefaultIDAttribute
	}
	if cfg.Factory == nil {
		cfg.Factory = term.NewFactory()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &reader[N]{
		cfg: cfg,
		res: &Result[N]{
			SubjectNodes: make(map[string][]N),
			NodeSubject:  make(map[N]string),
			IDs:          make(map[N]string),
			Literals:     make(map[string]term.Term),
			LiteralNodes: make(map[string]N),
			RelUsed:      make(map[N]bool),
			Metadata:     make(map[N]bool),
			Containers:   make(map[N]bool),
		},
		seen: make(map[string]bool),
		log:  logger,
	}

	root := &evalContext{
		base:     cfg.BaseIRI,
		prefixes: vocabulary.DefaultPrefixes().Merge(cfg.Prefixes),
		lang:     strings.ToLower(cfg.Language),
	}
	stack := []readFrame[N]{{node: cfg.Root, ctx: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cfg.IsText(f.node) {
			continue
		}
		child := r.element(f.node, f.ctx)
		children := cfg.Children(f.node)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, readFrame[N]{node: children[i], ctx: child})
		}
	}
	return r.res
}

func (r *reader[N]) recover(msg string, args ...any) {
	r.res.Recoveries++
	r.log.Debug(msg, args...)
}

// idOf returns the rdfaId of n, minting one when it has none or when its id
// was already used earlier in this document.
func (r *reader[N]) idOf(n N, attrs map[string]string) string {
	if id, ok := r.res.IDs[n]; ok {
		return id
	}
	id := strings.TrimSpace(attrs[r.cfg.IDAttribute])
	switch {
	case id == "":
		id = r.cfg.Factory.NewRdfaID()
	case r.seen[id]:
		r.recover("duplicate rdfaId re-minted", slog.String("rdfa_id", id))
		id = r.cfg.Factory.NewRdfaID()
	default:
		r.cfg.Factory.Observe(id)
	}
	r.seen[id] = true
	r.res.IDs[n] = id
	return id
}

func (r *reader[N]) emit(s, p, o term.Term) {
	r.res.Quads = append(r.res.Quads, term.NewQuad(s, p, o))
}

func (r *reader[N]) register(n N, subject string) {
	if _, ok := r.res.SubjectNodes[subject]; !ok {
		r.res.SubjectOrder = append(r.res.SubjectOrder, subject)
	}
	r.res.SubjectNodes[subject] = append(r.res.SubjectNodes[subject], n)
	r.res.NodeSubject[n] = subject
}

// element processes one element and returns the context for its children.
func (r *reader[N]) element(n N, parent *evalContext) *evalContext {
	attrs := r.cfg.Attributes(n)
	ctx := *parent

	if attrs[ContainerMarker] == "true" {
		ctx.container = true
		r.res.Containers[n] = true
	}

	prefixAttr, hasPrefix := attrs["prefix"]
	if xmlns := xmlnsPrefixes(attrs); hasPrefix || xmlns != nil {
		declared, bad := parsePrefixAttr(prefixAttr)
		if bad > 0 {
			r.res.Recoveries += bad
			r.log.Debug("malformed prefix declarations skipped", slog.String("prefix", prefixAttr), slog.Int("count", bad))
		}
		ctx.prefixes = ctx.prefixes.Merge(xmlns).Merge(declared)
	}
	if v, ok := attrs["vocab"]; ok {
		ctx.prefixes = ctx.prefixes.Clone()
		if v = strings.TrimSpace(v); v == "" {
			ctx.vocab = ""
			delete(ctx.prefixes, "")
		} else {
			ctx.vocab = ctx.resolveIRI(v)
			ctx.prefixes[""] = ctx.vocab
		}
	}
	if v, ok := attrs["lang"]; ok {
		ctx.lang = strings.ToLower(strings.TrimSpace(v))
	} else if v, ok := attrs["xml:lang"]; ok {
		ctx.lang = strings.ToLower(strings.TrimSpace(v))
	}

	var about string
	aboutAttr, hasAbout := attrs["about"]
	if hasAbout {
		var ok bool
		if about, ok = ctx.resource(aboutAttr); !ok {
			r.recover("unresolvable about ignored", slog.String("about", aboutAttr))
			hasAbout = false
		}
	}

	var object string
	resourceAttr, hasResource := attrs["resource"]
	if hasResource {
		var ok bool
		if object, ok = ctx.resource(resourceAttr); !ok {
			r.recover("unresolvable resource ignored", slog.String("resource", resourceAttr))
			hasResource = false
		}
	}
	if object == "" {
		if v, ok := attrs["href"]; ok {
			object = ctx.link(v)
		} else if v, ok := attrs["src"]; ok {
			object = ctx.link(v)
		}
	}

	properties := strings.TrimSpace(attrs["property"])
	typeofAttr, hasTypeof := attrs["typeof"]
	relAttr := strings.TrimSpace(attrs["rel"])
	revAttr := strings.TrimSpace(attrs["rev"])
	hasRel := (relAttr != "" || revAttr != "") && object != ""
	hasProperty := properties != ""

	// The parse root has no subject; triples without one are skipped.
	subject := parent.subject
	if hasAbout {
		subject = about
	}

	var newSubject, typed string
	switch {
	case hasAbout:
		newSubject = about
		typed = about
	case hasTypeof:
		if object != "" && !hasRel {
			typed = object
		} else {
			typed = r.cfg.Factory.BlankNode().SubjectValue()
		}
		newSubject = typed
	case hasResource && !hasProperty && !hasRel:
		newSubject = object
	case hasResource && (hasProperty || hasRel) && r.hasContent(n):
		newSubject = object
	}

	if newSubject != "" && !ctx.container {
		r.register(n, newSubject)
		r.idOf(n, attrs)
	} else if attrs[r.cfg.IDAttribute] != "" && !ctx.container {
		r.idOf(n, attrs)
	}

	if hasTypeof {
		types, dropped := ctx.terms(typeofAttr)
		if dropped > 0 {
			r.recover("unresolvable typeof tokens skipped", slog.String("typeof", typeofAttr))
		}
		for _, t := range types {
			r.emit(subjectTerm(typed), term.NamedNode(vocabulary.RDFType), term.NamedNode(t))
		}
	}

	if hasRel {
		rels, revs := ctx.absoluteTerms(relAttr), ctx.absoluteTerms(revAttr)
		if subject == "" && len(rels)+len(revs) > 0 {
			r.recover("rel without subject skipped", slog.String("rel", relAttr))
		} else if len(rels)+len(revs) > 0 {
			r.res.RelUsed[n] = true
			for _, p := range rels {
				r.emit(subjectTerm(subject), term.NamedNode(p), subjectTerm(object))
			}
			for _, p := range revs {
				r.emit(subjectTerm(object), term.NamedNode(p), subjectTerm(subject))
			}
		}
	}

	if hasProperty {
		predicates, dropped := ctx.terms(properties)
		if dropped > 0 {
			r.recover("unresolvable property tokens skipped", slog.String("property", properties))
		}
		if subject == "" {
			if len(predicates) > 0 {
				r.recover("property without subject skipped", slog.String("property", properties))
			}
		} else if len(predicates) > 0 {
			obj := r.propertyObject(n, attrs, &ctx, object, typed, hasAbout, hasRel)
			for _, p := range predicates {
				r.emit(subjectTerm(subject), term.NamedNode(p), obj)
			}
		}
	}

	if hasProperty && !hasAbout && !hasTypeof && !ctx.container && !r.hasContent(n) {
		if _, ok := attrs["content"]; ok || object != "" {
			r.res.Metadata[n] = true
		}
	}
	if hasRel && r.res.RelUsed[n] && !hasAbout && !hasTypeof && !hasProperty && !r.hasContent(n) {
		r.res.Metadata[n] = true
	}

	next := ctx
	next.subject = subject
	if newSubject != "" {
		next.subject = newSubject
	}
	return &next
}

// propertyObject resolves the object of a property attribute.
func (r *reader[N]) propertyObject(n N, attrs map[string]string, ctx *evalContext, object, typed string, hasAbout, hasRel bool) term.Term {
	datatype := ""
	dtAttr, hasDatatype := attrs["datatype"]
	if dtAttr = strings.TrimSpace(dtAttr); hasDatatype && dtAttr != "" {
		var ok bool
		if datatype, ok = ctx.term(dtAttr); !ok {
			r.recover("unresolvable datatype ignored", slog.String("datatype", dtAttr))
		}
	}
	lang := ctx.lang
	if datatype != "" {
		lang = ""
	}

	if content, ok := attrs["content"]; ok {
		return literal(content, datatype, lang)
	}
	if object != "" && !hasRel && !hasDatatype {
		return subjectTerm(object)
	}
	if typed != "" && !hasAbout && !hasDatatype {
		return subjectTerm(typed)
	}
	text := r.cfg.TextContent(n)
	if ctx.container {
		return literal(text, datatype, lang)
	}
	id := r.idOf(n, attrs)
	r.res.Literals[id] = literal(text, datatype, lang)
	r.res.LiteralNodes[id] = n
	return term.LiteralNodeOf(id, datatype, lang)
}

// hasContent reports whether n has element children or non-blank text.
func (r *reader[N]) hasContent(n N) bool {
	for _, c := range r.cfg.Children(n) {
		if !r.cfg.IsText(c) {
			return true
		}
		if strings.TrimSpace(r.cfg.TextContent(c)) != "" {
			return true
		}
	}
	return false
}

func literal(value, datatype, lang string) term.Term {
	if datatype != "" {
		return term.TypedLiteral(value, datatype)
	}
	return term.LangLiteral(value, lang)
}

// subjectTerm turns a subject value into a named or blank node.
func subjectTerm(v string) term.Term {
	if strings.HasPrefix(v, "_:") {
		return term.BlankNode(v)
	}
	return term.NamedNode(v)
}
