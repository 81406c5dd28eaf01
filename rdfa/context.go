package rdfa

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/c360studio/semdoc/vocabulary"
)

var (
	prefixNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	schemeRe     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
)

// evalContext is the inherited RDFa state for one element.
type evalContext struct {
	subject  string
	base     string
	vocab    string
	prefixes vocabulary.Prefixes
	lang     string

	// container is set inside data-rdfa-container elements.
	container bool
}

// parsePrefixAttr parses an RDFa prefix attribute ("p1: iri1 p2: iri2").
// Malformed pairs are skipped and counted.
func parsePrefixAttr(s string) (vocabulary.Prefixes, int) {
	out := vocabulary.Prefixes{}
	bad := 0
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if !strings.HasSuffix(tok, ":") {
			bad++
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(tok, ":"))
		if i+1 >= len(fields) {
			bad++
			break
		}
		iri := fields[i+1]
		if strings.HasSuffix(iri, ":") {
			// The next token is another prefix: this one has no IRI.
			bad++
			continue
		}
		i++
		if name == "_" || !prefixNameRe.MatchString(name) || !schemeRe.MatchString(iri) {
			bad++
			continue
		}
		out[name] = iri
	}
	return out, bad
}

// xmlnsPrefixes collects legacy xmlns:p declarations.
func xmlnsPrefixes(attrs map[string]string) vocabulary.Prefixes {
	var out vocabulary.Prefixes
	for k, v := range attrs {
		name, ok := strings.CutPrefix(k, "xmlns:")
		if !ok || name == "" || !schemeRe.MatchString(v) {
			continue
		}
		if out == nil {
			out = vocabulary.Prefixes{}
		}
		out[strings.ToLower(name)] = v
	}
	return out
}

// resolveIRI resolves v against the base IRI.
func (c *evalContext) resolveIRI(v string) string {
	v = strings.TrimSpace(v)
	if schemeRe.MatchString(v) || c.base == "" {
		return v
	}
	base, err := url.Parse(c.base)
	if err != nil {
		return v
	}
	ref, err := url.Parse(v)
	if err != nil {
		return v
	}
	return base.ResolveReference(ref).String()
}

// expandCURIE expands prefix:local through the in-scope prefixes.
func (c *evalContext) expandCURIE(v string) (string, bool) {
	prefix, local, ok := strings.Cut(v, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return "", false
	}
	ns, ok := c.prefixes[strings.ToLower(prefix)]
	if !ok || prefix == "" {
		return "", false
	}
	return ns + local, true
}

// resource resolves an about or resource value: safe CURIE, blank node,
// CURIE or IRI. An empty value denotes the base IRI.
func (c *evalContext) resource(v string) (string, bool) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return c.base, c.base != ""
	case strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]"):
		inner := v[1 : len(v)-1]
		if strings.HasPrefix(inner, "_:") && len(inner) > 2 {
			return inner, true
		}
		return c.expandCURIE(inner)
	case strings.HasPrefix(v, "_:"):
		return v, len(v) > 2
	}
	if iri, ok := c.expandCURIE(v); ok {
		return iri, true
	}
	return c.resolveIRI(v), true
}

// link resolves an href or src value. CURIEs are not allowed there.
func (c *evalContext) link(v string) string {
	return c.resolveIRI(v)
}

// term resolves a property, typeof, rel, rev or datatype token. Bare terms
// need an active vocabulary. A token with an undeclared prefix is kept as
// an IRI when it has the shape of one.
func (c *evalContext) term(tok string) (string, bool) {
	switch {
	case tok == "" || strings.HasPrefix(tok, "_:"):
		return "", false
	case strings.Contains(tok, ":"):
		if iri, ok := c.expandCURIE(tok); ok {
			return iri, true
		}
		if schemeRe.MatchString(tok) {
			return tok, true
		}
		return "", false
	case c.vocab != "":
		return c.vocab + tok, true
	}
	return "", false
}

// terms resolves whitespace separated tokens, dropping the unresolvable ones.
func (c *evalContext) terms(s string) (resolved []string, dropped int) {
	for _, tok := range strings.Fields(s) {
		iri, ok := c.term(tok)
		if !ok {
			dropped++
			continue
		}
		resolved = append(resolved, iri)
	}
	return resolved, dropped
}

// absoluteTerms is terms restricted to tokens that are CURIEs or IRIs, used
// for rel and rev where bare HTML link types must be ignored.
func (c *evalContext) absoluteTerms(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if !strings.Contains(tok, ":") {
			continue
		}
		if iri, ok := c.term(tok); ok {
			out = append(out, iri)
		}
	}
	return out
}
