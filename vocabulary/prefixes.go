package vocabulary

import (
	"sort"
	"strings"
)

// Prefixes maps CURIE prefixes to namespace IRIs. The empty prefix holds the
// active vocabulary.
type Prefixes map[string]string

// DefaultPrefixes returns a fresh copy of the static default prefix table.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		"rdf":     RDF,
		"rdfs":    RDFS,
		"xsd":     XSD,
		"owl":     OWL,
		"dc":      DCTerms,
		"dct":     DCTerms,
		"dcterms": DCTerms,
		"foaf":    FOAF,
		"schema":  Schema,
		"skos":    SKOS,
		"prov":    PROV,
		"besluit": Besluit,
		"mandaat": Mandaat,
		"eli":     ELI,
		"ext":     Ext,
		"person":  Person,
		"org":     Org,
	}
}

// Clone returns an independent copy.
func (p Prefixes) Clone() Prefixes {
	out := make(Prefixes, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with other layered on top.
func (p Prefixes) Merge(other map[string]string) Prefixes {
	out := p.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Expand resolves a prefixed name. It reports false when the value has no
// colon or the prefix is not declared.
func (p Prefixes) Expand(curie string) (string, bool) {
	idx := strings.IndexByte(curie, ':')
	if idx < 0 {
		return "", false
	}
	ns, ok := p[curie[:idx]]
	if !ok {
		return "", false
	}
	return ns + curie[idx+1:], true
}

// Compact returns the shortest prefixed name for iri, choosing the longest
// matching namespace and breaking ties alphabetically by prefix.
func (p Prefixes) Compact(iri string) (string, bool) {
	best, bestNS := "", ""
	for _, prefix := range p.Sorted() {
		ns := p[prefix]
		if prefix == "" || ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if strings.ContainsAny(local, "/#?") {
			continue
		}
		if len(ns) > len(bestNS) {
			best, bestNS = prefix+":"+local, ns
		}
	}
	return best, best != ""
}

// Sorted returns the declared prefixes in lexical order.
func (p Prefixes) Sorted() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Diff returns the entries of p that are absent from or different in base.
func (p Prefixes) Diff(base Prefixes) Prefixes {
	out := make(Prefixes)
	for k, v := range p {
		if base[k] != v {
			out[k] = v
		}
	}
	return out
}

// Attribute renders the prefixes in RDFa prefix attribute syntax, sorted.
// The empty (vocabulary) prefix is omitted.
func (p Prefixes) Attribute() string {
	var parts []string
	for _, k := range p.Sorted() {
		if k == "" {
			continue
		}
		parts = append(parts, k+": "+p[k])
	}
	return strings.Join(parts, " ")
}
