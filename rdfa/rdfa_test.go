package rdfa_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/rdfa"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

const scenario = `<div resource="http://test/1"><span property="rdf:type" resource="besluit:Besluit"/><div property="prov:value">test</div></div>`

func parse(t *testing.T, src string, opts ...rdfa.Option) *rdfa.Parsed {
	t.Helper()
	opts = append([]rdfa.Option{rdfa.WithFactory(term.NewFactoryWithPrefix("t"))}, opts...)
	p, err := rdfa.ParseString(src, opts...)
	require.NoError(t, err)
	require.NotNil(t, p.Document.Root)
	return p
}

func quadKeys(p *rdfa.Parsed) []string {
	var keys []string
	for q := range p.Datastore.AsQuads() {
		keys = append(keys, q.Key())
	}
	slices.Sort(keys)
	return keys
}

func TestParseScenario(t *testing.T) {
	p := parse(t, scenario)

	subject := p.Document.Root.Children[0]
	require.Equal(t, "http://test/1", subject.Resource)
	require.Len(t, subject.Children, 1, "the metadata span is not structural")
	inner := subject.Children[0]
	require.NotEmpty(t, inner.RdfaID)

	assert.Equal(t, []term.OutgoingTriple{
		{Predicate: vocabulary.RDFType, Object: term.NamedNode(vocabulary.Besluit + "Besluit")},
		{Predicate: vocabulary.PROV + "value", Object: term.LiteralNodeOf(inner.RdfaID, "", "")},
	}, subject.Properties)
	assert.Equal(t, []term.IncomingTriple{
		{Subject: term.LiteralNode("http://test/1"), Predicate: vocabulary.PROV + "value"},
	}, inner.Backlinks)
	assert.True(t, inner.IsLiteral())

	assert.Equal(t, 2, p.Datastore.Len())
	lit := p.Datastore.Resolve(term.LiteralNode(inner.RdfaID))
	assert.Equal(t, "test", lit.Value)
	assert.Equal(t, 0, p.Recoveries)
}

func TestCollationFirstNodeWins(t *testing.T) {
	p := parse(t, `<div>`+
		`<section about="http://x/1"><span property="dct:title">A</span></section>`+
		`<section about="http://x/1"><span property="dct:description">B</span></section>`+
		`</div>`)

	sections := p.Document.Root.Children[0].Children
	require.Len(t, sections, 2)
	first, second := sections[0], sections[1]
	assert.Equal(t, "http://x/1", first.Resource)
	assert.Equal(t, "http://x/1", second.Resource)

	require.Len(t, first.Properties, 2)
	assert.Equal(t, vocabulary.DCTerms+"title", first.Properties[0].Predicate)
	assert.Equal(t, vocabulary.DCTerms+"description", first.Properties[1].Predicate)
	assert.Empty(t, second.Properties)

	assert.Equal(t, []term.IncomingTriple{
		{Subject: term.LiteralNode("http://x/1"), Predicate: vocabulary.DCTerms + "description"},
	}, second.Children[0].Backlinks)
	assert.Equal(t, []*model.Node{first, second}, p.Datastore.Nodes("http://x/1"))
}

func TestDualRole(t *testing.T) {
	t.Run("property with resource and content", func(t *testing.T) {
		p := parse(t, `<div about="http://a"><div property="dct:hasPart" resource="http://b"><span property="dct:title">B</span></div></div>`)

		outer := p.Document.Root.Children[0]
		part := outer.Children[0]
		assert.Equal(t, "http://b", part.Resource)
		assert.Equal(t, []term.OutgoingTriple{
			{Predicate: vocabulary.DCTerms + "hasPart", Object: term.ResourceNode("http://b")},
		}, outer.Properties)
		assert.Equal(t, []term.IncomingTriple{
			{Subject: term.ResourceNode("http://a"), Predicate: vocabulary.DCTerms + "hasPart"},
		}, part.Backlinks)
		assert.Equal(t, 1, p.Datastore.Match("http://b", "dct:title", nil).Len())
	})

	t.Run("property with typeof", func(t *testing.T) {
		p := parse(t, `<div about="http://a"><div property="dct:hasPart" typeof="besluit:Artikel"><span property="dct:title">X</span></div></div>`)

		part := p.Document.Root.Children[0].Children[0]
		assert.Equal(t, "_:t_0", part.Resource)
		assert.Equal(t, 1, p.Datastore.Match("http://a", "dct:hasPart", "_:t_0").Len())
		assert.Equal(t, 1, p.Datastore.Match("_:t_0", "a", "besluit:Artikel").Len())
		assert.Equal(t, 1, p.Datastore.Match("_:t_0", "dct:title", `"X"`).Len())
	})
}

func TestTriplesNeedASubject(t *testing.T) {
	const src = `<div><p property="dct:title">Doc title</p><a href="http://b" rel="dct:references">b</a></div>`

	p := parse(t, src, rdfa.WithBaseIRI("http://doc/1"))
	assert.Equal(t, 0, p.Datastore.Len())
	assert.Equal(t, 2, p.Recoveries)
	assert.Equal(t, 0, rdfa.Normalize(p.Document, rdfa.WithBaseIRI("http://doc/1")).Datastore.Len())

	p = parse(t, `<div about=""><p property="dct:title">Doc title</p></div>`, rdfa.WithBaseIRI("http://doc/1"))
	assert.Equal(t, 1, p.Datastore.Match("http://doc/1", "dct:title", `"Doc title"`).Len())
	assert.Equal(t, "http://doc/1", p.Document.Root.Children[0].Resource)
}

func TestRevWithoutSubjectNode(t *testing.T) {
	p := parse(t, `<div about="http://a"><a href="http://b" rev="dct:isPartOf">b</a></div>`)

	subject := p.Document.Root.Children[0]
	assert.Equal(t, []term.IncomingTriple{
		{Subject: term.NamedNode("http://b"), Predicate: vocabulary.DCTerms + "isPartOf"},
	}, subject.Backlinks)
	assert.Equal(t, 1, p.Datastore.Match("http://b", "dct:isPartOf", "http://a").Len())

	n := rdfa.Normalize(p.Document)
	assert.Equal(t, quadKeys(p), quadKeys(n))
}

func TestLiteralsCarryLanguageAndDatatype(t *testing.T) {
	p := parse(t, `<div about="http://a" lang="NL">`+
		`<span property="dct:title">Titel</span>`+
		`<span property="dct:extent" datatype="xsd:integer">3</span>`+
		`<span property="dct:abstract" content="Samenvatting"></span>`+
		`</div>`)

	assert.Equal(t, 1, p.Datastore.Match(nil, nil, `"Titel"@nl`).Len())
	assert.Equal(t, 1, p.Datastore.Match(nil, "dct:extent", term.TypedLiteral("3", vocabulary.XSDInteger)).Len())
	assert.Equal(t, 1, p.Datastore.Match(nil, "dct:abstract", term.LangLiteral("Samenvatting", "nl")).Len())

	subject := p.Document.Root.Children[0]
	assert.Len(t, subject.Children, 2, "content-only spans are metadata")
	assert.Equal(t, "NL", subject.Attr("lang"))
}

func TestRDFaAttributesAreStripped(t *testing.T) {
	p := parse(t, `<div about="http://a" class="x" prefix="ex: http://example.org/" vocab="http://schema.org/">`+
		`<a href="http://l" rel="dct:references">link</a>`+
		`<link rel="stylesheet" href="s.css">`+
		`</div>`)

	subject := p.Document.Root.Children[0]
	assert.Equal(t, map[string]string{"class": "x"}, subject.Attrs)
	require.Len(t, subject.Children, 2)
	assert.Equal(t, map[string]string{"href": "http://l"}, subject.Children[0].Attrs, "consumed rel is dropped")
	assert.Equal(t, map[string]string{"rel": "stylesheet", "href": "s.css"}, subject.Children[1].Attrs)
	assert.Equal(t, 1, p.Datastore.Match("http://a", "dct:references", "http://l").Len())
}

func TestDocumentMarker(t *testing.T) {
	p := parse(t, `<html><body><p>outside</p><div data-say-document="true" prefix="ex: http://example.org/" vocab="http://schema.org/" lang="en">`+
		`<p about="http://a"><span property="ex:name">A</span><span property="name">B</span></p>`+
		`</div></body></html>`)

	root := p.Document.Root
	assert.Equal(t, "div", root.Tag)
	assert.Equal(t, map[string]string{"lang": "en"}, root.Attrs)
	assert.Equal(t, "http://example.org/", p.Document.Declared["ex"])
	assert.Equal(t, "http://schema.org/", p.Document.Vocab)
	assert.Equal(t, 1, p.Datastore.Match("http://a", "http://example.org/name", `"A"@en`).Len())
	assert.Equal(t, 1, p.Datastore.Match("http://a", "http://schema.org/name", `"B"@en`).Len())
}

func TestMalformedInputNeverFails(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"broken prefix", `<div prefix="bad ex: http://ex/ nope: ex2:" about="http://s"><span property="ex:name">N</span></div>`},
		{"unknown safe curie", `<div about="[unknown:x]"><span property="dct:title">t</span></div>`},
		{"stray end tags", `</span></div><p>text</p></em>`},
		{"unclosed tags", `<div about="http://s"><p><span property="dct:title">t`},
		{"unknown prefix property", `<div about="http://s"><span property="nope:x">t</span></div>`},
		{"bare term without vocab", `<div about="http://s"><span property="title">t</span></div>`},
		{"empty about", `<div about=""><span property="dct:title">t</span></div>`},
		{"deep nesting", strings.Repeat("<div>", 5000) + "x" + strings.Repeat("</div>", 5000)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p *rdfa.Parsed
			var err error
			require.NotPanics(t, func() {
				p, err = rdfa.ParseString(tc.input)
			})
			require.NoError(t, err)
			require.NotNil(t, p.Document.Root)
			_, err = rdfa.RenderString(p.Document)
			assert.NoError(t, err)
		})
	}
}

func TestPrefixRecovery(t *testing.T) {
	p := parse(t, `<div prefix="ex: http://ex.org/ bad nope: ex2:" about="http://s"><span property="ex:name">N</span></div>`)

	assert.Equal(t, 1, p.Datastore.Match("http://s", "http://ex.org/name", nil).Len())
	assert.Equal(t, 3, p.Recoveries)
}

func TestDuplicateRdfaIDsAreReminted(t *testing.T) {
	p := parse(t, `<div><p about="http://a" __rdfaid="same">a</p><p about="http://b" __rdfaid="same">b</p></div>`)

	ps := p.Document.Root.Children[0].Children
	require.Len(t, ps, 2)
	assert.Equal(t, "same", ps[0].RdfaID)
	assert.NotEqual(t, "same", ps[1].RdfaID)
	assert.NotEmpty(t, ps[1].RdfaID)
	assert.Equal(t, 1, p.Recoveries)
}

func TestModes(t *testing.T) {
	const src = `<div><span/>after</div>`

	fragment := parse(t, src)
	div := fragment.Document.Root.Children[0]
	require.Len(t, div.Children, 2)
	assert.Empty(t, div.Children[0].Children)
	assert.Equal(t, "after", div.Children[1].Text)

	html5 := parse(t, src, rdfa.WithMode(rdfa.ModeHTML5))
	div = html5.Document.Root.Children[0]
	require.Len(t, div.Children, 1)
	assert.Equal(t, "after", div.Children[0].TextContent())

	_, err := rdfa.ParseString(src, rdfa.WithMode("xml"))
	assert.Error(t, err)
}

func TestMaxDepth(t *testing.T) {
	p := parse(t, `<div><div><div><div><div>deep</div></div></div></div></div>`, rdfa.WithMaxDepth(3))

	n := p.Document.Root
	depth := 0
	for len(n.Children) > 0 && !n.Children[0].IsText() {
		n = n.Children[0]
		depth++
	}
	assert.Equal(t, 3, depth)
	assert.Equal(t, "deep", n.TextContent())
	assert.Equal(t, 2, p.Recoveries)
}

type fakeRecorder struct {
	calls      int
	quads      int
	recoveries int
}

func (r *fakeRecorder) ObserveParse(_ time.Duration, quads, recoveries int) {
	r.calls++
	r.quads = quads
	r.recoveries = recoveries
}

func TestRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	parse(t, scenario, rdfa.WithRecorder(rec))

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 2, rec.quads)
	assert.Equal(t, 0, rec.recoveries)
}
