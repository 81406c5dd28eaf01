package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/export"
	"github.com/c360studio/semdoc/rdfa"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

const doc = `<div>` +
	`<section about="http://example.org/decision/1" typeof="besluit:Besluit">` +
	`<h1 property="dct:title" lang="nl">Besluit "één"</h1>` +
	`<span property="dct:extent" datatype="xsd:integer">3</span>` +
	`<div property="dct:hasPart" resource="http://example.org/article/1"><p property="dct:description">Artikel</p></div>` +
	`</section>` +
	`</div>`

func parse(t *testing.T, src string) *datastore.Datastore {
	t.Helper()
	p, err := rdfa.ParseString(src, rdfa.WithFactory(term.NewFactoryWithPrefix("t")))
	require.NoError(t, err)
	return p.Datastore
}

func TestTriplesResolveDocumentTerms(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	triples := e.Triples()
	require.Len(t, triples, 5)
	for _, q := range triples {
		assert.NotEqual(t, term.TypeLiteralNode, q.Object.Type)
		assert.NotEqual(t, term.TypeResourceNode, q.Object.Type)
	}
	assert.Contains(t, triples, term.NewQuad(
		term.NamedNode("http://example.org/decision/1"),
		term.NamedNode(vocabulary.DCTerms+"extent"),
		term.TypedLiteral("3", vocabulary.XSDInteger),
	))
	assert.Contains(t, triples, term.NewQuad(
		term.NamedNode("http://example.org/decision/1"),
		term.NamedNode(vocabulary.DCTerms+"hasPart"),
		term.NamedNode("http://example.org/article/1"),
	))
}

func TestExportNQuads(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	output, err := e.Export(export.FormatNQuads)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, output, `<http://example.org/decision/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://data.vlaanderen.be/ns/besluit#Besluit> .`)
	assert.Contains(t, output, `"Besluit \"één\""@nl`)
	assert.Contains(t, output, `"3"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.Contains(t, output, `<http://example.org/article/1> <http://purl.org/dc/terms/description> "Artikel" .`)
}

func TestExportNQuadsBlankNodes(t *testing.T) {
	e := export.NewExporter(parse(t, `<div typeof="besluit:Artikel"><span property="dct:title">X</span></div>`))

	output, err := e.NQuads()
	require.NoError(t, err)
	assert.Contains(t, output, `_:t_0 <http://purl.org/dc/terms/title> "X" .`)
}

func TestExportJSONLD(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	output, err := e.Export(export.FormatJSONLD)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))
	ctx, ok := parsed["@context"].(map[string]any)
	require.True(t, ok, "compacted output carries a context")
	assert.Equal(t, vocabulary.DCTerms, ctx["dc"])
	assert.NotContains(t, ctx, "schema", "unused prefixes are left out")
	assert.Contains(t, output, "dc:title")
	assert.Contains(t, output, "http://example.org/decision/1")
}

func TestExportTurtle(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	output, err := e.Export(export.FormatTurtle)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(output, "@prefix besluit: <http://data.vlaanderen.be/ns/besluit#> .\n"))
	assert.Contains(t, output, "@prefix dc: <http://purl.org/dc/terms/> .\n")
	assert.Contains(t, output, "@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n")
	assert.NotContains(t, output, "@prefix schema:")
	assert.Contains(t, output, "<http://example.org/decision/1>\n"+
		"    a besluit:Besluit ;\n")
	assert.Contains(t, output, `    dc:title "Besluit \"één\""@nl ;`)
	assert.Contains(t, output, `    dc:extent "3"^^xsd:integer ;`)
	assert.Contains(t, output, "    dc:hasPart <http://example.org/article/1> .\n")
	assert.Contains(t, output, "<http://example.org/article/1>\n"+
		`    dc:description "Artikel" .`)
}

func TestTurtleWriter(t *testing.T) {
	w := export.NewTurtleWriter(vocabulary.Prefixes{"ex": "http://example.org/"})
	w.SetPrefix("other", "http://other.org/")
	w.WriteSubject(term.BlankNode("b0"))
	w.WritePredicate("http://example.org/name", term.Literal("N"), false)
	w.WritePredicate("http://example.org/odd(name)", term.NamedNode("http://example.org/x"), true)

	assert.Equal(t, "@prefix ex: <http://example.org/> .\n\n"+
		"_:b0\n"+
		"    ex:name \"N\" ;\n"+
		"    <http://example.org/odd(name)> ex:x .\n", w.String())
}

func TestExportMarkdown(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	output, err := e.Export(export.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, output, `# Besluit "één"`)
	assert.Contains(t, output, "Artikel")
	assert.NotContains(t, output, "property=")
}

func TestUnsupportedFormat(t *testing.T) {
	e := export.NewExporter(parse(t, doc))

	_, err := e.Export("rdfxml")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  export.Format
	}{
		{"turtle", export.FormatTurtle},
		{"TTL", export.FormatTurtle},
		{".jsonld", export.FormatJSONLD},
		{"nq", export.FormatNQuads},
		{"nt", export.FormatNQuads},
		{"md", export.FormatMarkdown},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := export.ParseFormat(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := export.ParseFormat("rdfxml")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestGetFormatInfo(t *testing.T) {
	for format := range export.FormatRegistry {
		t.Run(string(format), func(t *testing.T) {
			info, ok := export.GetFormatInfo(format)
			require.True(t, ok)
			assert.Equal(t, format, info.Name)
			assert.True(t, strings.HasPrefix(info.Extension, "."))
			assert.NotEmpty(t, info.MIMEType)
		})
	}

	_, ok := export.GetFormatInfo("unknown")
	assert.False(t, ok)
}
