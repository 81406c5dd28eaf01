package datastore_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/term"
	"github.com/c360studio/semdoc/vocabulary"
)

type fixture struct {
	doc      *model.Document
	ds       *datastore.Datastore
	first    *model.Node
	second   *model.Node
	blank    *model.Node
	titleLit *model.Node
}

// newFixture builds
//
//	<div>
//	  <section about="http://test/1"><p>Title</p></section>
//	  <section about="http://test/2">x</section>
//	  <p about="_:b0"></p>
//	</div>
func newFixture() fixture {
	title := model.Element("p", nil, model.Text("Title")).WithRdfaID("lit1")
	first := model.Element("section", nil, title).WithResource("http://test/1").WithRdfaID("s1")
	second := model.Element("section", nil, model.Text("x")).WithResource("http://test/2").WithRdfaID("s2")
	blank := model.Element("p", nil).WithResource("_:b0").WithRdfaID("b")
	doc := model.NewDocument(model.Element("div", nil, first, second, blank))

	t1, t2 := term.NamedNode("http://test/1"), term.NamedNode("http://test/2")
	quads := []term.Quad{
		term.NewQuad(t1, term.NamedNode(vocabulary.RDFType), term.NamedNode(vocabulary.Besluit+"Besluit")),
		term.NewQuad(t1, term.NamedNode(vocabulary.DCTerms+"title"), term.LiteralNode("lit1")),
		term.NewQuad(t1, term.NamedNode(vocabulary.PROV+"wasDerivedFrom"), t2),
		term.NewQuad(t2, term.NamedNode(vocabulary.RDFType), term.NamedNode(vocabulary.Besluit+"Artikel")),
		term.NewQuad(term.BlankNode("b0"), term.NamedNode(vocabulary.DCTerms+"title"), term.Literal("blank")),
	}

	ds := datastore.New(datastore.Source{
		Document: doc,
		Quads:    quads,
		SubjectNodes: map[string][]*model.Node{
			"http://test/1": {first},
			"http://test/2": {second},
			"_:b0":          {blank},
		},
		SubjectOrder: []string{"http://test/1", "http://test/2", "_:b0"},
		Literals:     map[string]term.Term{"lit1": term.LangLiteral("Title", "nl")},
		Prefixes:     vocabulary.DefaultPrefixes(),
	})
	return fixture{doc: doc, ds: ds, first: first, second: second, blank: blank, titleLit: title}
}

func TestMatch(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name    string
		s, p, o any
		want    int
	}{
		{"wildcards", nil, nil, nil, 5},
		{"bare iri subject", "http://test/1", nil, nil, 3},
		{"bracketed iri subject", "<http://test/2>", nil, nil, 1},
		{"rdf:type shorthand", nil, "a", nil, 2},
		{"prefixed object", nil, "a", "besluit:Besluit", 1},
		{"term object", nil, nil, term.NamedNode("http://test/2"), 1},
		{"resource node pattern", term.ResourceNode("http://test/2"), nil, nil, 1},
		{"literal through literal node", nil, nil, term.LangLiteral("Title", "nl"), 1},
		{"concise literal", nil, nil, `"Title"@nl`, 1},
		{"literal node pattern", nil, nil, term.LiteralNode("lit1"), 1},
		{"plain literal", nil, "dct:title", `"blank"`, 1},
		{"blank subject", "_:b0", nil, nil, 1},
		{"variable is wildcard", term.Variable("s"), "?p", nil, 5},
		{"unknown prefix matches nothing", "nope:x", nil, nil, 0},
		{"malformed literal matches nothing", nil, nil, `"open`, 0},
		{"literal predicate matches nothing", nil, `"x"`, nil, 0},
		{"unsupported argument matches nothing", 42, nil, nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got *datastore.Datastore
			require.NotPanics(t, func() { got = f.ds.Match(tc.s, tc.p, tc.o) })
			assert.Equal(t, tc.want, got.Len())
		})
	}
}

func TestMatchPrunesIndices(t *testing.T) {
	f := newFixture()

	typed := f.ds.Match(nil, "rdf:type", nil)
	assert.Equal(t, []string{"http://test/1", "http://test/2"}, typed.Subjects())
	_, ok := typed.SubjectOf(f.blank)
	assert.False(t, ok, "subjects without surviving triples are dropped")
	assert.Empty(t, typed.Nodes("_:b0"))

	s, ok := typed.SubjectOf(f.first)
	assert.True(t, ok)
	assert.Equal(t, "http://test/1", s)

	assert.Equal(t, []string{"http://test/1", "http://test/2", "_:b0"}, f.ds.Subjects(), "the parent datastore is unchanged")
	assert.Equal(t, 5, f.ds.Len())
}

func TestLimitToRange(t *testing.T) {
	f := newFixture()

	t.Run("contains", func(t *testing.T) {
		r, err := model.NodeRange(f.doc, f.first)
		require.NoError(t, err)
		got := f.ds.LimitToRange(r, datastore.RangeContains)
		assert.Equal(t, 3, got.Len())
		for q := range got.AsQuads() {
			assert.Equal(t, "http://test/1", q.Subject.Value)
		}
	})

	t.Run("is inside", func(t *testing.T) {
		r := model.MustRange(f.doc, model.Pos(0, 1, 0), model.Pos(1, 1, 0))
		got := f.ds.LimitToRange(r, datastore.RangeIsInside)
		assert.Equal(t, []string{"http://test/2"}, got.Subjects())
		assert.Equal(t, 0, f.ds.LimitToRange(r, datastore.RangeContains).Len())
	})

	t.Run("touches", func(t *testing.T) {
		r := model.MustRange(f.doc, model.Pos(0, 0, 0, 0), model.Pos(1, 1, 0))
		got := f.ds.LimitToRange(r, datastore.RangeTouches)
		assert.Equal(t, []string{"http://test/1", "http://test/2"}, got.Subjects())
	})

	t.Run("contains or is inside", func(t *testing.T) {
		inside := model.MustRange(f.doc, model.Pos(0, 1, 0), model.Pos(1, 1, 0))
		got := f.ds.LimitToRange(inside, datastore.RangeContainsOrIsInside)
		assert.Equal(t, []string{"http://test/2"}, got.Subjects())

		covering := model.MustRange(f.doc, model.Pos(0, 1, 0), model.Pos(3))
		got = f.ds.LimitToRange(covering, datastore.RangeContainsOrIsInside)
		assert.Equal(t, []string{"_:b0"}, got.Subjects())

		exact, err := model.NodeRange(f.doc, f.first)
		require.NoError(t, err)
		assert.Equal(t, []*model.Node{f.first}, datastore.RangeContainsOrIsInside(exact))
	})

	t.Run("foreign range panics", func(t *testing.T) {
		other := newFixture()
		r := model.DocumentRange(other.doc)
		defer func() {
			err, _ := recover().(error)
			assert.True(t, errors.Is(err, model.ErrForeignRange), "got %v", err)
		}()
		f.ds.LimitToRange(r, datastore.RangeContains)
	})
}

func TestTransformDataset(t *testing.T) {
	f := newFixture()
	typeIRI := term.NamedNode(vocabulary.RDFType)

	got := f.ds.TransformDataset(func(quads []term.Quad) []term.Quad {
		out := quads[:0]
		for _, q := range quads {
			if !q.Predicate.Equals(typeIRI) {
				out = append(out, q)
			}
		}
		return out
	})

	assert.Equal(t, 3, got.Len())
	assert.Equal(t, 5, f.ds.Len())
	assert.Equal(t, []*model.Node{f.first}, got.Nodes("http://test/1"))
	assert.Same(t, f.doc, got.Document())
}

func TestSequences(t *testing.T) {
	f := newFixture()

	var subjects []term.Term
	for s, nodes := range f.ds.AsSubjectNodes() {
		subjects = append(subjects, s)
		assert.Len(t, nodes, 1)
	}
	assert.Equal(t, []term.Term{
		term.NamedNode("http://test/1"),
		term.NamedNode("http://test/2"),
		term.BlankNode("b0"),
	}, subjects)

	count := 0
	for range f.ds.AsQuads() {
		count++
	}
	for range f.ds.AsQuads() {
		count++
	}
	assert.Equal(t, 10, count, "sequences restart on every call")
}

func TestLiteralResolution(t *testing.T) {
	f := newFixture()

	lit, ok := f.ds.Literal("lit1")
	require.True(t, ok)
	assert.Equal(t, "Title", lit.Value)
	assert.Equal(t, lit, f.ds.Resolve(term.LiteralNode("lit1")))
	assert.Equal(t, term.NamedNode("http://x"), f.ds.Resolve(term.NamedNode("http://x")))
}
