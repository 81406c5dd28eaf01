package walker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/walker"
)

func tags(nodes []*model.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.IsText() {
			out = append(out, "#"+n.Text)
			continue
		}
		out = append(out, n.Tag)
	}
	return out
}

// <div><h1>t</h1><ul><li>a</li><li>b</li></ul><p>x</p><hr></div>
func testDoc() *model.Document {
	return model.NewDocument(model.Element("div", nil,
		model.Element("h1", nil, model.Text("t")),
		model.Element("ul", nil,
			model.Element("li", nil, model.Text("a")),
			model.Element("li", nil, model.Text("b")),
		),
		model.Element("p", nil, model.Text("x")),
		model.Element("hr", nil),
	))
}

func TestFromRoot(t *testing.T) {
	doc := testDoc()

	forward := walker.FromRoot(doc, walker.Options{}).Collect()
	assert.Equal(t, []string{"div", "h1", "#t", "ul", "li", "#a", "li", "#b", "p", "#x", "hr"}, tags(forward))

	reverse := walker.FromRoot(doc, walker.Options{Reverse: true}).Collect()
	require.Len(t, reverse, len(forward))
	for i := range forward {
		assert.Same(t, forward[len(forward)-1-i], reverse[i])
	}
}

func TestFilterVerdicts(t *testing.T) {
	doc := testDoc()
	filter := func(n *model.Node) walker.Verdict {
		switch {
		case n.IsText():
			return walker.Skip
		case n.Tag == "ul":
			return walker.Reject
		case n.Tag == "div":
			return walker.Skip
		}
		return walker.Accept
	}

	got := walker.FromRoot(doc, walker.Options{Filter: filter}).Collect()
	assert.Equal(t, []string{"h1", "p", "hr"}, tags(got))

	got = walker.FromRoot(doc, walker.Options{Filter: filter, Reverse: true}).Collect()
	assert.Equal(t, []string{"hr", "p", "h1"}, tags(got))
}

func TestFromSubtree(t *testing.T) {
	doc := testDoc()
	ul := doc.Root.Children[1]

	w, err := walker.FromSubtree(doc, ul, walker.Options{Filter: walker.Elements})
	require.NoError(t, err)
	assert.Equal(t, []string{"ul", "li", "li"}, tags(w.Collect()))

	_, err = walker.FromSubtree(doc, model.Element("li", nil), walker.Options{})
	assert.ErrorIs(t, err, model.ErrNodeNotFound)
}

func TestFromRangeBoundaries(t *testing.T) {
	doc := testDoc()

	tests := []struct {
		name       string
		start, end model.Position
		want       []string
	}{
		{"exact sibling span", model.Pos(1), model.Pos(4), []string{"ul", "li", "li", "p", "hr"}},
		{"end sits against next node", model.Pos(0), model.Pos(1), []string{"h1"}},
		{"partially covered parent is descended", model.Pos(1, 1), model.Pos(2, 1), []string{"li"}},
		{"range inside text yields nothing", model.Pos(0, 0, 0), model.Pos(1, 0, 0), nil},
		{"collapsed range yields nothing", model.Pos(2), model.Pos(2), nil},
		{"start inside text", model.Pos(0, 0, 0), model.Pos(2), []string{"ul", "li", "li"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := model.MustRange(doc, tc.start, tc.end)
			got := walker.FromRange(r, walker.Options{Filter: walker.Elements}).Collect()
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, tags(got))

			rev := walker.FromRange(r, walker.Options{Filter: walker.Elements, Reverse: true}).Collect()
			for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
				rev[i], rev[j] = rev[j], rev[i]
			}
			assert.Equal(t, got, rev)
		})
	}
}

func TestNodesIsRestartable(t *testing.T) {
	doc := testDoc()
	w := walker.FromRoot(doc, walker.Options{Filter: walker.Elements})

	first := 0
	for range w.Nodes() {
		first++
	}
	second := 0
	for n := range w.Nodes() {
		second++
		if n.Tag == "ul" {
			break
		}
	}
	assert.Equal(t, 7, first)
	assert.Equal(t, 3, second)
}

func TestCursor(t *testing.T) {
	doc := testDoc()
	w := walker.FromRoot(doc, walker.Options{Filter: walker.Elements})

	n, ok := w.Next()
	require.True(t, ok)
	assert.Same(t, doc.Root, n)
	assert.Same(t, n, w.Current())

	for ok {
		_, ok = w.Next()
	}
	assert.Nil(t, w.Current())
}
