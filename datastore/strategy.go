package datastore

import (
	"github.com/c360studio/semdoc/model"
	"github.com/c360studio/semdoc/walker"
)

// Strategy selects the structural nodes whose subjects are reachable from a
// range.
type Strategy func(r model.Range) []*model.Node

// RangeContains selects the nodes wholly inside the range.
func RangeContains(r model.Range) []*model.Node {
	return walker.FromRange(r, walker.Options{Filter: walker.Subjects}).Collect()
}

// RangeIsInside selects the nodes the range sits in: every node whose span
// encloses it, the document root included.
func RangeIsInside(r model.Range) []*model.Node {
	doc := r.Document()
	return walker.FromRoot(doc, walker.Options{Filter: func(n *model.Node) walker.Verdict {
		before, after := nodeSpan(doc, n)
		if !r.Encloses(before, after) {
			return walker.Reject
		}
		return walker.Subjects(n)
	}}).Collect()
}

// RangeTouches selects every node sharing content with the range, plus the
// nodes enclosing it.
func RangeTouches(r model.Range) []*model.Node {
	doc := r.Document()
	return walker.FromRoot(doc, walker.Options{Filter: func(n *model.Node) walker.Verdict {
		before, after := nodeSpan(doc, n)
		if !r.Overlaps(before, after) && !r.Encloses(before, after) {
			return walker.Reject
		}
		return walker.Subjects(n)
	}}).Collect()
}

// RangeContainsOrIsInside combines RangeIsInside and RangeContains, each
// node once.
func RangeContainsOrIsInside(r model.Range) []*model.Node {
	nodes := RangeIsInside(r)
	seen := make(map[*model.Node]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	for _, n := range RangeContains(r) {
		if !seen[n] {
			seen[n] = true
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func nodeSpan(doc *model.Document, n *model.Node) (model.Position, model.Position) {
	before, err := doc.PosBefore(n)
	if err != nil {
		return model.Position{}, model.Position{}
	}
	after, _ := doc.PosAfter(n)
	return before, after
}
