package rdfa

import (
	"log/slog"
	"time"

	"github.com/c360studio/semdoc/datastore"
	"github.com/c360studio/semdoc/model"
)

// Extract reads the triples that doc expresses without rebuilding it: the
// subject nodes of the returned datastore are nodes of doc itself. Triples
// are derived from the serialized form, so stale properties (for example a
// reference to a deleted literal element) do not survive.
func Extract(doc *model.Document, opts ...Option) *datastore.Datastore {
	o := newOptions(opts)
	start := time.Now()
	w := newWriter(doc, o)
	root := w.serialize()

	cfg := htmlConfig(root)
	cfg.BaseIRI = o.BaseIRI
	cfg.Language = o.Language
	cfg.Prefixes = o.Prefixes
	cfg.IDAttribute = o.IDAttribute
	cfg.Factory = o.Factory
	cfg.Logger = o.Logger
	res := Read(cfg)

	subjectNodes := make(map[string][]*model.Node, len(res.SubjectNodes))
	for s, nodes := range res.SubjectNodes {
		for _, h := range nodes {
			if n, ok := w.origin[h]; ok {
				subjectNodes[s] = append(subjectNodes[s], n)
			}
		}
	}
	ds := datastore.New(datastore.Source{
		Document:     doc,
		Quads:        res.Quads,
		SubjectNodes: subjectNodes,
		SubjectOrder: res.SubjectOrder,
		Literals:     res.Literals,
		Prefixes:     doc.Prefixes().Merge(o.Prefixes),
	})

	elapsed := time.Since(start)
	if o.Recorder != nil {
		o.Recorder.ObserveParse(elapsed, ds.Len(), res.Recoveries)
	}
	o.Logger.Debug("extracted rdfa triples", slog.Int("quads", ds.Len()), slog.Duration("elapsed", elapsed))
	return ds
}
