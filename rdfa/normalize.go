package rdfa

import (
	"github.com/c360studio/semdoc/model"
)

// Normalize re-derives the RDFa bookkeeping of doc by serializing it and
// reading the result back. The tree shape and rdfaIds are preserved, so
// positions in doc stay valid in the normalized document. Properties and
// backlinks are rebuilt from the serialized attributes.
func Normalize(doc *model.Document, opts ...Option) *Parsed {
	o := newOptions(opts)
	return ParseNode(Serialize(doc, o.Apply()), o.Apply())
}
