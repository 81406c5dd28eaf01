// Package rdfa reads RDFa 1.1 annotated HTML into a structural document and
// its triples, and writes structural documents back out as HTML+RDFa.
//
// The reader is generic over the tree it walks; Parse drives it over
// golang.org/x/net/html. Reading never fails on malformed RDFa: bad prefix
// declarations, unresolvable terms and duplicate rdfaIds are skipped or
// repaired and counted in Parsed.Recoveries.
//
// Serialize and Parse are inverse up to normalization:
//
//	Serialize(Parse(Serialize(d))) == Serialize(d)
package rdfa
