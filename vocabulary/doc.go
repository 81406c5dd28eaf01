// Package vocabulary defines the namespace IRIs and the default prefix table
// used when expanding CURIEs and concise terms.
//
// The default table is a subset of the RDFa 1.1 initial context extended with
// the vocabularies commonly found in decision documents (besluit, mandaat, eli).
// Documents may declare more prefixes; those are merged on top of the defaults.
package vocabulary
