package vocabulary

// Namespace IRIs.
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	DCTerms = "http://purl.org/dc/terms/"
	FOAF    = "http://xmlns.com/foaf/0.1/"
	Schema  = "http://schema.org/"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	PROV    = "http://www.w3.org/ns/prov#"
	Besluit = "http://data.vlaanderen.be/ns/besluit#"
	Mandaat = "http://data.vlaanderen.be/ns/mandaat#"
	ELI     = "http://data.europa.eu/eli/ontology#"
	Ext     = "http://mu.semte.ch/vocabularies/ext/"
	Person  = "http://www.w3.org/ns/person#"
	Org     = "http://www.w3.org/ns/org#"
)

// Well-known term IRIs.
const (
	// RDFType is rdf:type, emitted for every typeof token.
	RDFType = RDF + "type"

	// RDFLangString is the datatype of language-tagged literals.
	RDFLangString = RDF + "langString"

	// RDFXMLLiteral is the datatype of XML literals.
	RDFXMLLiteral = RDF + "XMLLiteral"

	// RDFHTML is the datatype of HTML literals.
	RDFHTML = RDF + "HTML"

	// XSDString is the default datatype of plain literals.
	XSDString = XSD + "string"

	XSDInteger  = XSD + "integer"
	XSDDecimal  = XSD + "decimal"
	XSDDouble   = XSD + "double"
	XSDBoolean  = XSD + "boolean"
	XSDDate     = XSD + "date"
	XSDDateTime = XSD + "dateTime"
)
