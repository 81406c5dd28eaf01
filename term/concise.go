package term

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/semdoc/vocabulary"
)

var (
	integerRe = regexp.MustCompile(`^[+-]?\d+$`)
	decimalRe = regexp.MustCompile(`^[+-]?\d*\.\d+$`)
	langRe    = regexp.MustCompile(`^[a-zA-Z]+(-[a-zA-Z0-9]+)*$`)
)

// ParseConcise converts a compact term notation into a Term.
//
// Supported forms:
//
//	<http://example.org/x>      named node
//	prefix:local                named node expanded through prefixes
//	_:label                     blank node
//	?name                       variable
//	"lexical"                   plain literal
//	"lexical"@nl                language-tagged literal
//	"lexical"^^<iri>            typed literal
//	"lexical"^^prefix:local     typed literal with prefixed datatype
//	a                           rdf:type
//	42, 4.2, true, false        xsd typed literals
//	http://example.org/x        bare absolute IRI
func ParseConcise(s string, prefixes vocabulary.Prefixes) (Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Term{}, fmt.Errorf("%w: empty string", ErrMalformedTerm)
	case s == "a":
		return NamedNode(vocabulary.RDFType), nil
	case s == "true" || s == "false":
		return TypedLiteral(s, vocabulary.XSDBoolean), nil
	case integerRe.MatchString(s):
		return TypedLiteral(s, vocabulary.XSDInteger), nil
	case decimalRe.MatchString(s):
		return TypedLiteral(s, vocabulary.XSDDecimal), nil
	case strings.HasPrefix(s, "<"):
		if !strings.HasSuffix(s, ">") || len(s) < 3 {
			return Term{}, fmt.Errorf("%w: unterminated IRI %q", ErrMalformedTerm, s)
		}
		return NamedNode(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		if len(s) == 2 {
			return Term{}, fmt.Errorf("%w: empty blank node label", ErrMalformedTerm)
		}
		return BlankNode(s), nil
	case strings.HasPrefix(s, "?"):
		if len(s) == 1 {
			return Term{}, fmt.Errorf("%w: empty variable name", ErrMalformedTerm)
		}
		return Variable(s), nil
	case strings.HasPrefix(s, `"`):
		return parseConciseLiteral(s, prefixes)
	}
	return expandName(s, prefixes)
}

// ParseConcisePredicate is ParseConcise restricted to named nodes.
func ParseConcisePredicate(s string, prefixes vocabulary.Prefixes) (Term, error) {
	t, err := ParseConcise(s, prefixes)
	if err != nil {
		return Term{}, err
	}
	if t.Type != TypeNamedNode && t.Type != TypeVariable {
		return Term{}, fmt.Errorf("%w: predicate must be an IRI, got %s", ErrMalformedTerm, t.Type)
	}
	return t, nil
}

func expandName(s string, prefixes vocabulary.Prefixes) (Term, error) {
	if strings.Contains(s, "://") || strings.HasPrefix(s, "urn:") || strings.HasPrefix(s, "mailto:") {
		return NamedNode(s), nil
	}
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		// Unprefixed names resolve against the active vocabulary, if any.
		if vocab, ok := prefixes[""]; ok && vocab != "" {
			return NamedNode(vocab + s), nil
		}
		return Term{}, fmt.Errorf("%w: %q has no prefix and no vocabulary is active", ErrUnknownPrefix, s)
	}
	if iri, ok := prefixes.Expand(s); ok {
		return NamedNode(iri), nil
	}
	return Term{}, fmt.Errorf("%w: %q", ErrUnknownPrefix, s[:idx])
}

func parseConciseLiteral(s string, prefixes vocabulary.Prefixes) (Term, error) {
	var sb strings.Builder
	i := 1
	closed := false
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if c == '"' {
			closed = true
			i++
			break
		}
		sb.WriteByte(c)
		i++
	}
	if !closed {
		return Term{}, fmt.Errorf("%w: unterminated literal %q", ErrMalformedTerm, s)
	}
	lexical := sb.String()
	rest := s[i:]
	switch {
	case rest == "":
		return Literal(lexical), nil
	case strings.HasPrefix(rest, "@"):
		lang := rest[1:]
		if !langRe.MatchString(lang) {
			return Term{}, fmt.Errorf("%w: bad language tag %q", ErrMalformedTerm, lang)
		}
		return LangLiteral(lexical, lang), nil
	case strings.HasPrefix(rest, "^^"):
		dt, err := ParseConcise(rest[2:], prefixes)
		if err != nil {
			return Term{}, fmt.Errorf("datatype: %w", err)
		}
		if dt.Type != TypeNamedNode {
			return Term{}, fmt.Errorf("%w: datatype must be an IRI", ErrMalformedTerm)
		}
		return TypedLiteral(lexical, dt.Value), nil
	}
	return Term{}, fmt.Errorf("%w: trailing characters %q", ErrMalformedTerm, rest)
}
