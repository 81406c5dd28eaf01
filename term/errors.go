package term

import "errors"

// Concise term parsing errors.
var (
	// ErrUnknownPrefix is returned when a prefixed name uses an undeclared prefix.
	ErrUnknownPrefix = errors.New("unknown prefix")

	// ErrMalformedTerm is returned when a concise string is not a valid term.
	ErrMalformedTerm = errors.New("malformed term")
)
