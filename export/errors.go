package export

import "errors"

var (
	// ErrUnsupportedFormat is returned for an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNoDocument is returned when a document rendering is requested from
	// a datastore that was not read from a document.
	ErrNoDocument = errors.New("datastore has no document")
)
