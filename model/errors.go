package model

import "errors"

// Structural errors. These indicate programming errors in calling code.
var (
	// ErrInvalidPosition is returned when a position does not resolve in a document.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrNodeNotFound is returned when a node or rdfaId is not part of a document.
	ErrNodeNotFound = errors.New("node not found")

	// ErrForeignRange is raised when a range is used against another document.
	ErrForeignRange = errors.New("range belongs to another document")

	// ErrInvalidStep is returned when a step cannot be applied.
	ErrInvalidStep = errors.New("invalid step")
)
