package editor

import "errors"

var (
	// ErrStaleTransaction is returned when a transaction was built on a
	// document that is no longer the session's current document.
	ErrStaleTransaction = errors.New("transaction does not start from the current document")

	// ErrRejected wraps the error of a transaction whose steps failed.
	ErrRejected = errors.New("transaction rejected")
)
