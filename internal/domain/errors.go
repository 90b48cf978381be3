package domain

import "errors"

var (
	// ErrInvalidInput marks malformed documents, line items or rates.
	// Surfaced to the caller, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a ledger key is already reserved or a
	// versioned overwrite does not match the stored version. The caller
	// decides whether to retry with a new number or abort.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a ledger key does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrStorageUnavailable marks an I/O failure; the requested operation
	// failed without leaving partial state behind.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrRenderFailure marks an external renderer error. Export never
	// mutates the ledger, so ledger state is unaffected.
	ErrRenderFailure = errors.New("render failure")
)
