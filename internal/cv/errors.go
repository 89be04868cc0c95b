package cv

import "errors"

var (
	// ErrInvalidInput indicates a malformed request value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt indicates the working copy exists but is not a document.
	ErrCorrupt = errors.New("working copy is corrupt")
)
