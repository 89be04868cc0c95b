package versions

import "errors"

var (
	// ErrNotFound indicates no version has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorrupt indicates a stored row no longer decodes as a document.
	ErrCorrupt = errors.New("stored document is corrupt")
)
