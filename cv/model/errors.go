package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates a required document field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrMalformed indicates the payload is not a well-formed document.
	ErrMalformed = errors.New("malformed document")
)

// FieldError names the first required field that failed validation, using the
// document's JSON path (e.g. "experience[1].roles[0].title").
type FieldError struct {
	Field string
	Rule  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField.Error(), e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}
