package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrDuplicateIdentifier is returned by the advisory duplicate check when
	// an identifier value is already on file for the same source under a
	// different member.
	ErrDuplicateIdentifier = errors.New("identifier already mapped for source")
)
