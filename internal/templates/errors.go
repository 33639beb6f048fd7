package templates

import "errors"

var (
	// ErrNotFound indicates the template, or its asset, does not exist.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
