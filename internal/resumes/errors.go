package resumes

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the resume does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSourceNotFound indicates the resume was not imported from a file.
	ErrSourceNotFound = fmt.Errorf("source file %w", ErrNotFound)

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
