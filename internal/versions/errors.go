package versions

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base for missing resumes and versions.
	ErrNotFound = errors.New("not found")

	ErrResumeNotFound  = fmt.Errorf("resume %w", ErrNotFound)
	ErrVersionNotFound = fmt.Errorf("version %w", ErrNotFound)

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
