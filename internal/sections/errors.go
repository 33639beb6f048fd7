package sections

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base for every missing-resource error in this package.
	ErrNotFound = errors.New("not found")

	ErrResumeNotFound  = fmt.Errorf("resume %w", ErrNotFound)
	ErrSectionNotFound = fmt.Errorf("section %w", ErrNotFound)
	ErrVersionNotFound = fmt.Errorf("section version %w", ErrNotFound)

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
