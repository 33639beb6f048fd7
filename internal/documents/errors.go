package documents

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base for every missing entity this package reports.
	ErrNotFound = errors.New("not found")

	ErrResumeNotFound   = fmt.Errorf("resume %w", ErrNotFound)
	ErrVersionNotFound  = fmt.Errorf("version %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable means the document converter failed. Callers may retry.
	ErrUnavailable = errors.New("document generation unavailable")
)
