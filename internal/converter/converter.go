// Package converter defines the markdown-to-document engine used for DOCX
// generation and the resilience wrappers placed around remote engines.
package converter

import (
	"context"
	"errors"
)

// FormatDOCX is the only output format the service currently produces.
const FormatDOCX = "docx"

// ErrUnavailable means the engine could not produce a document right now.
// Callers surface it as a retryable failure.
var ErrUnavailable = errors.New("converter unavailable")

// Request is one conversion. ReferenceDoc, when set, is a DOCX whose styles
// the output should follow.
type Request struct {
	Markdown     string
	Format       string
	ReferenceDoc []byte
}

// Converter turns markdown into a binary document.
type Converter interface {
	Convert(ctx context.Context, req Request) ([]byte, error)
}

// Func adapts a plain function to Converter.
type Func func(ctx context.Context, req Request) ([]byte, error)

// Convert calls f.
func (f Func) Convert(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
