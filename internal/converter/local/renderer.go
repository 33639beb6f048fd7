// Package local renders markdown to DOCX in-process. It covers headings,
// bullet lists, paragraphs and bold text, which is what resume sections use,
// and serves as the converter in development and when no Pandoc server is
// configured.
package local

import (
	"context"
	"fmt"

	"resume-builder/internal/converter"
)

// Renderer implements converter.Converter without external processes.
type Renderer struct{}

// New constructs a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Convert renders req.Markdown into a DOCX. A reference DOCX, when given,
// supplies every part except the document body.
func (r *Renderer) Convert(ctx context.Context, req converter.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Format != "" && req.Format != converter.FormatDOCX {
		return nil, fmt.Errorf("local renderer: unsupported format %q", req.Format)
	}

	document, err := renderDocumentXML(parseMarkdown(req.Markdown))
	if err != nil {
		return nil, err
	}
	if len(req.ReferenceDoc) > 0 {
		return replaceDocument(req.ReferenceDoc, document)
	}
	return buildPackage(document)
}

const defaultTemplateMarkdown = `# Your Name

Role | City | email@example.com

## Profile

A short summary of your experience.

## Experience

- **Company** | Role | Dates
- What you built and the impact it had

## Skills

Languages, frameworks and tools.`

// DefaultTemplate returns the reference DOCX bundled with the service. Its
// styles are what generated documents use when no asset has been uploaded.
func DefaultTemplate() ([]byte, error) {
	document, err := renderDocumentXML(parseMarkdown(defaultTemplateMarkdown))
	if err != nil {
		return nil, err
	}
	return buildPackage(document)
}

var _ converter.Converter = (*Renderer)(nil)
