package resumes

import "time"

// StatusDraft is the only lifecycle state resumes currently have.
const StatusDraft = "DRAFT"

// MinTitleLength is the minimum trimmed title length.
const MinTitleLength = 3

// Resume is the top-level authored document. Markdown is the fallback content
// used when the resume has no sections.
type Resume struct {
	ID            string
	Title         string
	TargetRole    *string
	TargetCompany *string
	TemplateID    *string
	Markdown      string
	Status        string
	// SourceKey locates the uploaded file an imported resume was built from.
	SourceKey     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
