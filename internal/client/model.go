package client

import (
	"slices"
	"strings"
	"time"
)

// Resume is a resume as returned by the API.
type Resume struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	TargetRole    *string   `json:"targetRole"`
	TargetCompany *string   `json:"targetCompany"`
	TemplateID    *string   `json:"templateId"`
	Markdown      string    `json:"markdown"`
	Status        string    `json:"status"`
	HasSource     bool      `json:"hasSource"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ResumeInput creates a resume.
type ResumeInput struct {
	Title         string  `json:"title"`
	TargetRole    *string `json:"targetRole,omitempty"`
	TargetCompany *string `json:"targetCompany,omitempty"`
	TemplateID    *string `json:"templateId,omitempty"`
	Markdown      string  `json:"markdown"`
}

// ResumePatch updates a resume. Nil fields are not sent.
type ResumePatch struct {
	Title         *string `json:"title,omitempty"`
	TargetRole    *string `json:"targetRole,omitempty"`
	TargetCompany *string `json:"targetCompany,omitempty"`
	TemplateID    *string `json:"templateId,omitempty"`
	Markdown      *string `json:"markdown,omitempty"`
}

// Section is one ordered block of a resume.
type Section struct {
	ID        string    `json:"id"`
	ResumeID  string    `json:"resumeId"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pending reports whether s is an optimistic entry not yet confirmed by the API.
func (s Section) Pending() bool {
	return strings.HasPrefix(s.ID, tempPrefix)
}

// SectionInput creates a section. A nil Order appends it.
type SectionInput struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	Order    *int   `json:"order,omitempty"`
}

// SectionPatch edits a section. Nil fields are not sent.
type SectionPatch struct {
	Title    *string `json:"title,omitempty"`
	Markdown *string `json:"markdown,omitempty"`
}

// SectionVersion is one history entry of a section.
type SectionVersion struct {
	ID        string    `json:"id"`
	SectionID string    `json:"sectionId"`
	VersionNo int       `json:"versionNo"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"createdAt"`
}

// Version is a named snapshot of a whole resume.
type Version struct {
	ID         string    `json:"id"`
	ResumeID   string    `json:"resumeId"`
	VersionNo  int       `json:"versionNo"`
	Label      *string   `json:"label"`
	Markdown   string    `json:"markdown"`
	TemplateID *string   `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VersionInput creates a version. A nil Markdown snapshots the current sections.
type VersionInput struct {
	Label      *string `json:"label,omitempty"`
	Markdown   *string `json:"markdown,omitempty"`
	TemplateID *string `json:"templateId,omitempty"`
}

// Template is a named DOCX style.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HasAsset    bool      `json:"hasAsset"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TemplateInput registers a template.
type TemplateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Document is the record of one generated DOCX.
type Document struct {
	ID           string    `json:"id"`
	ResumeID     string    `json:"resumeId"`
	VersionID    *string   `json:"versionId"`
	TemplateID   *string   `json:"templateId"`
	TemplateName *string   `json:"templateName"`
	SizeBytes    int64     `json:"sizeBytes"`
	GeneratedAt  time.Time `json:"generatedAt"`
	DownloadURL  string    `json:"downloadUrl"`
}

// GenerateOptions selects what to render. Empty values are omitted.
type GenerateOptions struct {
	VersionID  string
	TemplateID string
}

// File is downloaded content.
type File struct {
	Data        []byte
	FileName    string
	ContentType string
}

// GeneratedFile is the outcome of GenerateDocx.
type GeneratedFile struct {
	DocumentID  string
	DownloadURL string
	File
}

func sortSections(items []Section) {
	slices.SortStableFunc(items, func(a, b Section) int {
		return a.Order - b.Order
	})
}
