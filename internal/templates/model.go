package templates

import "time"

// DefaultID is the template used when nothing else is selected. Its reference
// DOCX ships with the service.
const DefaultID = "default-template"

// Template is a named document layout. AssetKey points at an uploaded
// reference DOCX in the object store.
type Template struct {
	ID          string
	Name        string
	Description *string
	AssetKey    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Asset is a reference DOCX ready for download or conversion.
type Asset struct {
	Data     []byte
	FileName string
}

func seeded() []Template {
	desc := func(s string) *string { return &s }
	return []Template{
		{ID: DefaultID, Name: "Default", Description: desc("Clean single-column layout bundled with the service")},
		{ID: "modern-template", Name: "Modern", Description: desc("Accent headings with compact spacing")},
		{ID: "classic-template", Name: "Classic", Description: desc("Serif body text with traditional section rules")},
	}
}
