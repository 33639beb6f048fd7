package documents

import "time"

// Document is the audit record of one generation. The DOCX itself lives in
// the object store under StorageKey.
type Document struct {
	ID           string
	ResumeID     string
	VersionID    *string
	TemplateID   *string
	TemplateName *string
	StorageKey   string
	SizeBytes    int64
	GeneratedAt  time.Time
}

// DownloadPath is the API path serving the stored DOCX.
func (d Document) DownloadPath() string {
	return "/api/v1/resumes/" + d.ResumeID + "/documents/" + d.ID + "/download"
}
