package documents

import "time"

// GenerateResponse is returned by the generate endpoint.
type GenerateResponse struct {
	DocumentID  string `json:"documentId"`
	DownloadURL string `json:"downloadUrl"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           string    `json:"id"`
	ResumeID     string    `json:"resumeId"`
	VersionID    *string   `json:"versionId"`
	TemplateID   *string   `json:"templateId"`
	TemplateName *string   `json:"templateName"`
	SizeBytes    int64     `json:"sizeBytes"`
	GeneratedAt  time.Time `json:"generatedAt"`
	DownloadURL  string    `json:"downloadUrl"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		ResumeID:     doc.ResumeID,
		VersionID:    doc.VersionID,
		TemplateID:   doc.TemplateID,
		TemplateName: doc.TemplateName,
		SizeBytes:    doc.SizeBytes,
		GeneratedAt:  doc.GeneratedAt,
		DownloadURL:  doc.DownloadPath(),
	}
}
