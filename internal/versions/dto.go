package versions

import "time"

// VersionResponse is the JSON shape of a resume version.
type VersionResponse struct {
	ID         string    `json:"id"`
	ResumeID   string    `json:"resumeId"`
	VersionNo  int       `json:"versionNo"`
	Label      *string   `json:"label"`
	Markdown   string    `json:"markdown"`
	TemplateID *string   `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toResponse(v Version) VersionResponse {
	return VersionResponse{
		ID:         v.ID,
		ResumeID:   v.ResumeID,
		VersionNo:  v.VersionNo,
		Label:      v.Label,
		Markdown:   v.Markdown,
		TemplateID: v.TemplateID,
		CreatedAt:  v.CreatedAt,
	}
}
