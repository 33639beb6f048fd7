package resumes

import "time"

// ResumeResponse is the JSON shape of a resume.
type ResumeResponse struct {
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

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:            r.ID,
		Title:         r.Title,
		TargetRole:    r.TargetRole,
		TargetCompany: r.TargetCompany,
		TemplateID:    r.TemplateID,
		Markdown:      r.Markdown,
		Status:        r.Status,
		HasSource:     r.SourceKey != nil,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
