package sections

import "time"

// SectionResponse is the JSON shape of a section.
type SectionResponse struct {
	ID        string    `json:"id"`
	ResumeID  string    `json:"resumeId"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VersionResponse is the JSON shape of a section history entry.
type VersionResponse struct {
	ID        string    `json:"id"`
	SectionID string    `json:"sectionId"`
	VersionNo int       `json:"versionNo"`
	Markdown  string    `json:"markdown"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(s Section) SectionResponse {
	return SectionResponse{
		ID:        s.ID,
		ResumeID:  s.ResumeID,
		Title:     s.Title,
		Markdown:  s.Markdown,
		Order:     s.Order,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toVersionResponse(v Version) VersionResponse {
	return VersionResponse{
		ID:        v.ID,
		SectionID: v.SectionID,
		VersionNo: v.VersionNo,
		Markdown:  v.Markdown,
		CreatedAt: v.CreatedAt,
	}
}
