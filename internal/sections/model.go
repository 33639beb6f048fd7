package sections

import "time"

// Section is an ordered, titled block of resume content. Order is positive
// and unique among the sections of one resume.
type Section struct {
	ID        string
	ResumeID  string
	Title     string
	Markdown  string
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Version is an immutable snapshot of a section's markdown. VersionNo starts
// at 1 and grows by one per mutation of the section.
type Version struct {
	ID        string
	SectionID string
	VersionNo int
	Markdown  string
	CreatedAt time.Time
}
