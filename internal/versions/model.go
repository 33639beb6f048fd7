package versions

import "time"

// Version is an immutable snapshot of a whole resume, typically tailored for
// one client. VersionNo starts at 1 per resume.
type Version struct {
	ID         string
	ResumeID   string
	VersionNo  int
	Label      *string
	Markdown   string
	TemplateID *string
	CreatedAt  time.Time
}
