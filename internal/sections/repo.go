package sections

import (
	"context"
	"time"
)

// Repo defines persistence operations for sections and their history.
type Repo interface {
	// ListByResume returns sections ordered by Order, then CreatedAt.
	ListByResume(ctx context.Context, resumeID string) ([]Section, error)
	GetByID(ctx context.Context, resumeID, sectionID string) (Section, error)
	// Insert stores a new section with its first history entry. Order 0 appends
	// after the current last section; any other value shifts sections at or
	// after that position up by one.
	Insert(ctx context.Context, section Section, initial Version) (Section, error)
	// Save writes the section's title, markdown and updatedAt and appends
	// version as the next history entry, assigning its VersionNo.
	Save(ctx context.Context, section Section, version Version) (Version, error)
	Delete(ctx context.Context, resumeID, sectionID string) error
	DeleteByResume(ctx context.Context, resumeID string) error
	// Reorder assigns order = index+1 to ids, which must be a permutation of
	// the resume's section ids. Sections whose order changes get updatedAt = at.
	Reorder(ctx context.Context, resumeID string, ids []string, at time.Time) error
	ListVersions(ctx context.Context, sectionID string) ([]Version, error)
	GetVersion(ctx context.Context, sectionID, versionID string) (Version, error)
}
