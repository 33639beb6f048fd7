package versions

import "context"

// Repo defines persistence operations for resume versions.
type Repo interface {
	// Create stores v with VersionNo set to the resume's current maximum + 1.
	Create(ctx context.Context, v Version) (Version, error)
	// ListByResume returns versions ordered by VersionNo.
	ListByResume(ctx context.Context, resumeID string) ([]Version, error)
	GetByID(ctx context.Context, id string) (Version, error)
	DeleteByResume(ctx context.Context, resumeID string) error
}
