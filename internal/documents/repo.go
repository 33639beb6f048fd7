package documents

import "context"

// Repo defines persistence operations for generated documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	// ListByResume returns documents newest first. A limit of 0 means no limit.
	ListByResume(ctx context.Context, resumeID string, limit, offset int) ([]Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	DeleteByResume(ctx context.Context, resumeID string) error
}
