package templates

import (
	"context"
	"time"
)

// Repo defines persistence for templates.
type Repo interface {
	List(ctx context.Context) ([]Template, error)
	GetByID(ctx context.Context, id string) (Template, error)
	Create(ctx context.Context, t Template) error
	SetAsset(ctx context.Context, id, assetKey string, at time.Time) (Template, error)
}
