package templates

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores templates in memory and is safe for concurrent use. It
// starts with the same rows the initial migration seeds.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Template
}

// NewMemoryRepo constructs a MemoryRepo holding the seeded templates.
func NewMemoryRepo(now time.Time) *MemoryRepo {
	r := &MemoryRepo{items: make(map[string]Template)}
	for _, t := range seeded() {
		t.CreatedAt = now
		t.UpdatedAt = now
		r.items[t.ID] = t
	}
	return r
}

// List returns templates ordered by name.
func (r *MemoryRepo) List(ctx context.Context) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetByID returns a template by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	return t, nil
}

// Create stores a template.
func (r *MemoryRepo) Create(ctx context.Context, t Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = t
	return nil
}

// SetAsset records the storage key of a template's reference DOCX.
func (r *MemoryRepo) SetAsset(ctx context.Context, id, assetKey string, at time.Time) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return Template{}, ErrNotFound
	}
	t.AssetKey = &assetKey
	t.UpdatedAt = at
	r.items[id] = t
	return t, nil
}

var _ Repo = (*MemoryRepo)(nil)
