package versions

import (
	"context"
	"sync"
)

// MemoryRepo stores versions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	byResume map[string][]Version
	byID     map[string]Version
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byResume: make(map[string][]Version),
		byID:     make(map[string]Version),
	}
}

// Create stores a version with the next number for its resume.
func (r *MemoryRepo) Create(ctx context.Context, v Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byResume[v.ResumeID]
	v.VersionNo = 1
	if n := len(list); n > 0 {
		v.VersionNo = list[n-1].VersionNo + 1
	}
	r.byResume[v.ResumeID] = append(list, v)
	r.byID[v.ID] = v
	return v, nil
}

// ListByResume returns a resume's versions, oldest first.
func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byResume[resumeID]
	out := make([]Version, len(list))
	copy(out, list)
	return out, nil
}

// GetByID returns a version by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	if !ok {
		return Version{}, ErrVersionNotFound
	}
	return v, nil
}

// DeleteByResume removes every version of a resume.
func (r *MemoryRepo) DeleteByResume(ctx context.Context, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.byResume[resumeID] {
		delete(r.byID, v.ID)
	}
	delete(r.byResume, resumeID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
