package sections

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores sections and history in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Section
	versions map[string][]Version
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Section),
		versions: make(map[string][]Version),
	}
}

// ListByResume returns a resume's sections in display order.
func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string) ([]Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(resumeID), nil
}

func (r *MemoryRepo) listLocked(resumeID string) []Section {
	out := []Section{}
	for _, s := range r.byID {
		if s.ResumeID == resumeID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetByID returns a section of the given resume.
func (r *MemoryRepo) GetByID(ctx context.Context, resumeID, sectionID string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[sectionID]
	if !ok || s.ResumeID != resumeID {
		return Section{}, ErrSectionNotFound
	}
	return s, nil
}

// Insert stores a section and its first history entry.
func (r *MemoryRepo) Insert(ctx context.Context, section Section, initial Version) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.listLocked(section.ResumeID)
	if section.Order <= 0 {
		section.Order = 1
		if n := len(existing); n > 0 {
			section.Order = existing[n-1].Order + 1
		}
	} else {
		for _, s := range existing {
			if s.Order >= section.Order {
				s.Order++
				s.UpdatedAt = section.CreatedAt
				r.byID[s.ID] = s
			}
		}
	}

	r.byID[section.ID] = section
	initial.SectionID = section.ID
	initial.VersionNo = 1
	r.versions[section.ID] = []Version{initial}
	return section, nil
}

// Save updates the section and appends the next history entry.
func (r *MemoryRepo) Save(ctx context.Context, section Section, version Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[section.ID]
	if !ok || current.ResumeID != section.ResumeID {
		return Version{}, ErrSectionNotFound
	}
	current.Title = section.Title
	current.Markdown = section.Markdown
	current.UpdatedAt = section.UpdatedAt
	r.byID[section.ID] = current

	history := r.versions[section.ID]
	version.SectionID = section.ID
	version.VersionNo = 1
	if n := len(history); n > 0 {
		version.VersionNo = history[n-1].VersionNo + 1
	}
	r.versions[section.ID] = append(history, version)
	return version, nil
}

// Delete removes a section and its history.
func (r *MemoryRepo) Delete(ctx context.Context, resumeID, sectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[sectionID]
	if !ok || s.ResumeID != resumeID {
		return ErrSectionNotFound
	}
	delete(r.byID, sectionID)
	delete(r.versions, sectionID)
	return nil
}

// DeleteByResume removes every section of a resume.
func (r *MemoryRepo) DeleteByResume(ctx context.Context, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byID {
		if s.ResumeID == resumeID {
			delete(r.byID, id)
			delete(r.versions, id)
		}
	}
	return nil
}

// Reorder assigns display order from ids.
func (r *MemoryRepo) Reorder(ctx context.Context, resumeID string, ids []string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkPermutation(r.listLocked(resumeID), ids); err != nil {
		return err
	}
	for i, id := range ids {
		s := r.byID[id]
		if s.Order == i+1 {
			continue
		}
		s.Order = i + 1
		s.UpdatedAt = at
		r.byID[id] = s
	}
	return nil
}

// ListVersions returns a section's history, oldest first.
func (r *MemoryRepo) ListVersions(ctx context.Context, sectionID string) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	history := r.versions[sectionID]
	out := make([]Version, len(history))
	copy(out, history)
	return out, nil
}

// GetVersion returns one history entry of a section.
func (r *MemoryRepo) GetVersion(ctx context.Context, sectionID, versionID string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions[sectionID] {
		if v.ID == versionID {
			return v, nil
		}
	}
	return Version{}, ErrVersionNotFound
}

var _ Repo = (*MemoryRepo)(nil)
