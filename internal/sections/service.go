package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/keylock"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

// ResumeReader looks up the resume that owns a set of sections.
type ResumeReader interface {
	Get(ctx context.Context, id string) (resumes.Resume, error)
}

// CreateInput carries the fields of a new section. A nil Order appends.
type CreateInput struct {
	Title    string `json:"title" validate:"required"`
	Markdown string `json:"markdown"`
	Order    *int   `json:"order" validate:"omitempty,gte=1"`
}

// UpdateInput edits a section. Nil fields keep their current value.
type UpdateInput struct {
	Title    *string `json:"title"`
	Markdown *string `json:"markdown"`
}

// ReorderInput lists every section id of a resume in the new display order.
type ReorderInput struct {
	SectionIDs []string `json:"sectionIds" validate:"required,min=1"`
}

var defaultLocks keylock.Map

// Service contains business logic for sections. Mutations of one resume are
// serialized through Locks; share the same Map with services that snapshot
// sections so they never observe a half-applied change.
type Service struct {
	Repo    Repo
	Resumes ResumeReader
	Locks   *keylock.Map
	Now     func() time.Time
}

// List returns a resume's sections in display order.
func (s *Service) List(ctx context.Context, resumeID string) ([]Section, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return nil, err
	}
	return s.Repo.ListByResume(ctx, resumeID)
}

// Create adds a section and records its first history entry.
func (s *Service) Create(ctx context.Context, resumeID string, in CreateInput) (Section, error) {
	unlock := s.lock(resumeID)
	defer unlock()

	if _, err := s.resume(ctx, resumeID); err != nil {
		return Section{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Markdown = strings.TrimSpace(in.Markdown)
	if err := validation.Struct(in); err != nil {
		return Section{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	section := Section{
		ID:        uuid.NewString(),
		ResumeID:  resumeID,
		Title:     in.Title,
		Markdown:  in.Markdown,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Order != nil {
		section.Order = *in.Order
	}
	initial := Version{
		ID:        uuid.NewString(),
		SectionID: section.ID,
		VersionNo: 1,
		Markdown:  section.Markdown,
		CreatedAt: now,
	}
	created, err := s.Repo.Insert(ctx, section, initial)
	if err != nil {
		return Section{}, err
	}
	telemetry.Info("section.created", map[string]any{
		"resume_id":  resumeID,
		"section_id": created.ID,
		"order":      created.Order,
	})
	return created, nil
}

// Update edits a section and appends the resulting markdown to its history.
func (s *Service) Update(ctx context.Context, resumeID, sectionID string, in UpdateInput) (Section, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return Section{}, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return Section{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("title", "must not be blank"))
		}
		in.Title = &title
	}

	unlock := s.lock(resumeID)
	defer unlock()

	section, err := s.Repo.GetByID(ctx, resumeID, sectionID)
	if err != nil {
		return Section{}, err
	}
	if in.Title != nil {
		section.Title = *in.Title
	}
	if in.Markdown != nil {
		section.Markdown = strings.TrimSpace(*in.Markdown)
	}
	section, version, err := s.save(ctx, section)
	if err != nil {
		return Section{}, err
	}
	telemetry.Info("section.updated", map[string]any{
		"resume_id":  resumeID,
		"section_id": sectionID,
		"version_no": version.VersionNo,
	})
	return section, nil
}

// Delete removes a section and its history.
func (s *Service) Delete(ctx context.Context, resumeID, sectionID string) error {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return err
	}
	unlock := s.lock(resumeID)
	defer unlock()
	return s.Repo.Delete(ctx, resumeID, sectionID)
}

// Reorder sets the display order of every section of a resume.
func (s *Service) Reorder(ctx context.Context, resumeID string, in ReorderInput) error {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return err
	}
	if err := validation.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	unlock := s.lock(resumeID)
	defer unlock()
	return s.Repo.Reorder(ctx, resumeID, in.SectionIDs, s.now())
}

// History returns the versions of a section, oldest first.
func (s *Service) History(ctx context.Context, resumeID, sectionID string) ([]Version, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetByID(ctx, resumeID, sectionID); err != nil {
		return nil, err
	}
	return s.Repo.ListVersions(ctx, sectionID)
}

// Restore sets a section's markdown back to a historical snapshot. The title
// is kept and the restore itself becomes a new history entry.
func (s *Service) Restore(ctx context.Context, resumeID, sectionID, versionID string) (Section, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return Section{}, err
	}
	unlock := s.lock(resumeID)
	defer unlock()

	section, err := s.Repo.GetByID(ctx, resumeID, sectionID)
	if err != nil {
		return Section{}, err
	}
	snapshot, err := s.Repo.GetVersion(ctx, sectionID, versionID)
	if err != nil {
		return Section{}, err
	}
	section.Markdown = snapshot.Markdown
	section, version, err := s.save(ctx, section)
	if err != nil {
		return Section{}, err
	}
	telemetry.Info("section.restored", map[string]any{
		"resume_id":    resumeID,
		"section_id":   sectionID,
		"from_version": snapshot.VersionNo,
		"version_no":   version.VersionNo,
	})
	return section, nil
}

// EffectiveMarkdown returns the content a resume renders to right now: its
// assembled sections, or the resume's own markdown when it has none.
func (s *Service) EffectiveMarkdown(ctx context.Context, resume resumes.Resume) (string, error) {
	list, err := s.Repo.ListByResume(ctx, resume.ID)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return resume.Markdown, nil
	}
	return Assemble(list), nil
}

// DeleteByResume removes every section of a resume. It runs as part of
// deleting the resume, which already holds the resume's lock.
func (s *Service) DeleteByResume(ctx context.Context, resumeID string) error {
	return s.Repo.DeleteByResume(ctx, resumeID)
}

func (s *Service) save(ctx context.Context, section Section) (Section, Version, error) {
	now := s.now()
	section.UpdatedAt = now
	v, err := s.Repo.Save(ctx, section, Version{
		ID:        uuid.NewString(),
		SectionID: section.ID,
		Markdown:  section.Markdown,
		CreatedAt: now,
	})
	if err != nil {
		return Section{}, Version{}, err
	}
	return section, v, nil
}

func (s *Service) resume(ctx context.Context, resumeID string) (resumes.Resume, error) {
	if strings.TrimSpace(resumeID) == "" {
		return resumes.Resume{}, ErrResumeNotFound
	}
	r, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Resume{}, ErrResumeNotFound
		}
		return resumes.Resume{}, err
	}
	return r, nil
}

func (s *Service) lock(resumeID string) func() {
	if s.Locks != nil {
		return s.Locks.Lock(resumeID)
	}
	return defaultLocks.Lock(resumeID)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
