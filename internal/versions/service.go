package versions

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

// ResumeReader looks up the resume a version snapshots.
type ResumeReader interface {
	Get(ctx context.Context, id string) (resumes.Resume, error)
}

// ContentSource renders the current content of a resume.
type ContentSource interface {
	EffectiveMarkdown(ctx context.Context, resume resumes.Resume) (string, error)
}

// TemplateChecker reports whether a template id is registered.
type TemplateChecker interface {
	Exists(ctx context.Context, templateID string) (bool, error)
}

// CreateInput optionally overrides what a new version captures. Omitted
// markdown snapshots the resume's current content; omitted templateId
// inherits the resume's template.
type CreateInput struct {
	Label      *string `json:"label" validate:"omitempty,max=120"`
	Markdown   *string `json:"markdown"`
	TemplateID *string `json:"templateId"`
}

// Service contains business logic for resume versions.
type Service struct {
	Repo      Repo
	Resumes   ResumeReader
	Content   ContentSource
	Templates TemplateChecker
	// Locks must be the Map the section service uses so a snapshot never
	// interleaves with a section mutation of the same resume.
	Locks *keylock.Map
	Now   func() time.Time
}

var defaultLocks keylock.Map

// Create snapshots a resume as its next version.
func (s *Service) Create(ctx context.Context, resumeID string, in CreateInput) (Version, error) {
	unlock := s.lock(resumeID)
	defer unlock()

	resume, err := s.resume(ctx, resumeID)
	if err != nil {
		return Version{}, err
	}
	in.Label = trimOptional(in.Label)
	in.Markdown = trimOptional(in.Markdown)
	in.TemplateID = trimOptional(in.TemplateID)
	if err := validation.Struct(in); err != nil {
		return Version{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	templateID := resume.TemplateID
	if in.TemplateID != nil {
		if err := s.checkTemplate(ctx, *in.TemplateID); err != nil {
			return Version{}, err
		}
		templateID = in.TemplateID
	}

	var markdown string
	if in.Markdown != nil {
		markdown = *in.Markdown
	} else {
		markdown, err = s.Content.EffectiveMarkdown(ctx, resume)
		if err != nil {
			return Version{}, fmt.Errorf("snapshot resume=%s: %w", resumeID, err)
		}
	}

	created, err := s.Repo.Create(ctx, Version{
		ID:         uuid.NewString(),
		ResumeID:   resumeID,
		Label:      in.Label,
		Markdown:   markdown,
		TemplateID: templateID,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return Version{}, err
	}
	telemetry.Info("version.created", map[string]any{
		"resume_id":  resumeID,
		"version_id": created.ID,
		"version_no": created.VersionNo,
	})
	return created, nil
}

// List returns a resume's versions, oldest first.
func (s *Service) List(ctx context.Context, resumeID string) ([]Version, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return nil, err
	}
	return s.Repo.ListByResume(ctx, resumeID)
}

// Get returns a version of the given resume. A version that exists but
// belongs to another resume is reported as not found.
func (s *Service) Get(ctx context.Context, resumeID, versionID string) (Version, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return Version{}, err
	}
	v, err := s.Repo.GetByID(ctx, versionID)
	if err != nil {
		return Version{}, err
	}
	if v.ResumeID != resumeID {
		return Version{}, ErrVersionNotFound
	}
	return v, nil
}

// Lookup returns a version by id regardless of its resume.
func (s *Service) Lookup(ctx context.Context, versionID string) (Version, error) {
	if strings.TrimSpace(versionID) == "" {
		return Version{}, ErrVersionNotFound
	}
	return s.Repo.GetByID(ctx, versionID)
}

// DeleteByResume removes every version of a resume. It runs as part of
// deleting the resume, which already holds the resume's lock.
func (s *Service) DeleteByResume(ctx context.Context, resumeID string) error {
	return s.Repo.DeleteByResume(ctx, resumeID)
}

func (s *Service) checkTemplate(ctx context.Context, templateID string) error {
	if s.Templates == nil {
		return nil
	}
	ok, err := s.Templates.Exists(ctx, templateID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("templateId", "unknown template"))
	}
	return nil
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

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
