package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/extract"
	"resume-builder/internal/shared/keylock"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

const importNamespace = "imports"

// Cascader removes rows owned by a resume. Registered cascaders run before
// the resume itself is deleted, with the resume's lock held.
type Cascader interface {
	DeleteByResume(ctx context.Context, resumeID string) error
}

// TemplateChecker reports whether a template id is registered.
type TemplateChecker interface {
	Exists(ctx context.Context, templateID string) (bool, error)
}

// CreateInput carries the fields of a new resume.
type CreateInput struct {
	Title         string  `json:"title" validate:"required,min=3"`
	TargetRole    *string `json:"targetRole"`
	TargetCompany *string `json:"targetCompany"`
	TemplateID    *string `json:"templateId"`
	Markdown      string  `json:"markdown" validate:"required"`
}

// UpdateInput is a partial update. Nil fields are left unchanged; blank
// optional strings clear the field.
type UpdateInput struct {
	Title         *string `json:"title" validate:"omitempty,min=3"`
	TargetRole    *string `json:"targetRole"`
	TargetCompany *string `json:"targetCompany"`
	TemplateID    *string `json:"templateId"`
	Markdown      *string `json:"markdown"`
}

// ImportInput is an uploaded PDF or DOCX to turn into a resume.
type ImportInput struct {
	Title      string
	TemplateID *string
	FileName   string
	MimeType   string
	Data       []byte
}

// Source is the original file of an imported resume.
type Source struct {
	Data     []byte
	FileName string
}

var defaultLocks keylock.Map

// Service contains business logic for resumes. Store is optional; without it
// imported files are not kept. Locks must be the Map the section and version
// services use, so nothing is added to a resume while it is being deleted.
type Service struct {
	Repo      Repo
	Templates TemplateChecker
	Store     object.ObjectStore
	Cascade   []Cascader
	Locks     *keylock.Map
	Now       func() time.Time
}

// Create validates and stores a new draft resume.
func (s *Service) Create(ctx context.Context, in CreateInput) (Resume, error) {
	return s.create(ctx, in, nil)
}

func (s *Service) create(ctx context.Context, in CreateInput, sourceKey *string) (Resume, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Markdown = strings.TrimSpace(in.Markdown)
	in.TargetRole = trimOptional(in.TargetRole)
	in.TargetCompany = trimOptional(in.TargetCompany)
	in.TemplateID = trimOptional(in.TemplateID)
	if err := validation.Struct(in); err != nil {
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.checkTemplate(ctx, in.TemplateID); err != nil {
		return Resume{}, err
	}

	now := s.now()
	resume := Resume{
		ID:            uuid.NewString(),
		Title:         in.Title,
		TargetRole:    in.TargetRole,
		TargetCompany: in.TargetCompany,
		TemplateID:    in.TemplateID,
		Markdown:      in.Markdown,
		Status:        StatusDraft,
		SourceKey:     sourceKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

// Get returns a resume by ID.
func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if strings.TrimSpace(id) == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns all resumes, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Resume, error) {
	return s.Repo.List(ctx)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Resume, error) {
	resume, err := s.Get(ctx, id)
	if err != nil {
		return Resume{}, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validation.Struct(in); err != nil {
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if in.Title != nil {
		resume.Title = *in.Title
	}
	if in.TargetRole != nil {
		resume.TargetRole = trimOptional(in.TargetRole)
	}
	if in.TargetCompany != nil {
		resume.TargetCompany = trimOptional(in.TargetCompany)
	}
	if in.TemplateID != nil {
		templateID := trimOptional(in.TemplateID)
		if err := s.checkTemplate(ctx, templateID); err != nil {
			return Resume{}, err
		}
		resume.TemplateID = templateID
	}
	if in.Markdown != nil {
		resume.Markdown = strings.TrimSpace(*in.Markdown)
	}
	resume.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

// Delete removes a resume along with its sections, versions and documents.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	resume, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range s.Cascade {
		if err := c.DeleteByResume(ctx, id); err != nil {
			return fmt.Errorf("cascade delete resume=%s: %w", id, err)
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if resume.SourceKey != nil && s.Store != nil {
		if err := s.Store.Delete(ctx, *resume.SourceKey); err != nil {
			telemetry.Warn("resume.delete_source_failed", map[string]any{
				"resume_id":  id,
				"source_key": *resume.SourceKey,
				"error":      err,
			})
		}
	}
	telemetry.Info("resume.deleted", map[string]any{"resume_id": id})
	return nil
}

// Import creates a resume whose markdown is the text extracted from an
// uploaded PDF or DOCX.
func (s *Service) Import(ctx context.Context, in ImportInput) (Resume, error) {
	if len(in.Data) == 0 {
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("file", "must not be empty"))
	}
	text, err := extract.ExtractTextFromBytes(ctx, in.Data, in.MimeType, in.FileName)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Resume{}, err
		}
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("file", "must be a readable PDF or DOCX"))
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(strings.TrimSuffix(filepath.Base(in.FileName), filepath.Ext(in.FileName)))
	}
	if strings.TrimSpace(text) == "" {
		return Resume{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("file", "contains no extractable text"))
	}

	resume, err := s.create(ctx, CreateInput{
		Title:      title,
		TemplateID: in.TemplateID,
		Markdown:   text,
	}, s.archive(ctx, in))
	if err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.imported", map[string]any{
		"resume_id":  resume.ID,
		"file_name":  in.FileName,
		"size_bytes": len(in.Data),
		"archived":   resume.SourceKey != nil,
	})
	return resume, nil
}

// archive keeps the uploaded file. A storage failure only loses the copy, so
// it is logged and the import goes on.
func (s *Service) archive(ctx context.Context, in ImportInput) *string {
	if s.Store == nil {
		return nil
	}
	key, _, _, err := s.Store.Save(ctx, importNamespace, in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		telemetry.Warn("resume.import_archive_failed", map[string]any{
			"file_name": in.FileName,
			"error":     err,
		})
		return nil
	}
	return &key
}

// Source returns the file an imported resume was created from.
func (s *Service) Source(ctx context.Context, id string) (Source, error) {
	resume, err := s.Get(ctx, id)
	if err != nil {
		return Source{}, err
	}
	if resume.SourceKey == nil || s.Store == nil {
		return Source{}, ErrSourceNotFound
	}
	rc, err := s.Store.Open(ctx, *resume.SourceKey)
	if err != nil {
		return Source{}, fmt.Errorf("open source resume=%s: %w", id, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Source{}, fmt.Errorf("read source resume=%s: %w", id, err)
	}
	return Source{Data: data, FileName: sourceFileName(*resume.SourceKey)}, nil
}

// sourceFileName strips the random prefix stores put in front of the name.
func sourceFileName(key string) string {
	base := path.Base(filepath.ToSlash(key))
	if _, name, ok := strings.Cut(base, "_"); ok && name != "" {
		return name
	}
	return base
}

func (s *Service) checkTemplate(ctx context.Context, templateID *string) error {
	if templateID == nil || s.Templates == nil {
		return nil
	}
	ok, err := s.Templates.Exists(ctx, *templateID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("templateId", "unknown template"))
	}
	return nil
}

func (s *Service) lock(id string) func() {
	if s.Locks != nil {
		return s.Locks.Lock(id)
	}
	return defaultLocks.Lock(id)
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
