package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/converter/local"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/internal/shared/validation"
)

const (
	docxContentType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	defaultTemplateName = "open-resume-template.docx"
)

// CreateInput carries the fields of a new template.
type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=80"`
	Description *string `json:"description" validate:"omitempty,max=280"`
}

// Service manages the template registry and its reference documents.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	// Bundled returns the reference DOCX shipped for DefaultID.
	Bundled func() ([]byte, error)
	Now     func() time.Time
}

// List returns every template.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx)
}

// Get returns a template by ID.
func (s *Service) Get(ctx context.Context, id string) (Template, error) {
	if strings.TrimSpace(id) == "" {
		return Template{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Exists reports whether id is registered.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Create registers a metadata-only template.
func (s *Service) Create(ctx context.Context, in CreateInput) (Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
		if desc == "" {
			in.Description = nil
		}
	}
	if err := validation.Struct(in); err != nil {
		return Template{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	t := Template{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return Template{}, err
	}
	telemetry.Info("template.created", map[string]any{"template_id": t.ID})
	return t, nil
}

// Asset returns the reference DOCX of a template. An uploaded asset wins;
// the default template falls back to the bundled document. Other templates
// without an upload have no asset.
func (s *Service) Asset(ctx context.Context, id string) (Asset, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Asset{}, err
	}
	if t.AssetKey != nil && s.Store != nil {
		data, err := s.readObject(ctx, *t.AssetKey)
		if err != nil {
			return Asset{}, fmt.Errorf("read template asset: %w", err)
		}
		return Asset{Data: data, FileName: util.Slugify(t.Name, "template") + ".docx"}, nil
	}
	if t.ID == DefaultID {
		data, err := s.bundled()
		if err != nil {
			return Asset{}, err
		}
		return Asset{Data: data, FileName: defaultTemplateName}, nil
	}
	return Asset{}, fmt.Errorf("asset of %q: %w", t.ID, ErrNotFound)
}

// UploadAsset stores data as the template's reference DOCX.
func (s *Service) UploadAsset(ctx context.Context, id string, data []byte) (Template, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Template{}, err
	}
	if !local.IsDOCX(data) {
		return Template{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("file", "must be a DOCX document"))
	}
	if s.Store == nil {
		return Template{}, errors.New("object store not configured")
	}

	key := "templates/" + id + ".docx"
	size, err := s.Store.SaveWithKey(ctx, key, docxContentType, bytes.NewReader(data))
	if err != nil {
		return Template{}, fmt.Errorf("store template asset: %w", err)
	}
	t, err := s.Repo.SetAsset(ctx, id, key, s.now())
	if err != nil {
		return Template{}, err
	}
	telemetry.Info("template.asset_uploaded", map[string]any{"template_id": id, "size_bytes": size})
	return t, nil
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) bundled() ([]byte, error) {
	if s.Bundled != nil {
		return s.Bundled()
	}
	return local.DefaultTemplate()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
