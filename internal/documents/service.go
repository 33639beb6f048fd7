package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/converter"
	"resume-builder/internal/extract"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/internal/shared/validation"
	"resume-builder/internal/templates"
	"resume-builder/internal/versions"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	maxListLimit    = 50
)

// ResumeReader loads resumes.
type ResumeReader interface {
	Get(ctx context.Context, id string) (resumes.Resume, error)
}

// ContentSource returns what a resume renders to when no version is chosen.
type ContentSource interface {
	EffectiveMarkdown(ctx context.Context, resume resumes.Resume) (string, error)
}

// VersionLookup finds resume versions by id.
type VersionLookup interface {
	Lookup(ctx context.Context, versionID string) (versions.Version, error)
}

// TemplateSource resolves templates and their reference documents.
type TemplateSource interface {
	Get(ctx context.Context, id string) (templates.Template, error)
	Asset(ctx context.Context, id string) (templates.Asset, error)
}

// GenerateInput selects what to render. Both fields are optional.
type GenerateInput struct {
	VersionID  *string `json:"versionId"`
	TemplateID *string `json:"templateId"`
}

// Download is a stored DOCX ready to send.
type Download struct {
	Data     []byte
	FileName string
}

// Service generates, stores and serves DOCX documents.
type Service struct {
	Repo      Repo
	Resumes   ResumeReader
	Content   ContentSource
	Versions  VersionLookup
	Templates TemplateSource
	Converter converter.Converter
	Store     object.ObjectStore
	Now       func() time.Time
}

// Generate renders a resume, or one of its versions, to DOCX and stores the
// result. Template precedence is request, then version, then resume, then the
// default template.
func (s *Service) Generate(ctx context.Context, resumeID string, in GenerateInput) (Document, error) {
	resume, err := s.resume(ctx, resumeID)
	if err != nil {
		return Document{}, err
	}

	var version *versions.Version
	if id := trimmed(in.VersionID); id != "" {
		v, err := s.Versions.Lookup(ctx, id)
		if err != nil {
			if errors.Is(err, versions.ErrNotFound) {
				return Document{}, ErrVersionNotFound
			}
			return Document{}, err
		}
		if v.ResumeID != resume.ID {
			return Document{}, fmt.Errorf("%w: %w", ErrInvalidInput, validation.Field("versionId", "does not belong to this resume"))
		}
		version = &v
	}

	markdown, err := s.markdown(ctx, resume, version)
	if err != nil {
		return Document{}, err
	}
	tpl, err := s.resolveTemplate(ctx, resume, version, trimmed(in.TemplateID))
	if err != nil {
		return Document{}, err
	}
	reference, err := s.referenceDoc(ctx, tpl.ID)
	if err != nil {
		return Document{}, err
	}

	metrics.IncGenerationStarted()
	start := time.Now()
	data, err := s.Converter.Convert(ctx, converter.Request{
		Markdown:     markdown,
		Format:       converter.FormatDOCX,
		ReferenceDoc: reference,
	})
	if err != nil {
		metrics.ObserveGeneration(metrics.OutcomeUnavailable, time.Since(start))
		telemetry.Error("document.convert_failed", map[string]any{
			"resume_id":   resume.ID,
			"template_id": tpl.ID,
			"error":       err,
		})
		return Document{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	doc := Document{
		ID:           uuid.NewString(),
		ResumeID:     resume.ID,
		TemplateID:   &tpl.ID,
		TemplateName: &tpl.Name,
		GeneratedAt:  s.now(),
	}
	if version != nil {
		doc.VersionID = &version.ID
	}
	doc.StorageKey = "documents/" + resume.ID + "/" + doc.ID + ".docx"

	size, err := s.Store.SaveWithKey(ctx, doc.StorageKey, docxContentType, bytes.NewReader(data))
	if err != nil {
		metrics.ObserveGeneration(metrics.OutcomeError, time.Since(start))
		return Document{}, fmt.Errorf("store document: %w", err)
	}
	doc.SizeBytes = size
	if err := s.Repo.Create(ctx, doc); err != nil {
		metrics.ObserveGeneration(metrics.OutcomeError, time.Since(start))
		return Document{}, err
	}

	metrics.ObserveGeneration(metrics.OutcomeSuccess, time.Since(start))
	fields := map[string]any{
		"resume_id":   resume.ID,
		"document_id": doc.ID,
		"template_id": tpl.ID,
		"size_bytes":  size,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if doc.VersionID != nil {
		fields["version_id"] = *doc.VersionID
	}
	telemetry.Info("document.generated", fields)
	return doc, nil
}

// List returns a page of a resume's documents, newest first.
func (s *Service) List(ctx context.Context, resumeID string, limit, offset int) ([]Document, error) {
	if _, err := s.resume(ctx, resumeID); err != nil {
		return nil, err
	}
	if limit < 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByResume(ctx, resumeID, limit, offset)
}

// Get returns a document of the given resume.
func (s *Service) Get(ctx context.Context, resumeID, documentID string) (Document, error) {
	resume, err := s.resume(ctx, resumeID)
	if err != nil {
		return Document{}, err
	}
	return s.document(ctx, resume, documentID)
}

// document loads a document that must belong to resume.
func (s *Service) document(ctx context.Context, resume resumes.Resume, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrDocumentNotFound
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.ResumeID != resume.ID {
		return Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// Download returns the stored bytes of a document without regenerating it.
// The file name is derived from the resume title.
func (s *Service) Download(ctx context.Context, resumeID, documentID string) (Download, error) {
	resume, err := s.resume(ctx, resumeID)
	if err != nil {
		return Download{}, err
	}
	doc, err := s.document(ctx, resume, documentID)
	if err != nil {
		return Download{}, err
	}
	data, err := s.read(ctx, doc.StorageKey)
	if err != nil {
		return Download{}, err
	}
	return Download{Data: data, FileName: util.Slugify(resume.Title) + ".docx"}, nil
}

// Text returns the plain text of a stored document.
func (s *Service) Text(ctx context.Context, resumeID, documentID string) (string, error) {
	doc, err := s.Get(ctx, resumeID, documentID)
	if err != nil {
		return "", err
	}
	return extract.ExtractText(ctx, s.Store, doc.StorageKey, extract.MimeDOCX, doc.ID+".docx")
}

// DeleteByResume removes the documents of a resume, records first and then
// the stored files. It runs as part of deleting the resume. A file that cannot
// be removed is logged and left behind.
func (s *Service) DeleteByResume(ctx context.Context, resumeID string) error {
	docs, err := s.Repo.ListByResume(ctx, resumeID, 0, 0)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteByResume(ctx, resumeID); err != nil {
		return err
	}
	for _, doc := range docs {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Warn("document.delete_file_failed", map[string]any{
				"resume_id":   resumeID,
				"document_id": doc.ID,
				"storage_key": doc.StorageKey,
				"error":       err,
			})
		}
	}
	return nil
}

func (s *Service) markdown(ctx context.Context, resume resumes.Resume, version *versions.Version) (string, error) {
	if version != nil {
		return version.Markdown, nil
	}
	return s.Content.EffectiveMarkdown(ctx, resume)
}

// resolveTemplate picks the template to render with. An explicitly requested
// template must exist. Inherited ids that no longer resolve fall back to the
// default template.
func (s *Service) resolveTemplate(ctx context.Context, resume resumes.Resume, version *versions.Version, requested string) (templates.Template, error) {
	if requested != "" {
		tpl, err := s.Templates.Get(ctx, requested)
		if errors.Is(err, templates.ErrNotFound) {
			return templates.Template{}, ErrTemplateNotFound
		}
		return tpl, err
	}

	inherited := trimmed(resume.TemplateID)
	if version != nil && trimmed(version.TemplateID) != "" {
		inherited = trimmed(version.TemplateID)
	}
	if inherited != "" && inherited != templates.DefaultID {
		tpl, err := s.Templates.Get(ctx, inherited)
		if err == nil {
			return tpl, nil
		}
		if !errors.Is(err, templates.ErrNotFound) {
			return templates.Template{}, err
		}
		telemetry.Warn("template.fallback", map[string]any{
			"resume_id":   resume.ID,
			"template_id": inherited,
			"fallback":    templates.DefaultID,
		})
	}

	tpl, err := s.Templates.Get(ctx, templates.DefaultID)
	if errors.Is(err, templates.ErrNotFound) {
		return templates.Template{}, ErrTemplateNotFound
	}
	return tpl, err
}

// referenceDoc returns the template's reference DOCX, or nil when it has
// none. Conversion then uses the converter's built-in styles.
func (s *Service) referenceDoc(ctx context.Context, templateID string) ([]byte, error) {
	asset, err := s.Templates.Asset(ctx, templateID)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return asset.Data, nil
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) resume(ctx context.Context, resumeID string) (resumes.Resume, error) {
	resume, err := s.Resumes.Get(ctx, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Resume{}, ErrResumeNotFound
		}
		return resumes.Resume{}, err
	}
	return resume, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
