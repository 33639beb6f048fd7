package versions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/resumes"
	"resume-builder/internal/sections"
	"resume-builder/internal/shared/keylock"
	"resume-builder/internal/shared/validation"
)

type fakeTemplates map[string]bool

func (f fakeTemplates) Exists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type fixture struct {
	resumes  *resumes.Service
	sections *sections.Service
	versions *Service
	resume   resumes.Resume
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { now = now.Add(time.Second); return now }
	locks := &keylock.Map{}
	templates := fakeTemplates{"default-template": true, "modern-template": true}

	resumeSvc := &resumes.Service{Repo: resumes.NewMemoryRepo(), Templates: templates, Now: clock}
	sectionSvc := &sections.Service{Repo: sections.NewMemoryRepo(), Resumes: resumeSvc, Locks: locks, Now: clock}
	versionSvc := &Service{
		Repo:      NewMemoryRepo(),
		Resumes:   resumeSvc,
		Content:   sectionSvc,
		Templates: templates,
		Locks:     locks,
		Now:       clock,
	}

	templateID := "modern-template"
	resume, err := resumeSvc.Create(ctx, resumes.CreateInput{Title: "Backend Engineer", Markdown: "# Raw", TemplateID: &templateID})
	require.NoError(t, err)
	return fixture{resumes: resumeSvc, sections: sectionSvc, versions: versionSvc, resume: resume}
}

func strPtr(s string) *string { return &s }

func TestCreateSnapshotsRawMarkdownWithoutSections(t *testing.T) {
	f := newFixture(t)

	v, err := f.versions.Create(context.Background(), f.resume.ID, CreateInput{Label: strPtr("  For Acme ")})
	require.NoError(t, err)
	assert.Equal(t, 1, v.VersionNo)
	assert.Equal(t, "For Acme", *v.Label)
	assert.Equal(t, "# Raw", v.Markdown)
	assert.Equal(t, "modern-template", *v.TemplateID)
}

func TestCreateSnapshotsAssembledSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sections.Create(ctx, f.resume.ID, sections.CreateInput{Title: "Profile", Markdown: "Summary text"})
	require.NoError(t, err)
	_, err = f.sections.Create(ctx, f.resume.ID, sections.CreateInput{Title: "Experience", Markdown: "- Built things"})
	require.NoError(t, err)

	v, err := f.versions.Create(ctx, f.resume.ID, CreateInput{Label: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, v.Label)
	assert.Equal(t, "## Profile\n\nSummary text\n\n## Experience\n\n- Built things", v.Markdown)
}

func TestSnapshotIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.sections.Create(ctx, f.resume.ID, sections.CreateInput{Title: "Profile", Markdown: "before"})
	require.NoError(t, err)
	v, err := f.versions.Create(ctx, f.resume.ID, CreateInput{})
	require.NoError(t, err)

	_, err = f.sections.Update(ctx, f.resume.ID, s.ID, sections.UpdateInput{Markdown: strPtr("after")})
	require.NoError(t, err)

	got, err := f.versions.Get(ctx, f.resume.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "## Profile\n\nbefore", got.Markdown)
}

func TestCreateOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.versions.Create(ctx, f.resume.ID, CreateInput{
		Markdown:   strPtr("  # Tailored  "),
		TemplateID: strPtr("default-template"),
	})
	require.NoError(t, err)
	assert.Equal(t, "# Tailored", v.Markdown)
	assert.Equal(t, "default-template", *v.TemplateID)

	_, err = f.versions.Create(ctx, f.resume.ID, CreateInput{TemplateID: strPtr("nope")})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{"templateId: unknown template"}, validation.Messages(err))
}

func TestVersionNumbersIncreasePerResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.resumes.Create(ctx, resumes.CreateInput{Title: "Other resume", Markdown: "x"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		v, err := f.versions.Create(ctx, f.resume.ID, CreateInput{})
		require.NoError(t, err)
		assert.Equal(t, i, v.VersionNo)
	}
	v, err := f.versions.Create(ctx, other.ID, CreateInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, v.VersionNo)

	list, err := f.versions.List(ctx, f.resume.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, v := range list {
		assert.Equal(t, i+1, v.VersionNo)
	}
}

func TestGetRejectsForeignVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, err := f.resumes.Create(ctx, resumes.CreateInput{Title: "Other resume", Markdown: "x"})
	require.NoError(t, err)
	v, err := f.versions.Create(ctx, other.ID, CreateInput{})
	require.NoError(t, err)

	_, err = f.versions.Get(ctx, f.resume.ID, v.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	_, err = f.versions.List(ctx, "missing")
	assert.ErrorIs(t, err, ErrResumeNotFound)
}

func TestDeleteByResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, err := f.versions.Create(ctx, f.resume.ID, CreateInput{})
	require.NoError(t, err)

	require.NoError(t, f.versions.DeleteByResume(ctx, f.resume.ID))

	_, err = f.versions.Lookup(ctx, v.ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	list, err := f.versions.List(ctx, f.resume.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
