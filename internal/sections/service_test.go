package sections

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/keylock"
	"resume-builder/internal/shared/validation"
)

type fakeResumes map[string]resumes.Resume

func (f fakeResumes) Get(_ context.Context, id string) (resumes.Resume, error) {
	r, ok := f[id]
	if !ok {
		return resumes.Resume{}, resumes.ErrNotFound
	}
	return r, nil
}

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService() *Service {
	clock := &tickingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return &Service{
		Repo: NewMemoryRepo(),
		Resumes: fakeResumes{
			"resume-1": {ID: "resume-1", Title: "Backend", Markdown: "# Raw resume"},
			"resume-2": {ID: "resume-2", Title: "Frontend", Markdown: "# Other"},
		},
		Locks: &keylock.Map{},
		Now:   clock.Now,
	}
}

func mustCreate(t *testing.T, svc *Service, resumeID, title, markdown string) Section {
	t.Helper()
	s, err := svc.Create(context.Background(), resumeID, CreateInput{Title: title, Markdown: markdown})
	require.NoError(t, err)
	return s
}

func ids(list []Section) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateAppendsInCreationOrder(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		s := mustCreate(t, svc, "resume-1", fmt.Sprintf("Section %d", i), "body")
		assert.Equal(t, i, s.Order)
	}

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, s := range list {
		assert.Equal(t, i+1, s.Order)
		assert.Equal(t, fmt.Sprintf("Section %d", i+1), s.Title)
	}
}

func TestCreateRecordsFirstVersion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	s := mustCreate(t, svc, "resume-1", "  Profile ", "  Summary  ")
	assert.Equal(t, "Profile", s.Title)
	assert.Equal(t, "Summary", s.Markdown)

	history, err := svc.History(ctx, "resume-1", s.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].VersionNo)
	assert.Equal(t, "Summary", history[0].Markdown)
}

func TestCreateWithOrderShiftsLaterSections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a := mustCreate(t, svc, "resume-1", "A", "")
	b := mustCreate(t, svc, "resume-1", "B", "")
	c := mustCreate(t, svc, "resume-1", "C", "")

	inserted, err := svc.Create(ctx, "resume-1", CreateInput{Title: "Inserted", Order: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted.Order)

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, inserted.ID, b.ID, c.ID}, ids(list))

	seen := map[int]bool{}
	for _, s := range list {
		assert.False(t, seen[s.Order], "duplicate order %d", s.Order)
		seen[s.Order] = true
	}
}

func TestCreateWithOrderBeyondEnd(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, "resume-1", "A", "")
	far, err := svc.Create(ctx, "resume-1", CreateInput{Title: "Far", Order: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, far.Order)

	next := mustCreate(t, svc, "resume-1", "Next", "")
	assert.Equal(t, 11, next.Order)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
		want string
	}{
		{name: "blank title", in: CreateInput{Title: "   "}, want: "title: must not be blank"},
		{name: "zero order", in: CreateInput{Title: "Skills", Order: intPtr(0)}, want: "order: must be greater than or equal to 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "resume-1", tt.in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, []string{tt.want}, validation.Messages(err))
		})
	}
}

func TestUnknownResume(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.List(ctx, "missing")
	assert.ErrorIs(t, err, ErrResumeNotFound)

	_, err = svc.Create(ctx, "missing", CreateInput{Title: "A"})
	assert.ErrorIs(t, err, ErrResumeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAppendsPostUpdateSnapshot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "Profile", "v1")

	updated, err := svc.Update(ctx, "resume-1", s.ID, UpdateInput{Title: strPtr(" Summary "), Markdown: strPtr(" v2 ")})
	require.NoError(t, err)
	assert.Equal(t, "Summary", updated.Title)
	assert.Equal(t, "v2", updated.Markdown)
	assert.True(t, updated.UpdatedAt.After(s.UpdatedAt))
	assert.Equal(t, s.Order, updated.Order)

	history, err := svc.History(ctx, "resume-1", s.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[1].VersionNo)
	assert.Equal(t, "v2", history[1].Markdown)
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "Profile", "body")

	updated, err := svc.Update(ctx, "resume-1", s.ID, UpdateInput{Markdown: strPtr("new body")})
	require.NoError(t, err)
	assert.Equal(t, "Profile", updated.Title)
	assert.Equal(t, "new body", updated.Markdown)
}

func TestUpdateErrors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "Profile", "body")

	_, err := svc.Update(ctx, "resume-1", s.ID, UpdateInput{Title: strPtr("  ")})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{"title: must not be blank"}, validation.Messages(err))

	_, err = svc.Update(ctx, "resume-1", "missing", UpdateInput{Markdown: strPtr("x")})
	assert.ErrorIs(t, err, ErrSectionNotFound)

	_, err = svc.Update(ctx, "resume-2", s.ID, UpdateInput{Markdown: strPtr("x")})
	assert.ErrorIs(t, err, ErrSectionNotFound, "section belongs to another resume")

	history, err := svc.History(ctx, "resume-1", s.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistoryGrowsByOnePerMutation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "Profile", "v0")
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 25; i++ {
		before, err := svc.History(ctx, "resume-1", s.ID)
		require.NoError(t, err)

		if rng.Intn(2) == 0 {
			_, err = svc.Update(ctx, "resume-1", s.ID, UpdateInput{Markdown: strPtr(fmt.Sprintf("v%d", i+1))})
		} else {
			target := before[rng.Intn(len(before))]
			_, err = svc.Restore(ctx, "resume-1", s.ID, target.ID)
		}
		require.NoError(t, err)

		after, err := svc.History(ctx, "resume-1", s.ID)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		for j, v := range after {
			assert.Equal(t, j+1, v.VersionNo)
		}
	}
}

func TestRestoreSetsMarkdownAndKeepsTitle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "Profile", "original")
	_, err := svc.Update(ctx, "resume-1", s.ID, UpdateInput{Title: strPtr("Renamed"), Markdown: strPtr("edited")})
	require.NoError(t, err)

	history, err := svc.History(ctx, "resume-1", s.ID)
	require.NoError(t, err)
	first := history[0]

	restored, err := svc.Restore(ctx, "resume-1", s.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Markdown, restored.Markdown)
	assert.Equal(t, "Renamed", restored.Title)

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "original", list[0].Markdown)

	history, err = svc.History(ctx, "resume-1", s.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "original", history[2].Markdown)
}

func TestRestoreRejectsForeignVersion(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, "resume-1", "A", "a")
	b := mustCreate(t, svc, "resume-1", "B", "b")

	historyB, err := svc.History(ctx, "resume-1", b.ID)
	require.NoError(t, err)

	_, err = svc.Restore(ctx, "resume-1", a.ID, historyB[0].ID)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderRoundTrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var created []Section
	for i := 0; i < 6; i++ {
		created = append(created, mustCreate(t, svc, "resume-1", fmt.Sprintf("S%d", i), ""))
	}

	for round := 0; round < 10; round++ {
		want := ids(created)
		rng.Shuffle(len(want), func(i, j int) { want[i], want[j] = want[j], want[i] })

		require.NoError(t, svc.Reorder(ctx, "resume-1", ReorderInput{SectionIDs: want}))

		list, err := svc.List(ctx, "resume-1")
		require.NoError(t, err)
		assert.Equal(t, want, ids(list))
		for i, s := range list {
			assert.Equal(t, i+1, s.Order)
		}
	}
}

func TestReorderOnlyTouchesMovedSections(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, "resume-1", "A", "")
	b := mustCreate(t, svc, "resume-1", "B", "")
	c := mustCreate(t, svc, "resume-1", "C", "")

	require.NoError(t, svc.Reorder(ctx, "resume-1", ReorderInput{SectionIDs: []string{a.ID, c.ID, b.ID}}))

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	assert.Equal(t, a.UpdatedAt, list[0].UpdatedAt)
	assert.True(t, list[1].UpdatedAt.After(c.UpdatedAt))
	assert.True(t, list[2].UpdatedAt.After(b.UpdatedAt))
}

func TestReorderRejectsBadPermutations(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustCreate(t, svc, "resume-1", "A", "")
	b := mustCreate(t, svc, "resume-1", "B", "")
	other := mustCreate(t, svc, "resume-2", "Other", "")

	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{name: "missing", ids: nil, want: "sectionIds: must not be blank"},
		{name: "empty", ids: []string{}, want: "sectionIds: must contain at least 1 items"},
		{name: "unknown", ids: []string{a.ID, b.ID, "nope"}, want: `sectionIds: unknown section id "nope"`},
		{name: "other resume", ids: []string{a.ID, other.ID}, want: fmt.Sprintf("sectionIds: unknown section id %q", other.ID)},
		{name: "duplicate", ids: []string{a.ID, a.ID}, want: fmt.Sprintf("sectionIds: duplicate section id %q", a.ID)},
		{name: "partial", ids: []string{b.ID}, want: "sectionIds: must list every section of the resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Reorder(ctx, "resume-1", ReorderInput{SectionIDs: tt.ids})
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, validation.Messages(err), tt.want)
		})
	}

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(list))
}

func TestDeleteRemovesHistory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	s := mustCreate(t, svc, "resume-1", "A", "a")

	require.NoError(t, svc.Delete(ctx, "resume-1", s.ID))

	_, err := svc.History(ctx, "resume-1", s.ID)
	assert.ErrorIs(t, err, ErrSectionNotFound)
	versions, err := svc.Repo.ListVersions(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	err = svc.Delete(ctx, "resume-1", s.ID)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestDeleteByResumeLeavesOtherResumes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustCreate(t, svc, "resume-1", "A", "a")
	kept := mustCreate(t, svc, "resume-2", "B", "b")

	require.NoError(t, svc.DeleteByResume(ctx, "resume-1"))

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = svc.List(ctx, "resume-2")
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, ids(list))
}

func TestEffectiveMarkdown(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	resume := resumes.Resume{ID: "resume-1", Markdown: "  # Raw resume\n"}

	got, err := svc.EffectiveMarkdown(ctx, resume)
	require.NoError(t, err)
	assert.Equal(t, "  # Raw resume\n", got, "falls back to raw markdown verbatim")

	mustCreate(t, svc, "resume-1", "Profile", "Summary text")
	mustCreate(t, svc, "resume-1", "Experience", "- Built things")

	got, err = svc.EffectiveMarkdown(ctx, resume)
	require.NoError(t, err)
	assert.Equal(t, "## Profile\n\nSummary text\n\n## Experience\n\n- Built things", got)
}

func TestConcurrentCreatesKeepOrdersUnique(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := CreateInput{Title: fmt.Sprintf("S%d", i)}
			if i%3 == 0 {
				in.Order = intPtr(1)
			}
			if _, err := svc.Create(ctx, "resume-1", in); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.List(ctx, "resume-1")
	require.NoError(t, err)
	require.Len(t, list, 20)
	seen := map[int]bool{}
	for _, s := range list {
		require.False(t, seen[s.Order], "duplicate order %d", s.Order)
		seen[s.Order] = true
	}
}

func TestRepoErrorsPropagate(t *testing.T) {
	svc := newTestService()
	boom := errors.New("boom")
	svc.Resumes = failingResumes{err: boom}

	_, err := svc.List(context.Background(), "resume-1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

type failingResumes struct{ err error }

func (f failingResumes) Get(context.Context, string) (resumes.Resume, error) {
	return resumes.Resume{}, f.err
}

type gateCascader struct {
	started chan struct{}
	release chan struct{}
}

func (g gateCascader) DeleteByResume(context.Context, string) error {
	close(g.started)
	<-g.release
	return nil
}

func TestCreateDuringResumeDeleteLeavesNoOrphan(t *testing.T) {
	ctx := context.Background()
	locks := &keylock.Map{}
	resumeSvc := &resumes.Service{Repo: resumes.NewMemoryRepo(), Locks: locks}
	svc := &Service{Repo: NewMemoryRepo(), Resumes: resumeSvc, Locks: locks}
	gate := gateCascader{started: make(chan struct{}), release: make(chan struct{})}
	resumeSvc.Cascade = []resumes.Cascader{gate, svc}

	resume, err := resumeSvc.Create(ctx, resumes.CreateInput{Title: "Backend", Markdown: "body"})
	require.NoError(t, err)
	mustCreate(t, svc, resume.ID, "Profile", "v1")

	deleted := make(chan error)
	go func() { deleted <- resumeSvc.Delete(ctx, resume.ID) }()
	<-gate.started

	created := make(chan error)
	go func() {
		_, err := svc.Create(ctx, resume.ID, CreateInput{Title: "Experience", Markdown: "late"})
		created <- err
	}()
	close(gate.release)

	require.NoError(t, <-deleted)
	assert.ErrorIs(t, <-created, ErrResumeNotFound)
	left, err := svc.Repo.ListByResume(ctx, resume.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
