package sections

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoInsertAppendsAfterMaxOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	section := Section{ID: "sec-1", ResumeID: "resume-1", Title: "Profile", Markdown: "body", CreatedAt: now, UpdatedAt: now}
	initial := Version{ID: "ver-1", SectionID: "sec-1", VersionNo: 1, Markdown: "body", CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("resume-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(sort_order), 0) + 1 FROM resume_sections")).
		WithArgs("resume-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))
	mock.ExpectExec("INSERT INTO resume_sections").
		WithArgs("sec-1", "resume-1", "Profile", "body", 4, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO section_versions").
		WithArgs("ver-1", "sec-1", "body", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	created, err := repo.Insert(context.Background(), section, initial)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.Order != 4 {
		t.Fatalf("expected order 4, got %d", created.Order)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertAtPositionShiftsOthers(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	section := Section{ID: "sec-1", ResumeID: "resume-1", Title: "Profile", Order: 2, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("resume-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE resume_sections SET sort_order = sort_order + 1")).
		WithArgs("resume-1", 2, now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO resume_sections").
		WithArgs("sec-1", "resume-1", "Profile", "", 2, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO section_versions").
		WithArgs(sqlmock.AnyArg(), "sec-1", "", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if _, err := repo.Insert(context.Background(), section, Version{ID: "ver-1", CreatedAt: now}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoInsertRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(1))
	mock.ExpectExec("INSERT INTO resume_sections").WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.Insert(context.Background(), Section{ID: "sec-1", ResumeID: "resume-1", Title: "A", CreatedAt: now, UpdatedAt: now}, Version{ID: "ver-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveReturnsNextVersionNo(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	section := Section{ID: "sec-1", ResumeID: "resume-1", Title: "Profile", Markdown: "v3", UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE resume_sections SET title").
		WithArgs("sec-1", "resume-1", "Profile", "v3", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO section_versions").
		WithArgs("ver-3", "sec-1", "v3", now).
		WillReturnRows(sqlmock.NewRows([]string{"version_no"}).AddRow(3))
	mock.ExpectCommit()

	v, err := repo.Save(context.Background(), section, Version{ID: "ver-3", Markdown: "v3", CreatedAt: now})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v.VersionNo != 3 || v.SectionID != "sec-1" {
		t.Fatalf("unexpected version: %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSaveMissingSection(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE resume_sections SET title").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), Section{ID: "sec-1", ResumeID: "resume-1"}, Version{ID: "ver-1"})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReorderChecksPermutationInsideTx(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("resume-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM resume_sections").
		WithArgs("resume-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))
	mock.ExpectExec("UPDATE resume_sections SET sort_order").
		WithArgs("b", "resume-1", 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE resume_sections SET sort_order").
		WithArgs("a", "resume-1", 2, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Reorder(context.Background(), "resume-1", []string{"b", "a"}, now); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReorderRejectsStaleList(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM resume_sections").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b").AddRow("c"))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), "resume-1", []string{"b", "a"}, time.Now())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetVersionMapsNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM section_versions WHERE id").
		WithArgs("ver-9", "sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "version_no", "markdown", "created_at"}))

	_, err := repo.GetVersion(context.Background(), "sec-1", "ver-9")
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestPGRepoListByResumeScansRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM resume_sections WHERE resume_id = \\$1 ORDER BY sort_order").
		WithArgs("resume-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resume_id", "title", "markdown", "sort_order", "created_at", "updated_at"}).
			AddRow("a", "resume-1", "Profile", "p", 1, now, now).
			AddRow("b", "resume-1", "Skills", "", 2, now, now))

	list, err := repo.ListByResume(context.Background(), "resume-1")
	if err != nil {
		t.Fatalf("ListByResume: %v", err)
	}
	if len(list) != 2 || list[1].Title != "Skills" || list[1].Order != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
}
