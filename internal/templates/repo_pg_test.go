package templates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var columns = []string{"id", "name", "description", "asset_key", "created_at", "updated_at"}

func TestPGRepoListScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM templates ORDER BY name").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("classic-template", "Classic", nil, nil, now, now).
			AddRow("default-template", "Default", "Bundled", "templates/default-template.docx", now, now))

	list, err := (&PGRepo{DB: db}).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(list))
	}
	if list[0].Description != nil || list[0].AssetKey != nil {
		t.Fatalf("expected nil optionals, got %+v", list[0])
	}
	if list[1].AssetKey == nil || *list[1].AssetKey != "templates/default-template.docx" {
		t.Fatalf("unexpected asset key: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT (.+) FROM templates WHERE id").WithArgs("gone").WillReturnError(sql.ErrNoRows)

	if _, err := (&PGRepo{DB: db}).GetByID(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCreateAndSetAsset(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO templates").
		WithArgs("tpl-1", "Compact", sql.NullString{}, sql.NullString{}, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE templates SET asset_key").
		WithArgs("tpl-1", "templates/tpl-1.docx", now).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("tpl-1", "Compact", nil, "templates/tpl-1.docx", now, now))
	mock.ExpectQuery("UPDATE templates SET asset_key").
		WithArgs("gone", "templates/gone.docx", now).
		WillReturnError(sql.ErrNoRows)

	if err := repo.Create(context.Background(), Template{ID: "tpl-1", Name: "Compact", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tpl, err := repo.SetAsset(context.Background(), "tpl-1", "templates/tpl-1.docx", now)
	if err != nil {
		t.Fatalf("SetAsset: %v", err)
	}
	if tpl.AssetKey == nil || *tpl.AssetKey != "templates/tpl-1.docx" {
		t.Fatalf("unexpected template: %+v", tpl)
	}
	if _, err := repo.SetAsset(context.Background(), "gone", "templates/gone.docx", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
