package templates

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const templateColumns = `id, name, description, asset_key, created_at, updated_at`

// List returns templates ordered by name.
func (r *PGRepo) List(ctx context.Context) ([]Template, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns a template by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Template, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

// Create inserts a template.
func (r *PGRepo) Create(ctx context.Context, t Template) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO templates (`+templateColumns+`)
VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID,
		t.Name,
		nullString(t.Description),
		nullString(t.AssetKey),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// SetAsset records the storage key of a template's reference DOCX.
func (r *PGRepo) SetAsset(ctx context.Context, id, assetKey string, at time.Time) (Template, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, `
UPDATE templates SET asset_key = $2, updated_at = $3
WHERE id = $1
RETURNING `+templateColumns, id, assetKey, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var (
		t           Template
		description sql.NullString
		assetKey    sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &description, &assetKey, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Template{}, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if assetKey.Valid {
		t.AssetKey = &assetKey.String
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
