package versions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const versionColumns = `id, resume_id, version_no, label, markdown, template_id, created_at`

// Create numbers and inserts a version inside a transaction holding the
// resume's advisory lock.
func (r *PGRepo) Create(ctx context.Context, v Version) (created Version, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, v.ResumeID); err != nil {
		return Version{}, err
	}
	err = tx.QueryRowContext(ctx, `
INSERT INTO resume_versions (`+versionColumns+`)
SELECT $1, $2, COALESCE(MAX(version_no), 0) + 1, $3, $4, $5, $6 FROM resume_versions WHERE resume_id = $2
RETURNING version_no`,
		v.ID,
		v.ResumeID,
		nullString(v.Label),
		v.Markdown,
		nullString(v.TemplateID),
		v.CreatedAt,
	).Scan(&v.VersionNo)
	if err != nil {
		return Version{}, err
	}
	if err = tx.Commit(); err != nil {
		return Version{}, err
	}
	return v, nil
}

// ListByResume returns a resume's versions, oldest first.
func (r *PGRepo) ListByResume(ctx context.Context, resumeID string) ([]Version, error) {
	const query = `SELECT ` + versionColumns + ` FROM resume_versions WHERE resume_id = $1 ORDER BY version_no`
	rows, err := r.DB.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID returns a version by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Version, error) {
	const query = `SELECT ` + versionColumns + ` FROM resume_versions WHERE id = $1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrVersionNotFound
		}
		return Version{}, err
	}
	return v, nil
}

// DeleteByResume removes every version of a resume.
func (r *PGRepo) DeleteByResume(ctx context.Context, resumeID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM resume_versions WHERE resume_id = $1`, resumeID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (Version, error) {
	var (
		v          Version
		label      sql.NullString
		templateID sql.NullString
	)
	if err := row.Scan(&v.ID, &v.ResumeID, &v.VersionNo, &label, &v.Markdown, &templateID, &v.CreatedAt); err != nil {
		return Version{}, err
	}
	v.Label = stringPtr(label)
	v.TemplateID = stringPtr(templateID)
	return v, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

var _ Repo = (*PGRepo)(nil)
