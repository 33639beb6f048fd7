package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres. Child rows (sections, versions,
// documents) are removed by ON DELETE CASCADE.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, title, target_role, target_company, template_id, markdown, status, source_key, created_at, updated_at`

// Create inserts a resume.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (` + resumeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.Title,
		nullString(resume.TargetRole),
		nullString(resume.TargetCompany),
		nullString(resume.TemplateID),
		resume.Markdown,
		resume.Status,
		nullString(resume.SourceKey),
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// GetByID returns a resume by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	resume, err := scanResume(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// List returns all resumes, most recently updated first.
func (r *PGRepo) List(ctx context.Context) ([]Resume, error) {
	const query = `SELECT ` + resumeColumns + ` FROM resumes ORDER BY updated_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields of a resume.
func (r *PGRepo) Update(ctx context.Context, resume Resume) error {
	const query = `
UPDATE resumes
SET title = $2, target_role = $3, target_company = $4, template_id = $5, markdown = $6, status = $7, updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.Title,
		nullString(resume.TargetRole),
		nullString(resume.TargetCompany),
		nullString(resume.TemplateID),
		resume.Markdown,
		resume.Status,
		resume.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Delete removes a resume and, through foreign keys, everything it owns.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		resume        Resume
		targetRole    sql.NullString
		targetCompany sql.NullString
		templateID    sql.NullString
		sourceKey     sql.NullString
	)
	err := row.Scan(
		&resume.ID,
		&resume.Title,
		&targetRole,
		&targetCompany,
		&templateID,
		&resume.Markdown,
		&resume.Status,
		&sourceKey,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	resume.TargetRole = stringPtr(targetRole)
	resume.TargetCompany = stringPtr(targetCompany)
	resume.TemplateID = stringPtr(templateID)
	resume.SourceKey = stringPtr(sourceKey)
	return resume, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
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
