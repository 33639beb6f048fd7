package sections

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Mutations that depend on the set
// of a resume's sections run in a transaction holding an advisory lock on
// the resume id, so API instances sharing a database agree on ordering.
type PGRepo struct {
	DB *sql.DB
}

const sectionColumns = `id, resume_id, title, markdown, sort_order, created_at, updated_at`
const versionColumns = `id, section_id, version_no, markdown, created_at`

// ListByResume returns a resume's sections in display order.
func (r *PGRepo) ListByResume(ctx context.Context, resumeID string) ([]Section, error) {
	const query = `SELECT ` + sectionColumns + ` FROM resume_sections WHERE resume_id = $1 ORDER BY sort_order, created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns a section of the given resume.
func (r *PGRepo) GetByID(ctx context.Context, resumeID, sectionID string) (Section, error) {
	const query = `SELECT ` + sectionColumns + ` FROM resume_sections WHERE id = $1 AND resume_id = $2`
	s, err := scanSection(r.DB.QueryRowContext(ctx, query, sectionID, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Section{}, ErrSectionNotFound
		}
		return Section{}, err
	}
	return s, nil
}

// Insert stores a section and its first history entry.
func (r *PGRepo) Insert(ctx context.Context, section Section, initial Version) (created Section, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Section{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockResume(ctx, tx, section.ResumeID); err != nil {
		return Section{}, err
	}
	if section.Order <= 0 {
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM resume_sections WHERE resume_id = $1`,
			section.ResumeID,
		).Scan(&section.Order)
		if err != nil {
			return Section{}, err
		}
	} else {
		_, err = tx.ExecContext(ctx, `
UPDATE resume_sections SET sort_order = sort_order + 1, updated_at = $3
WHERE resume_id = $1 AND sort_order >= $2`, section.ResumeID, section.Order, section.CreatedAt)
		if err != nil {
			return Section{}, err
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO resume_sections (`+sectionColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		section.ID,
		section.ResumeID,
		section.Title,
		section.Markdown,
		section.Order,
		section.CreatedAt,
		section.UpdatedAt,
	)
	if err != nil {
		return Section{}, err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO section_versions (`+versionColumns+`)
VALUES ($1, $2, 1, $3, $4)`, initial.ID, section.ID, initial.Markdown, initial.CreatedAt)
	if err != nil {
		return Section{}, err
	}
	if err = tx.Commit(); err != nil {
		return Section{}, err
	}
	return section, nil
}

// Save updates the section and appends the next history entry. The row lock
// taken by the UPDATE serializes concurrent saves of one section, so the
// version number read by the INSERT is always current.
func (r *PGRepo) Save(ctx context.Context, section Section, version Version) (saved Version, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Version{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
UPDATE resume_sections SET title = $3, markdown = $4, updated_at = $5
WHERE id = $1 AND resume_id = $2`,
		section.ID,
		section.ResumeID,
		section.Title,
		section.Markdown,
		section.UpdatedAt,
	)
	if err != nil {
		return Version{}, err
	}
	if err = expectOneRow(res, ErrSectionNotFound); err != nil {
		return Version{}, err
	}

	version.SectionID = section.ID
	err = tx.QueryRowContext(ctx, `
INSERT INTO section_versions (`+versionColumns+`)
SELECT $1, $2, COALESCE(MAX(version_no), 0) + 1, $3, $4 FROM section_versions WHERE section_id = $2
RETURNING version_no`, version.ID, version.SectionID, version.Markdown, version.CreatedAt).Scan(&version.VersionNo)
	if err != nil {
		return Version{}, err
	}
	if err = tx.Commit(); err != nil {
		return Version{}, err
	}
	return version, nil
}

// Delete removes a section; its history goes with it through ON DELETE CASCADE.
func (r *PGRepo) Delete(ctx context.Context, resumeID, sectionID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_sections WHERE id = $1 AND resume_id = $2`, sectionID, resumeID)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrSectionNotFound)
}

// DeleteByResume removes every section of a resume.
func (r *PGRepo) DeleteByResume(ctx context.Context, resumeID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM resume_sections WHERE resume_id = $1`, resumeID)
	return err
}

// Reorder assigns display order from ids.
func (r *PGRepo) Reorder(ctx context.Context, resumeID string, ids []string, at time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockResume(ctx, tx, resumeID); err != nil {
		return err
	}
	current, err := listIDs(ctx, tx, resumeID)
	if err != nil {
		return err
	}
	if err = checkPermutation(current, ids); err != nil {
		return err
	}
	for i, id := range ids {
		_, err = tx.ExecContext(ctx, `
UPDATE resume_sections SET sort_order = $3, updated_at = $4
WHERE id = $1 AND resume_id = $2 AND sort_order <> $3`, id, resumeID, i+1, at)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListVersions returns a section's history, oldest first.
func (r *PGRepo) ListVersions(ctx context.Context, sectionID string) ([]Version, error) {
	const query = `SELECT ` + versionColumns + ` FROM section_versions WHERE section_id = $1 ORDER BY version_no`
	rows, err := r.DB.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.SectionID, &v.VersionNo, &v.Markdown, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetVersion returns one history entry of a section.
func (r *PGRepo) GetVersion(ctx context.Context, sectionID, versionID string) (Version, error) {
	const query = `SELECT ` + versionColumns + ` FROM section_versions WHERE id = $1 AND section_id = $2`
	var v Version
	err := r.DB.QueryRowContext(ctx, query, versionID, sectionID).
		Scan(&v.ID, &v.SectionID, &v.VersionNo, &v.Markdown, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Version{}, ErrVersionNotFound
		}
		return Version{}, err
	}
	return v, nil
}

func lockResume(ctx context.Context, tx *sql.Tx, resumeID string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, resumeID)
	return err
}

func listIDs(ctx context.Context, tx *sql.Tx, resumeID string) ([]Section, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM resume_sections WHERE resume_id = $1`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Section
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (Section, error) {
	var s Section
	err := row.Scan(&s.ID, &s.ResumeID, &s.Title, &s.Markdown, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
