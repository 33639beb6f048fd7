package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, resume_id, version_id, template_id, template_name, storage_key, size_bytes, generated_at`

// Create inserts a document record.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO resume_documents (` + documentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.ResumeID,
		nullString(doc.VersionID),
		nullString(doc.TemplateID),
		nullString(doc.TemplateName),
		doc.StorageKey,
		doc.SizeBytes,
		doc.GeneratedAt,
	)
	return err
}

// ListByResume returns a page of a resume's documents, newest first.
func (r *PGRepo) ListByResume(ctx context.Context, resumeID string, limit, offset int) ([]Document, error) {
	query := `SELECT ` + documentColumns + `
FROM resume_documents
WHERE resume_id = $1
ORDER BY generated_at DESC, id DESC
OFFSET $2`
	args := []any{resumeID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM resume_documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// DeleteByResume removes every document record of a resume.
func (r *PGRepo) DeleteByResume(ctx context.Context, resumeID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM resume_documents WHERE resume_id = $1`, resumeID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc          Document
		versionID    sql.NullString
		templateID   sql.NullString
		templateName sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.ResumeID,
		&versionID,
		&templateID,
		&templateName,
		&doc.StorageKey,
		&doc.SizeBytes,
		&doc.GeneratedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.VersionID = stringPtr(versionID)
	doc.TemplateID = stringPtr(templateID)
	doc.TemplateName = stringPtr(templateName)
	return doc, nil
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
