package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docarchive/internal/shared/util"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// SaveDocument inserts the metadata, extracted text and binary rows in one
// transaction.
func (r *PGRepo) SaveDocument(ctx context.Context, meta Metadata, extractedText string, data []byte) (string, error) {
	const insertMetadata = `
INSERT INTO file_metadata (
    id,
    file_name,
    content_type,
    size_bytes,
    file_path,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6)`
	const insertText = `
INSERT INTO extracted_texts (metadata_id, extracted_text) VALUES ($1, $2)`
	const insertData = `
INSERT INTO file_data (metadata_id, data) VALUES ($1, $2)`

	id := meta.ID
	if id == "" {
		id = uuid.NewString()
	}
	if data == nil {
		data = []byte{}
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save document: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, insertMetadata, id, meta.FileName, meta.ContentType, meta.SizeBytes, meta.FilePath, meta.UploadedAt); err != nil {
		return "", fmt.Errorf("insert file_metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertText, id, util.StorableText(extractedText)); err != nil {
		return "", fmt.Errorf("insert extracted_texts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertData, id, data); err != nil {
		return "", fmt.Errorf("insert file_data: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save document: %w", err)
	}
	return id, nil
}

// GetDocument fetches metadata, text and binary for id.
func (r *PGRepo) GetDocument(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT m.id, m.file_name, m.content_type, m.size_bytes, m.file_path, m.uploaded_at, t.extracted_text, d.data
FROM file_metadata m
JOIN extracted_texts t ON t.metadata_id = m.id
JOIN file_data d ON d.metadata_id = m.id
WHERE m.id = $1`
	var doc Document
	var filePath sql.NullString
	var text sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.FileName,
		&doc.ContentType,
		&doc.SizeBytes,
		&filePath,
		&doc.UploadedAt,
		&text,
		&doc.Data,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if filePath.Valid {
		doc.FilePath = filePath.String
	}
	if text.Valid {
		doc.ExtractedText = text.String
	}
	return doc, nil
}

// GetBinary fetches only what is needed to stream the stored artifact.
func (r *PGRepo) GetBinary(ctx context.Context, id string) (Binary, error) {
	const query = `
SELECT m.content_type, m.file_name, d.data
FROM file_metadata m
JOIN file_data d ON d.metadata_id = m.id
WHERE m.id = $1`
	var bin Binary
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&bin.ContentType, &bin.FileName, &bin.Data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Binary{}, ErrNotFound
		}
		return Binary{}, err
	}
	return bin, nil
}

// List searches file names and extracted text, newest first.
func (r *PGRepo) List(ctx context.Context, query string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const stmt = `
SELECT m.id, m.file_name, m.content_type, m.size_bytes, m.file_path, m.uploaded_at, t.extracted_text
FROM file_metadata m
JOIN extracted_texts t ON t.metadata_id = m.id
WHERE $1 = '' OR m.file_name ILIKE $2 ESCAPE '\' OR t.extracted_text ILIKE $2 ESCAPE '\'
ORDER BY m.uploaded_at DESC, m.id
LIMIT $3 OFFSET $4`

	needle := strings.TrimSpace(query)
	rows, err := r.DB.QueryContext(ctx, stmt, needle, likePattern(needle), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var doc Document
		var filePath sql.NullString
		var text sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.FileName,
			&doc.ContentType,
			&doc.SizeBytes,
			&filePath,
			&doc.UploadedAt,
			&text,
		); err != nil {
			return nil, err
		}
		if filePath.Valid {
			doc.FilePath = filePath.String
		}
		if text.Valid {
			doc.ExtractedText = text.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

var _ DocumentsRepo = (*PGRepo)(nil)
