package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

var _ domain.Repository = (*UploadRepository)(nil)

// EnsureSchema creates the uploads table when missing.
func (r *UploadRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS survey_uploads (
  id VARCHAR(64) PRIMARY KEY,
  filename VARCHAR(255) NOT NULL,
  headers_json JSON NOT NULL,
  total_rows INT NOT NULL,
  size_bytes BIGINT NOT NULL,
  created_at DATETIME(6) NOT NULL
) DEFAULT CHARSET=utf8mb4;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts or updates an upload record
func (r *UploadRepository) Save(ctx context.Context, u *domain.Upload) error {
	const q = `
INSERT INTO survey_uploads
  (id, filename, headers_json, total_rows, size_bytes, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  filename=VALUES(filename), headers_json=VALUES(headers_json),
  total_rows=VALUES(total_rows), size_bytes=VALUES(size_bytes);
`
	headers, err := encodeHeaders(u.Headers)
	if err != nil {
		return err
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, q, string(u.ID), stringOrDash(u.Filename), headers, u.TotalRows, u.Size, createdAt)
	return err
}

func (r *UploadRepository) Get(ctx context.Context, id domain.UploadID) (*domain.Upload, error) {
	const q = `
SELECT id, filename, headers_json, total_rows, size_bytes, created_at
FROM survey_uploads
WHERE id=?;`
	var u domain.Upload
	var headers string
	err := r.db.QueryRowContext(ctx, q, string(id)).
		Scan(&u.ID, &u.Filename, &headers, &u.TotalRows, &u.Size, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if u.Headers, err = decodeHeaders(headers); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UploadRepository) Delete(ctx context.Context, id domain.UploadID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM survey_uploads WHERE id=?`, string(id))
	return err
}
