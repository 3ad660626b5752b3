package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

var _ domain.Repository = (*UploadRepository)(nil)

func (r *UploadRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS survey_uploads (
  id TEXT PRIMARY KEY,
  filename TEXT NOT NULL,
  headers TEXT[] NOT NULL,
  total_rows INTEGER NOT NULL,
  size_bytes BIGINT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts or updates an upload record
func (r *UploadRepository) Save(ctx context.Context, u *domain.Upload) error {
	const q = `
INSERT INTO survey_uploads
  (id, filename, headers, total_rows, size_bytes, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  filename=EXCLUDED.filename,
  headers=EXCLUDED.headers,
  total_rows=EXCLUDED.total_rows,
  size_bytes=EXCLUDED.size_bytes;
`
	headers := u.Headers
	if headers == nil {
		headers = []string{}
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q, string(u.ID), u.Filename, pq.Array(headers), u.TotalRows, u.Size, createdAt)
	return err
}

func (r *UploadRepository) Get(ctx context.Context, id domain.UploadID) (*domain.Upload, error) {
	const q = `
SELECT id, filename, headers, total_rows, size_bytes, created_at
FROM survey_uploads
WHERE id=$1;`
	var u domain.Upload
	var headers pq.StringArray
	err := r.db.QueryRowContext(ctx, q, string(id)).
		Scan(&u.ID, &u.Filename, &headers, &u.TotalRows, &u.Size, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	u.Headers = []string(headers)
	if u.Headers == nil {
		u.Headers = []string{}
	}
	return &u, nil
}

func (r *UploadRepository) Delete(ctx context.Context, id domain.UploadID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM survey_uploads WHERE id=$1`, string(id))
	return err
}
