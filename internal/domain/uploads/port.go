package uploads

import "context"

// Repository port for upload metadata
type Repository interface {
	Save(ctx context.Context, u *Upload) error
	Get(ctx context.Context, id UploadID) (*Upload, error)
	Delete(ctx context.Context, id UploadID) error
}

// BlobStore port for the raw file bytes
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
