package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	domain "github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
)

// UploadRepository keeps upload records in process memory.
type UploadRepository struct {
	mu      sync.RWMutex
	uploads map[domain.UploadID]domain.Upload
}

func NewUploadRepository() *UploadRepository {
	return &UploadRepository{uploads: make(map[domain.UploadID]domain.Upload)}
}

var _ domain.Repository = (*UploadRepository)(nil)

func (r *UploadRepository) Save(_ context.Context, u *domain.Upload) error {
	cp := *u
	cp.Headers = slices.Clone(u.Headers)
	r.mu.Lock()
	r.uploads[u.ID] = cp
	r.mu.Unlock()
	return nil
}

func (r *UploadRepository) Get(_ context.Context, id domain.UploadID) (*domain.Upload, error) {
	r.mu.RLock()
	u, ok := r.uploads[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	u.Headers = slices.Clone(u.Headers)
	return &u, nil
}

func (r *UploadRepository) Delete(_ context.Context, id domain.UploadID) error {
	r.mu.Lock()
	delete(r.uploads, id)
	r.mu.Unlock()
	return nil
}

// Len reports how many uploads are held.
func (r *UploadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.uploads)
}
