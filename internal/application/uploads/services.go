package uploads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/feedback-lens/internal/application"
	"github.com/bryanwahyu/feedback-lens/internal/application/analysis"
	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	domain "github.com/bryanwahyu/feedback-lens/internal/domain/uploads"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
)

// AllowedExtensions are the file types Register accepts.
var AllowedExtensions = []string{".csv", ".xlsx"}

// Service keeps uploaded survey files until they are analyzed.
// Safe for concurrent use.
type Service struct {
	Repo    domain.Repository
	Blobs   domain.BlobStore
	Decoder feedback.TableDecoder
	Clock   application.Clock
	// MaxBytes rejects larger files when > 0.
	MaxBytes int64
	Logger   *slog.Logger
	// NewID is overridable in tests.
	NewID func() string
}

func (s *Service) newID() domain.UploadID {
	if s.NewID != nil {
		return domain.UploadID(s.NewID())
	}
	return domain.UploadID(uuid.NewString())
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

// Register validates and stores a file, returning its preview metadata.
func (s *Service) Register(ctx context.Context, filename string, data []byte) (*domain.Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(ext) {
		return nil, fmt.Errorf("%w: %q (allowed: %s)", feedback.ErrUnsupportedFormat, ext, strings.Join(AllowedExtensions, ", "))
	}
	if s.MaxBytes > 0 && int64(len(data)) > s.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrTooLarge, len(data), s.MaxBytes)
	}

	table, err := s.Decoder.Decode(filename, data)
	if err != nil {
		return nil, err
	}

	u := &domain.Upload{
		ID:        s.newID(),
		Filename:  filepath.Base(filename),
		Headers:   table.Headers,
		TotalRows: analysis.CountDataRows(table),
		Size:      int64(len(data)),
		CreatedAt: s.clock().Now().UTC(),
	}
	if u.Headers == nil {
		u.Headers = []string{}
	}

	if err := s.Blobs.Put(ctx, u.BlobKey(), data); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if err := s.Repo.Save(ctx, u); err != nil {
		_ = s.Blobs.Delete(context.WithoutCancel(ctx), u.BlobKey())
		return nil, fmt.Errorf("save upload: %w", err)
	}

	logging.OrDefault(s.Logger).Info("upload registered",
		"file_id", u.ID, "filename", u.Filename, "bytes", u.Size, "rows", u.TotalRows)
	return u, nil
}

// Open returns the upload record and its bytes.
func (s *Service) Open(ctx context.Context, id domain.UploadID) (*domain.Upload, []byte, error) {
	u, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.Blobs.Get(ctx, u.BlobKey())
	if err != nil {
		return nil, nil, err
	}
	return u, data, nil
}

// Discard removes both the bytes and the record. Missing pieces are ignored.
func (s *Service) Discard(ctx context.Context, id domain.UploadID) error {
	u, err := s.Repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	if err := s.Blobs.Delete(ctx, u.BlobKey()); err != nil && !errors.Is(err, domain.ErrNotFound) {
		errs = append(errs, err)
	}
	if err := s.Repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func allowed(ext string) bool {
	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
