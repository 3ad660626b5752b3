package uploads

import (
	"path/filepath"
	"strings"
	"time"
)

// UploadID identifier type
type UploadID string

// Upload is a survey file waiting to be analyzed.
type Upload struct {
	ID        UploadID  `json:"file_id"`
	Filename  string    `json:"filename"`
	Headers   []string  `json:"headers"`
	TotalRows int       `json:"total_rows"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// BlobKey is the object key the file bytes are stored under, e.g. "<uuid>.csv".
func (u *Upload) BlobKey() string {
	return string(u.ID) + strings.ToLower(filepath.Ext(u.Filename))
}
