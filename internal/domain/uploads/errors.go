package uploads

import "errors"

var (
	// ErrNotFound is returned by repositories and blob stores for unknown ids.
	ErrNotFound = errors.New("upload not found")
	// ErrTooLarge is returned when the file exceeds the configured size limit.
	ErrTooLarge = errors.New("upload too large")
)
