package feedback

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColumnNotFound means the requested comment column is not in the table.
	ErrColumnNotFound = errors.New("column not found")
	// ErrDecodeFailure means the uploaded bytes could not be read as a table.
	ErrDecodeFailure = errors.New("table could not be decoded")
	// ErrUnsupportedFormat is a decode failure caused by the file extension.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrDecodeFailure)

	ErrClassificationChunk = errors.New("classification chunk failed")
	ErrClustering          = errors.New("theme clustering failed")
	ErrReportGeneration    = errors.New("report generation failed")

	// ErrCountMismatch is returned when the model labels a different number of
	// comments than it was sent.
	ErrCountMismatch = errors.New("label count mismatch")
	// ErrMalformedResponse is returned when the model output is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed model response")
)

type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }
