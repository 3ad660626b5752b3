package middleware

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxColumnNameRunes = 256
	MinBatchSize       = 1
	MaxBatchSize       = 500
)

// ValidateFileID checks the id is a UUID as issued by the upload endpoint.
func ValidateFileID(id string) error {
	if id == "" {
		return fmt.Errorf("file_id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid file_id format")
	}
	return nil
}

// ValidateColumnName checks the column name is present and bounded.
func ValidateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column_name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxColumnNameRunes {
		return fmt.Errorf("column_name too long (max %d characters)", MaxColumnNameRunes)
	}
	return nil
}

// ValidateBatchSize checks batch_size is within [MinBatchSize, MaxBatchSize].
func ValidateBatchSize(n int) error {
	if n < MinBatchSize || n > MaxBatchSize {
		return fmt.Errorf("batch_size must be between %d and %d", MinBatchSize, MaxBatchSize)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
