package analysis

import (
	"strings"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

const bom = "\ufeff"

// ColumnIndex finds column in headers, ignoring surrounding whitespace and a
// leading byte order mark on either side.
func ColumnIndex(headers []string, column string) (int, error) {
	want := normalizeHeader(column)
	for i, h := range headers {
		if normalizeHeader(h) == want {
			return i, nil
		}
	}
	available := make([]string, len(headers))
	for i, h := range headers {
		available[i] = normalizeHeader(h)
	}
	return -1, &feedback.ColumnNotFoundError{Column: column, Available: available}
}

func normalizeHeader(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, bom))
}

// Preprocess returns the trimmed, non-blank values of column in row order.
// The table is not modified.
func Preprocess(t feedback.Table, column string) ([]string, error) {
	idx, err := ColumnIndex(t.Headers, column)
	if err != nil {
		return nil, err
	}

	comments := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		comments = append(comments, v)
	}
	return comments, nil
}

// CountDataRows counts rows that have at least one non-blank cell.
func CountDataRows(t feedback.Table) int {
	n := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				n++
				break
			}
		}
	}
	return n
}
