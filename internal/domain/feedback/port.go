package feedback

import "context"

// Labeler makes one remote attempt at labeling an ordered batch of comments.
// Implementations return exactly len(comments) labels or an error.
type Labeler interface {
	Label(ctx context.Context, comments []string) ([]Label, error)
}

// ThemeFinder groups comments into k themes in one remote attempt.
type ThemeFinder interface {
	FindThemes(ctx context.Context, comments []string, k int) ([]Theme, error)
}

// Narrator expands a summary digest into prose.
type Narrator interface {
	Narrate(ctx context.Context, digest string) (string, error)
}

// TableDecoder turns uploaded bytes into a Table, choosing the format from
// the file name.
type TableDecoder interface {
	Decode(filename string, data []byte) (Table, error)
}
