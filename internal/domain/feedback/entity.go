package feedback

import (
	"strings"
	"unicode/utf8"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists every known sentiment in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// ParseSentiment maps a model label to a Sentiment, defaulting to neutral.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

type Category string

const (
	CategoryLectureContent Category = "lecture_content"
	CategoryMaterials      Category = "materials"
	CategoryAdministration Category = "administration"
	CategoryOther          Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryLectureContent, CategoryMaterials, CategoryAdministration, CategoryOther}

// categoryLabels are the Japanese labels the survey forms and the model use.
var categoryLabels = map[Category]string{
	CategoryLectureContent: "講義内容",
	CategoryMaterials:      "講義資料",
	CategoryAdministration: "運営",
	CategoryOther:          "その他",
}

// Label returns the Japanese display label of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

// ParseCategory accepts both the code and the Japanese label; anything else is other.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for c, label := range categoryLabels {
		if s == label || strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoryOther
}

const (
	MinImportance   = 1
	MaxImportance   = 10
	MaxSummaryRunes = 20
)

// ClampImportance bounds a score to [MinImportance, MaxImportance].
func ClampImportance(n int) int {
	if n < MinImportance {
		return MinImportance
	}
	if n > MaxImportance {
		return MaxImportance
	}
	return n
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Table is a decoded spreadsheet: one header row and the data rows below it.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Label is what the model says about a single comment.
type Label struct {
	Sentiment       Sentiment
	Category        Category
	ImportanceScore int
	Summary         string
	IsCritical      bool
}

// Normalize clamps the score and truncates the summary.
func (l Label) Normalize() Label {
	l.Sentiment = ParseSentiment(string(l.Sentiment))
	l.Category = ParseCategory(string(l.Category))
	l.ImportanceScore = ClampImportance(l.ImportanceScore)
	l.Summary = Truncate(strings.TrimSpace(l.Summary), MaxSummaryRunes)
	return l
}

// CommentRecord is one analyzed comment. Position is the 1-based index in the
// preprocessed comment list. Classified is false for placeholders emitted when
// the batch holding the comment could not be classified.
type CommentRecord struct {
	Position        int       `json:"id"`
	OriginalText    string    `json:"original_text"`
	Sentiment       Sentiment `json:"sentiment"`
	Category        Category  `json:"category"`
	ImportanceScore int       `json:"total_score"`
	Summary         string    `json:"summary"`
	IsCritical      bool      `json:"is_critical"`
	Classified      bool      `json:"classified"`
}

// NewRecord builds a classified record from a normalized label.
func NewRecord(position int, text string, l Label) CommentRecord {
	l = l.Normalize()
	return CommentRecord{
		Position:        position,
		OriginalText:    text,
		Sentiment:       l.Sentiment,
		Category:        l.Category,
		ImportanceScore: l.ImportanceScore,
		Summary:         l.Summary,
		IsCritical:      l.IsCritical,
		Classified:      true,
	}
}

// Placeholder builds the record kept for a comment whose batch failed.
func Placeholder(position int, text string) CommentRecord {
	return CommentRecord{
		Position:        position,
		OriginalText:    text,
		Sentiment:       SentimentNeutral,
		Category:        CategoryOther,
		ImportanceScore: MinImportance,
	}
}

type Theme struct {
	Title                 string `json:"title"`
	ApproximateCount      int    `json:"approximate_count"`
	RepresentativeComment string `json:"representative_comment"`
}

// Degradation records a sub-call that failed and was replaced by a fallback.
type Degradation struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	DegradedClassificationChunk = "classification_chunk"
	DegradedClustering          = "clustering"
	DegradedReport              = "report"
)

type DashboardSummary struct {
	TotalComments        int               `json:"total_comments"`
	UnclassifiedComments int               `json:"unclassified_comments"`
	SentimentCounts      map[Sentiment]int `json:"sentiment_counts"`
	CategoryCounts       map[Category]int  `json:"category_counts"`
	TopPositiveThemes    []Theme           `json:"top_positive_themes"`
	TopNegativeThemes    []Theme           `json:"top_negative_themes"`
	CriticalComments     []CommentRecord   `json:"critical_comments"`
	TopRankedComments    []CommentRecord   `json:"top_ranked_comments"`
	Degraded             []Degradation     `json:"degraded,omitempty"`
}
