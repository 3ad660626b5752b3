package analysis

import (
	"context"
	"testing"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

func record(pos int, s feedback.Sentiment, c feedback.Category, score int, critical bool) feedback.CommentRecord {
	return feedback.CommentRecord{
		Position:        pos,
		OriginalText:    string(s) + "-" + string(rune('a'+pos)),
		Sentiment:       s,
		Category:        c,
		ImportanceScore: score,
		IsCritical:      critical,
		Classified:      true,
	}
}

func TestAggregateCounts(t *testing.T) {
	t.Parallel()
	f := &fakeFinder{}
	a := NewAggregator(NewClusterer(f, ClustererConfig{}, nil), AggregatorConfig{}, nil)

	records := []feedback.CommentRecord{
		record(1, feedback.SentimentPositive, feedback.CategoryLectureContent, 4, false),
		record(2, feedback.SentimentNegative, feedback.CategoryMaterials, 9, true),
		feedback.Placeholder(3, "unlabeled"),
		record(4, feedback.SentimentPositive, feedback.CategoryLectureContent, 9, false),
		record(5, feedback.SentimentNegative, feedback.CategoryMaterials, 2, true),
	}
	s, err := a.Aggregate(context.Background(), records)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if s.TotalComments != 4 || s.UnclassifiedComments != 1 {
		t.Fatalf("total=%d unclassified=%d", s.TotalComments, s.UnclassifiedComments)
	}
	if s.SentimentCounts[feedback.SentimentPositive] != 2 || s.SentimentCounts[feedback.SentimentNegative] != 2 {
		t.Fatalf("unexpected sentiment counts: %v", s.SentimentCounts)
	}
	if v, ok := s.SentimentCounts[feedback.SentimentNeutral]; !ok || v != 0 {
		t.Fatalf("neutral should be zero-filled: %v", s.SentimentCounts)
	}
	if len(s.CategoryCounts) != len(feedback.Categories) || s.CategoryCounts[feedback.CategoryOther] != 0 {
		t.Fatalf("categories should be zero-filled: %v", s.CategoryCounts)
	}
	if len(s.CriticalComments) != 2 || s.CriticalComments[0].Position != 2 || s.CriticalComments[1].Position != 5 {
		t.Fatalf("unexpected critical comments: %+v", s.CriticalComments)
	}
	// fewer comments than clusters: one theme per comment, no calls
	if len(s.TopPositiveThemes) != 2 || len(s.TopNegativeThemes) != 2 || f.callCount() != 0 {
		t.Fatalf("themes pos=%d neg=%d calls=%d", len(s.TopPositiveThemes), len(s.TopNegativeThemes), f.callCount())
	}
}

func TestAggregateTopRankedStable(t *testing.T) {
	t.Parallel()
	var records []feedback.CommentRecord
	for i := 1; i <= 15; i++ {
		score := 5
		if i%3 == 0 {
			score = 8
		}
		records = append(records, record(i, feedback.SentimentNeutral, feedback.CategoryOther, score, false))
	}
	a := NewAggregator(NewClusterer(&fakeFinder{}, ClustererConfig{}, nil), AggregatorConfig{}, nil)
	s, err := a.Aggregate(context.Background(), records)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(s.TopRankedComments) != 10 {
		t.Fatalf("expected 10 ranked comments, got %d", len(s.TopRankedComments))
	}
	want := []int{3, 6, 9, 12, 15, 1, 2, 4, 5, 7}
	for i, r := range s.TopRankedComments {
		if r.Position != want[i] {
			t.Fatalf("rank %d: expected position %d, got %d", i, want[i], r.Position)
		}
	}
}

func TestAggregateClusteringFailure(t *testing.T) {
	t.Parallel()
	var records []feedback.CommentRecord
	for i := 1; i <= 8; i++ {
		records = append(records, record(i, feedback.SentimentNegative, feedback.CategoryAdministration, 6, false))
	}
	for i := 9; i <= 14; i++ {
		records = append(records, record(i, feedback.SentimentPositive, feedback.CategoryAdministration, 6, false))
	}
	f := &fakeFinder{err: errRemote}
	a := NewAggregator(NewClusterer(f, ClustererConfig{}, nil), AggregatorConfig{}, nil)
	s, err := a.Aggregate(context.Background(), records)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if s.TopNegativeThemes == nil || len(s.TopNegativeThemes) != 0 {
		t.Fatalf("expected empty negative themes, got %v", s.TopNegativeThemes)
	}
	if s.TopPositiveThemes == nil || len(s.TopPositiveThemes) != 0 {
		t.Fatalf("expected empty positive themes, got %v", s.TopPositiveThemes)
	}
	if s.TotalComments != 14 || len(s.TopRankedComments) != 10 {
		t.Fatalf("summary incomplete: %+v", s)
	}
	if len(s.Degraded) != 2 {
		t.Fatalf("expected two clustering degradations, got %+v", s.Degraded)
	}
	if f.callCount() != 2 {
		t.Fatalf("expected one call per sentiment, got %d", f.callCount())
	}
}

func TestAggregateEmpty(t *testing.T) {
	t.Parallel()
	a := NewAggregator(NewClusterer(&fakeFinder{}, ClustererConfig{}, nil), AggregatorConfig{}, nil)
	s, err := a.Aggregate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if s.TotalComments != 0 || s.TopRankedComments == nil || s.CriticalComments == nil {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}
