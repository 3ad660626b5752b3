package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

func sampleSummary() *feedback.DashboardSummary {
	return &feedback.DashboardSummary{
		TotalComments: 12,
		SentimentCounts: map[feedback.Sentiment]int{
			feedback.SentimentPositive: 7, feedback.SentimentNegative: 3, feedback.SentimentNeutral: 2,
		},
		CategoryCounts: map[feedback.Category]int{
			feedback.CategoryLectureContent: 6, feedback.CategoryMaterials: 3,
			feedback.CategoryAdministration: 2, feedback.CategoryOther: 1,
		},
		TopPositiveThemes: []feedback.Theme{{Title: "説明が丁寧"}, {Title: "具体例が多い"}},
		CriticalComments:  []feedback.CommentRecord{{Position: 4}},
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()
	d := Digest(sampleSummary())
	for _, want := range []string{
		"総コメント数: 12件",
		"ポジティブ 7件, ネガティブ 3件, ニュートラル 2件",
		"講義内容 6件, 講義資料 3件, 運営 2件, その他 1件",
		"要注意コメント数: 1件",
		"主なポジティブテーマ: 説明が丁寧, 具体例が多い",
		"主なネガティブテーマ: なし",
	} {
		if !strings.Contains(d, want) {
			t.Fatalf("digest missing %q:\n%s", want, d)
		}
	}
}

func TestGenerateReturnsModelText(t *testing.T) {
	t.Parallel()
	n := &fakeNarrator{text: "## 全体的な傾向\n良好です。"}
	got := NewReporter(n, 0, nil).Generate(context.Background(), sampleSummary())
	if got != n.text {
		t.Fatalf("expected model text, got %q", got)
	}
	if !strings.Contains(n.digest, "総コメント数: 12件") {
		t.Fatalf("narrator did not receive digest: %q", n.digest)
	}
}

func TestGenerateFallback(t *testing.T) {
	t.Parallel()
	for _, n := range []*fakeNarrator{{err: errRemote}, {text: "   "}} {
		if got := NewReporter(n, 0, nil).Generate(context.Background(), sampleSummary()); got != FallbackReport {
			t.Fatalf("expected fallback, got %q", got)
		}
	}
}

func TestGenerateNilSummary(t *testing.T) {
	t.Parallel()
	n := &fakeNarrator{text: "ok"}
	if got := NewReporter(n, 0, nil).Generate(context.Background(), nil); got != "ok" {
		t.Fatalf("unexpected report %q", got)
	}
}
