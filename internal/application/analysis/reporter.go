package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
	"github.com/bryanwahyu/feedback-lens/internal/metrics"
)

// FallbackReport is returned whenever the narrative could not be generated.
const FallbackReport = "申し訳ありません。レポートの生成中にエラーが発生しました。時間をおいて再度お試しください。"

var sentimentLabels = map[feedback.Sentiment]string{
	feedback.SentimentPositive: "ポジティブ",
	feedback.SentimentNegative: "ネガティブ",
	feedback.SentimentNeutral:  "ニュートラル",
}

// Reporter turns a dashboard summary into a prose report.
type Reporter struct {
	narrator    feedback.Narrator
	callTimeout time.Duration
	logger      *slog.Logger
}

func NewReporter(narrator feedback.Narrator, callTimeout time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{narrator: narrator, callTimeout: callTimeout, logger: logging.OrDefault(logger)}
}

// Generate makes a single attempt and returns FallbackReport on any failure.
func (r *Reporter) Generate(ctx context.Context, s *feedback.DashboardSummary) string {
	if s == nil {
		s = &feedback.DashboardSummary{}
	}
	callCtx, cancel := withTimeout(ctx, r.callTimeout)
	defer cancel()

	text, err := r.narrator.Narrate(callCtx, Digest(s))
	if err == nil && strings.TrimSpace(text) == "" {
		err = feedback.ErrMalformedResponse
	}
	if err != nil {
		r.logger.Warn("report generation failed", "error", fmt.Errorf("%w: %w", feedback.ErrReportGeneration, err))
		metrics.ObserveDegraded(feedback.DegradedReport)
		return FallbackReport
	}
	return text
}

// Digest renders the fixed-template text the report prompt is built around.
func Digest(s *feedback.DashboardSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "総コメント数: %d件\n", s.TotalComments)

	parts := make([]string, 0, len(feedback.Sentiments))
	for _, v := range feedback.Sentiments {
		parts = append(parts, fmt.Sprintf("%s %d件", sentimentLabels[v], s.SentimentCounts[v]))
	}
	fmt.Fprintf(&b, "感情の内訳: %s\n", strings.Join(parts, ", "))

	parts = parts[:0]
	for _, c := range feedback.Categories {
		parts = append(parts, fmt.Sprintf("%s %d件", c.Label(), s.CategoryCounts[c]))
	}
	fmt.Fprintf(&b, "カテゴリの内訳: %s\n", strings.Join(parts, ", "))

	fmt.Fprintf(&b, "要注意コメント数: %d件\n", len(s.CriticalComments))
	fmt.Fprintf(&b, "主なポジティブテーマ: %s\n", themeTitles(s.TopPositiveThemes))
	fmt.Fprintf(&b, "主なネガティブテーマ: %s\n", themeTitles(s.TopNegativeThemes))
	return b.String()
}

func themeTitles(themes []feedback.Theme) string {
	if len(themes) == 0 {
		return "なし"
	}
	titles := make([]string, len(themes))
	for i, t := range themes {
		titles[i] = t.Title
	}
	return strings.Join(titles, ", ")
}
