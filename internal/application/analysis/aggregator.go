package analysis

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
)

const TopRankedLimit = 10

type AggregatorConfig struct {
	PositiveClusters int
	NegativeClusters int
}

// Aggregator folds comment records into a dashboard summary.
type Aggregator struct {
	clusterer *Clusterer
	cfg       AggregatorConfig
	logger    *slog.Logger
}

func NewAggregator(clusterer *Clusterer, cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if cfg.PositiveClusters <= 0 {
		cfg.PositiveClusters = DefaultPositiveClusters
	}
	if cfg.NegativeClusters <= 0 {
		cfg.NegativeClusters = DefaultNegativeClusters
	}
	return &Aggregator{clusterer: clusterer, cfg: cfg, logger: logging.OrDefault(logger)}
}

// Aggregate builds the summary. Placeholder records are only counted in
// UnclassifiedComments. Clustering failures leave an empty theme list and a
// Degraded entry; the only error returned is cancellation of ctx.
func (a *Aggregator) Aggregate(ctx context.Context, records []feedback.CommentRecord) (*feedback.DashboardSummary, error) {
	s := &feedback.DashboardSummary{
		SentimentCounts:   make(map[feedback.Sentiment]int, len(feedback.Sentiments)),
		CategoryCounts:    make(map[feedback.Category]int, len(feedback.Categories)),
		CriticalComments:  []feedback.CommentRecord{},
		TopPositiveThemes: []feedback.Theme{},
		TopNegativeThemes: []feedback.Theme{},
	}
	for _, v := range feedback.Sentiments {
		s.SentimentCounts[v] = 0
	}
	for _, v := range feedback.Categories {
		s.CategoryCounts[v] = 0
	}

	classified := make([]feedback.CommentRecord, 0, len(records))
	var positive, negative []string
	for _, r := range records {
		if !r.Classified {
			s.UnclassifiedComments++
			continue
		}
		classified = append(classified, r)
		s.SentimentCounts[r.Sentiment]++
		s.CategoryCounts[r.Category]++
		if r.IsCritical {
			s.CriticalComments = append(s.CriticalComments, r)
		}
		switch r.Sentiment {
		case feedback.SentimentPositive:
			positive = append(positive, r.OriginalText)
		case feedback.SentimentNegative:
			negative = append(negative, r.OriginalText)
		}
	}
	s.TotalComments = len(classified)
	s.TopRankedComments = TopRanked(classified, TopRankedLimit)

	var posErr, negErr error
	var g errgroup.Group
	g.Go(func() error {
		s.TopPositiveThemes, posErr = a.clusterer.Cluster(ctx, positive, a.cfg.PositiveClusters)
		return nil
	})
	g.Go(func() error {
		s.TopNegativeThemes, negErr = a.clusterer.Cluster(ctx, negative, a.cfg.NegativeClusters)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if posErr != nil {
		s.Degraded = append(s.Degraded, feedback.Degradation{Kind: feedback.DegradedClustering, Detail: "positive: " + posErr.Error()})
	}
	if negErr != nil {
		s.Degraded = append(s.Degraded, feedback.Degradation{Kind: feedback.DegradedClustering, Detail: "negative: " + negErr.Error()})
	}

	a.logger.Info("aggregation complete",
		"total", s.TotalComments,
		"unclassified", s.UnclassifiedComments,
		"critical", len(s.CriticalComments),
		"positive_themes", len(s.TopPositiveThemes),
		"negative_themes", len(s.TopNegativeThemes))
	return s, nil
}

// TopRanked returns up to n records by importance, highest first. Ties keep
// their input order.
func TopRanked(records []feedback.CommentRecord, n int) []feedback.CommentRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b feedback.CommentRecord) int {
		return b.ImportanceScore - a.ImportanceScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []feedback.CommentRecord{}
	}
	return sorted
}
