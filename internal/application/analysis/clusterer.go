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

const (
	DefaultPositiveClusters = 5
	DefaultNegativeClusters = 7
	DefaultClusterInputCap  = 500

	fallbackTitleRunes = 40
)

type ClustererConfig struct {
	// InputCap limits how many comments go into one clustering prompt.
	InputCap    int
	CallTimeout time.Duration
}

// Clusterer groups comments of one sentiment into themes.
type Clusterer struct {
	finder feedback.ThemeFinder
	cfg    ClustererConfig
	logger *slog.Logger
}

func NewClusterer(finder feedback.ThemeFinder, cfg ClustererConfig, logger *slog.Logger) *Clusterer {
	if cfg.InputCap <= 0 {
		cfg.InputCap = DefaultClusterInputCap
	}
	return &Clusterer{finder: finder, cfg: cfg, logger: logging.OrDefault(logger)}
}

// Cluster asks for k themes. With fewer than k comments every comment becomes
// its own theme without a remote call. The returned slice is never nil; when
// the remote call fails it is empty and the error wraps feedback.ErrClustering.
// Callers treat that error as a degradation.
func (c *Clusterer) Cluster(ctx context.Context, comments []string, k int) ([]feedback.Theme, error) {
	if len(comments) == 0 || k <= 0 {
		return []feedback.Theme{}, nil
	}
	if len(comments) < k {
		return singletonThemes(comments), nil
	}
	if len(comments) > c.cfg.InputCap {
		comments = comments[:c.cfg.InputCap]
	}

	callCtx, cancel := withTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	got, err := c.finder.FindThemes(callCtx, comments, k)
	if err != nil {
		c.logger.Warn("theme clustering failed", "comments", len(comments), "clusters", k, "error", err)
		metrics.ObserveDegraded(feedback.DegradedClustering)
		return []feedback.Theme{}, fmt.Errorf("%w: %w", feedback.ErrClustering, err)
	}

	themes := make([]feedback.Theme, 0, min(len(got), k))
	for _, t := range got {
		if len(themes) == k {
			break
		}
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		t.ApproximateCount = max(t.ApproximateCount, 0)
		t.RepresentativeComment = strings.TrimSpace(t.RepresentativeComment)
		themes = append(themes, t)
	}
	return themes, nil
}

func singletonThemes(comments []string) []feedback.Theme {
	themes := make([]feedback.Theme, len(comments))
	for i, c := range comments {
		themes[i] = feedback.Theme{
			Title:                 feedback.Truncate(c, fallbackTitleRunes),
			ApproximateCount:      1,
			RepresentativeComment: c,
		}
	}
	return themes
}
