package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/logging"
	"github.com/bryanwahyu/feedback-lens/internal/metrics"
)

const (
	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

type ClassifierConfig struct {
	BatchSize int
	// Concurrency bounds how many batches are in flight; 1 keeps them sequential.
	Concurrency int
	Retry       RetryPolicy
	CallTimeout time.Duration
}

func (c ClassifierConfig) withDefaults() ClassifierConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}

// Classifier labels comments batch by batch through a feedback.Labeler.
type Classifier struct {
	labeler feedback.Labeler
	cfg     ClassifierConfig
	logger  *slog.Logger
}

func NewClassifier(labeler feedback.Labeler, cfg ClassifierConfig, logger *slog.Logger) *Classifier {
	return &Classifier{labeler: labeler, cfg: cfg.withDefaults(), logger: logging.OrDefault(logger)}
}

// Classification holds one record per input comment plus the batches that
// fell back to placeholders.
type Classification struct {
	Records  []feedback.CommentRecord
	Degraded []feedback.Degradation
}

// Classify splits comments into batches of batchSize (the configured size
// when batchSize <= 0) and labels each one. A batch that exhausts its retries
// yields placeholder records; only cancellation of ctx is returned as an error.
func (c *Classifier) Classify(ctx context.Context, comments []string, batchSize int) (*Classification, error) {
	out := &Classification{Records: make([]feedback.CommentRecord, 0, len(comments))}
	if len(comments) == 0 {
		return out, nil
	}
	if batchSize <= 0 {
		batchSize = c.cfg.BatchSize
	}

	batches := chunk(comments, batchSize)
	labels := make([][]feedback.Label, len(batches))
	failures := make([]error, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			c.logger.Info("classifying batch", "batch", i+1, "batches", len(batches), "size", len(batch))
			got, err := c.classifyBatch(gctx, i, batch)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failures[i] = err
				return nil
			}
			labels[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pos := 1
	for i, batch := range batches {
		if failures[i] != nil {
			c.logger.Warn("batch fell back to placeholders",
				"batch", i+1, "size", len(batch), "error", failures[i])
			metrics.ObserveDegraded(feedback.DegradedClassificationChunk)
			out.Degraded = append(out.Degraded, feedback.Degradation{
				Kind:   feedback.DegradedClassificationChunk,
				Detail: failures[i].Error(),
			})
		}
		for j, text := range batch {
			if failures[i] != nil {
				out.Records = append(out.Records, feedback.Placeholder(pos, text))
			} else {
				out.Records = append(out.Records, feedback.NewRecord(pos, text, labels[i][j]))
			}
			pos++
		}
	}
	return out, nil
}

// classifyBatch runs the retry loop for one batch. Transport errors, bad JSON
// and count mismatches are all retried.
func (c *Classifier) classifyBatch(ctx context.Context, idx int, batch []string) ([]feedback.Label, error) {
	maxAttempts := c.cfg.Retry.attempts()
	attempt := 0
	var labels []feedback.Label

	err := retry.Do(ctx, c.cfg.Retry.Backoff(), func(ctx context.Context) error {
		attempt++
		callCtx, cancel := withTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()

		got, err := c.labeler.Label(callCtx, batch)
		if err == nil && len(got) != len(batch) {
			err = fmt.Errorf("%w: sent %d, got %d", feedback.ErrCountMismatch, len(batch), len(got))
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("classification attempt failed",
				"batch", idx+1, "attempt", attempt, "max_attempts", maxAttempts, "error", err)
			if attempt < maxAttempts {
				metrics.ObserveBatchRetry()
			}
			return retry.RetryableError(err)
		}
		labels = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: batch %d after %d attempts: %w", feedback.ErrClassificationChunk, idx+1, attempt, err)
	}
	return labels, nil
}

// chunk splits items into consecutive slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
