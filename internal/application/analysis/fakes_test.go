package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

var errRemote = errors.New("remote unavailable")

type fakeLabeler struct {
	mu    sync.Mutex
	calls [][]string
	// fn overrides the default labeling when set.
	fn func(call int, batch []string) ([]feedback.Label, error)
}

func (f *fakeLabeler) Label(_ context.Context, batch []string) ([]feedback.Label, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), batch...))
	call := len(f.calls)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(call, batch)
	}
	return labelsFor(batch), nil
}

func (f *fakeLabeler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// labelsFor derives a label from the comment text: "pos"/"neg" prefixes pick
// the sentiment, "!" marks critical.
func labelsFor(batch []string) []feedback.Label {
	out := make([]feedback.Label, len(batch))
	for i, c := range batch {
		l := feedback.Label{Sentiment: feedback.SentimentNeutral, Category: feedback.CategoryOther, ImportanceScore: 5, Summary: c}
		switch {
		case strings.HasPrefix(c, "pos"):
			l.Sentiment = feedback.SentimentPositive
			l.Category = feedback.CategoryLectureContent
		case strings.HasPrefix(c, "neg"):
			l.Sentiment = feedback.SentimentNegative
			l.Category = feedback.CategoryAdministration
		}
		l.IsCritical = strings.Contains(c, "!")
		out[i] = l
	}
	return out
}

type fakeFinder struct {
	mu    sync.Mutex
	calls []int
	err   error
	// themes returned per call; defaults to k numbered themes
	themes []feedback.Theme
}

func (f *fakeFinder) FindThemes(_ context.Context, comments []string, k int) ([]feedback.Theme, error) {
	f.mu.Lock()
	f.calls = append(f.calls, len(comments))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.themes != nil {
		return f.themes, nil
	}
	out := make([]feedback.Theme, k)
	for i := range out {
		out[i] = feedback.Theme{Title: fmt.Sprintf("theme %d", i+1), ApproximateCount: len(comments) / k, RepresentativeComment: comments[i]}
	}
	return out, nil
}

func (f *fakeFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNarrator struct {
	digest string
	text   string
	err    error
}

func (f *fakeNarrator) Narrate(_ context.Context, digest string) (string, error) {
	f.digest = digest
	return f.text, f.err
}

func comments(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return out
}

func zeroDelay() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 0}
}
