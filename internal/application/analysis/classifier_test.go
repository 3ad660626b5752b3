package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

func newTestClassifier(l feedback.Labeler, concurrency int) *Classifier {
	return NewClassifier(l, ClassifierConfig{BatchSize: 50, Concurrency: concurrency, Retry: zeroDelay()}, nil)
}

func TestClassifyBatchesInOrder(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{}
	c := newTestClassifier(l, 1)

	in := comments("pos", 120)
	got, err := c.Classify(context.Background(), in, 50)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if len(l.calls) != 3 {
		t.Fatalf("expected 3 remote calls, got %d", len(l.calls))
	}
	for i, want := range []int{50, 50, 20} {
		if len(l.calls[i]) != want {
			t.Fatalf("call %d: expected %d comments, got %d", i, want, len(l.calls[i]))
		}
	}
	if len(got.Records) != 120 {
		t.Fatalf("expected 120 records, got %d", len(got.Records))
	}
	for i, r := range got.Records {
		if r.Position != i+1 || r.OriginalText != in[i] {
			t.Fatalf("record %d out of order: %+v", i, r)
		}
		if !r.Classified || r.Sentiment != feedback.SentimentPositive {
			t.Fatalf("record %d not labeled: %+v", i, r)
		}
	}
	if len(got.Degraded) != 0 {
		t.Fatalf("expected no degradations, got %v", got.Degraded)
	}
}

func TestClassifyEmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{}
	got, err := newTestClassifier(l, 1).Classify(context.Background(), nil, 50)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if len(got.Records) != 0 || l.callCount() != 0 {
		t.Fatalf("expected empty result and no calls, got %d records, %d calls", len(got.Records), l.callCount())
	}
}

func TestClassifyDefaultBatchSize(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{}
	if _, err := newTestClassifier(l, 1).Classify(context.Background(), comments("c", 101), 0); err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if l.callCount() != 3 {
		t.Fatalf("expected 3 calls with default batch size 50, got %d", l.callCount())
	}
}

func TestClassifyFailedBatchBecomesPlaceholders(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{fn: func(_ int, batch []string) ([]feedback.Label, error) {
		if batch[0] == "c-51" {
			return nil, errRemote
		}
		return labelsFor(batch), nil
	}}
	got, err := newTestClassifier(l, 1).Classify(context.Background(), comments("c", 120), 50)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	// 1 + 3 attempts + 1
	if l.callCount() != 5 {
		t.Fatalf("expected 5 calls, got %d", l.callCount())
	}
	if len(got.Records) != 120 {
		t.Fatalf("expected 120 records, got %d", len(got.Records))
	}
	for i, r := range got.Records {
		inFailed := i >= 50 && i < 100
		if r.Classified == inFailed {
			t.Fatalf("record %d: classified=%v, want %v", i, r.Classified, !inFailed)
		}
		if r.Position != i+1 {
			t.Fatalf("record %d has position %d", i, r.Position)
		}
	}
	if len(got.Degraded) != 1 || got.Degraded[0].Kind != feedback.DegradedClassificationChunk {
		t.Fatalf("expected one chunk degradation, got %+v", got.Degraded)
	}
}

func TestClassifyRetriesCountMismatch(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{fn: func(call int, batch []string) ([]feedback.Label, error) {
		if call == 1 {
			return labelsFor(batch[1:]), nil
		}
		return labelsFor(batch), nil
	}}
	got, err := newTestClassifier(l, 1).Classify(context.Background(), comments("neg", 10), 50)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if l.callCount() != 2 {
		t.Fatalf("expected a retry after the mismatch, got %d calls", l.callCount())
	}
	for _, r := range got.Records {
		if !r.Classified {
			t.Fatalf("expected all records classified after retry: %+v", r)
		}
	}
}

func TestClassifyRetriesMalformedResponse(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{fn: func(call int, batch []string) ([]feedback.Label, error) {
		if call < 3 {
			return nil, fmt.Errorf("%w: not json", feedback.ErrMalformedResponse)
		}
		return labelsFor(batch), nil
	}}
	got, err := newTestClassifier(l, 1).Classify(context.Background(), comments("c", 3), 50)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if l.callCount() != 3 || !got.Records[0].Classified {
		t.Fatalf("expected success on third attempt, calls=%d records=%+v", l.callCount(), got.Records)
	}
}

func TestClassifyConcurrentKeepsOrder(t *testing.T) {
	t.Parallel()
	l := &fakeLabeler{}
	in := comments("pos", 230)
	got, err := newTestClassifier(l, 4).Classify(context.Background(), in, 25)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if l.callCount() != 10 {
		t.Fatalf("expected 10 calls, got %d", l.callCount())
	}
	for i, r := range got.Records {
		if r.OriginalText != in[i] || r.Position != i+1 {
			t.Fatalf("record %d out of order: %+v", i, r)
		}
	}
}

func TestClassifyCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClassifier(&fakeLabeler{}, 1).Classify(ctx, comments("c", 5), 50)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestChunk(t *testing.T) {
	t.Parallel()
	got := chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != 5 {
		t.Fatalf("unexpected chunks: %v", got)
	}
	if chunk([]int{}, 3) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
