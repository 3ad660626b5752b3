package survey

import (
	"context"
	"time"

	domai "github.com/bryanwahyu/feedback-lens/internal/domain/ai"
	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
	"github.com/bryanwahyu/feedback-lens/internal/infra/ai/prompt"
	"github.com/bryanwahyu/feedback-lens/internal/metrics"
)

const (
	OpClassify = "classify"
	OpCluster  = "cluster"
	OpReport   = "report"
)

// Gateway speaks the survey prompts over any ai.Client.
type Gateway struct {
	client domai.Client
}

func NewGateway(client domai.Client) *Gateway {
	return &Gateway{client: client}
}

var (
	_ feedback.Labeler     = (*Gateway)(nil)
	_ feedback.ThemeFinder = (*Gateway)(nil)
	_ feedback.Narrator    = (*Gateway)(nil)
)

func (g *Gateway) complete(ctx context.Context, req domai.Request) (string, error) {
	start := time.Now()
	out, err := g.client.Complete(ctx, req)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveLLMCall(req.Operation, time.Since(start), outcome)
	return out, err
}

func (g *Gateway) Label(ctx context.Context, comments []string) ([]feedback.Label, error) {
	if len(comments) == 0 {
		return []feedback.Label{}, nil
	}
	out, err := g.complete(ctx, domai.Request{
		Operation:  OpClassify,
		System:     prompt.ClassifySystem,
		Prompt:     prompt.ClassifyPrompt(comments),
		JSON:       true,
		SchemaName: "comment_labels",
		Schema:     prompt.LabelSchema,
	})
	if err != nil {
		return nil, err
	}
	return ParseLabels(out)
}

func (g *Gateway) FindThemes(ctx context.Context, comments []string, k int) ([]feedback.Theme, error) {
	out, err := g.complete(ctx, domai.Request{
		Operation:  OpCluster,
		System:     prompt.ClusterSystem,
		Prompt:     prompt.ClusterPrompt(comments, k),
		JSON:       true,
		SchemaName: "comment_themes",
		Schema:     prompt.ThemeSchema,
	})
	if err != nil {
		return nil, err
	}
	return ParseThemes(out)
}

func (g *Gateway) Narrate(ctx context.Context, digest string) (string, error) {
	return g.complete(ctx, domai.Request{
		Operation: OpReport,
		System:    prompt.ReportSystem,
		Prompt:    prompt.ReportPrompt(digest),
	})
}
