package survey

import (
	"context"
	"errors"
	"strings"
	"testing"

	domai "github.com/bryanwahyu/feedback-lens/internal/domain/ai"
)

type fakeClient struct {
	reqs []domai.Request
	out  string
	err  error
}

func (f *fakeClient) Complete(_ context.Context, req domai.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

func TestGatewayLabel(t *testing.T) {
	t.Parallel()
	c := &fakeClient{out: `{"results":[{"sentiment":"negative","category":"講義資料","score":6,"summary":"字が小さい","is_critical":false},{"sentiment":"positive","category":"講義内容","score":3,"summary":"楽しい","is_critical":false}]}`}
	g := NewGateway(c)

	got, err := g.Label(context.Background(), []string{"スライドの字が小さい", "楽しかった"})
	if err != nil {
		t.Fatalf("Label returned error: %v", err)
	}
	if len(got) != 2 || got[0].ImportanceScore != 6 {
		t.Fatalf("unexpected labels: %+v", got)
	}
	req := c.reqs[0]
	if req.Operation != OpClassify || !req.JSON || req.Schema == nil {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !strings.Contains(req.Prompt, "1. 「スライドの字が小さい」") || !strings.Contains(req.Prompt, "2. 「楽しかった」") {
		t.Fatalf("prompt does not number comments:\n%s", req.Prompt)
	}
}

func TestGatewayLabelEmpty(t *testing.T) {
	t.Parallel()
	c := &fakeClient{}
	got, err := NewGateway(c).Label(context.Background(), nil)
	if err != nil || len(got) != 0 || len(c.reqs) != 0 {
		t.Fatalf("expected no call for empty batch, got %v %v %d", got, err, len(c.reqs))
	}
}

func TestGatewayFindThemes(t *testing.T) {
	t.Parallel()
	c := &fakeClient{out: `[{"theme":"進行が速い","count":4,"representative_comment":"早口"}]`}
	got, err := NewGateway(c).FindThemes(context.Background(), []string{"a", "b"}, 1)
	if err != nil || len(got) != 1 || got[0].Title != "進行が速い" {
		t.Fatalf("unexpected themes: %+v, %v", got, err)
	}
	if c.reqs[0].Operation != OpCluster || !strings.Contains(c.reqs[0].Prompt, "テーマを1個") {
		t.Fatalf("unexpected request: %+v", c.reqs[0])
	}
}

func TestGatewayNarrate(t *testing.T) {
	t.Parallel()
	c := &fakeClient{out: "## 全体的な傾向"}
	got, err := NewGateway(c).Narrate(context.Background(), "総コメント数: 3件")
	if err != nil || got != "## 全体的な傾向" {
		t.Fatalf("unexpected narrative %q, %v", got, err)
	}
	if c.reqs[0].JSON || !strings.Contains(c.reqs[0].Prompt, "総コメント数: 3件") {
		t.Fatalf("unexpected request: %+v", c.reqs[0])
	}
}

func TestGatewayPropagatesErrors(t *testing.T) {
	t.Parallel()
	c := &fakeClient{err: domai.ErrQuotaExceeded}
	if _, err := NewGateway(c).Label(context.Background(), []string{"x"}); !errors.Is(err, domai.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
