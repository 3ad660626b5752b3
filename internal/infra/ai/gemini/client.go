package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	domai "github.com/bryanwahyu/feedback-lens/internal/domain/ai"
)

const (
	defaultModel     = "gemini-1.5-flash-latest"
	defaultMaxTokens = 8192
)

type Client struct {
	genai     *genai.Client
	Model     string
	MaxTokens int
}

func NewClient(ctx context.Context, apiKey, model string, maxTokens int, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	cli, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{genai: cli, Model: model, MaxTokens: maxTokens}, nil
}

var _ domai.Client = (*Client)(nil)

func (c *Client) Complete(ctx context.Context, r domai.Request) (string, error) {
	model := c.genai.GenerativeModel(c.Model)
	model.SetMaxOutputTokens(int32(c.MaxTokens))
	if r.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(r.System)}}
	}
	// Gemini schemas use their own type; JSON mode plus the prompt's example is enough.
	if r.JSON || r.Schema != nil {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(r.Prompt))
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", domai.ErrEmptyResponse
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func isQuota(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(err.Error(), "RESOURCE_EXHAUSTED")
}
