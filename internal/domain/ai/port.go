package ai

import (
	"context"
	"encoding/json"
)

// Request is a single prompt to a chat model.
type Request struct {
	// Operation names the call for logs and metrics (classify, cluster, report).
	Operation string
	System    string
	Prompt    string
	// JSON asks the provider for a JSON-only answer.
	JSON bool
	// SchemaName and Schema, when set, request strict structured output.
	SchemaName string
	Schema     json.Marshaler
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
