package agentports

import (
	"context"
	"encoding/json"
)

// Tool defines the runtime that executes a tool call.
type Tool interface {
	Name() string
	Schema() []byte
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}
