package agentports

import "context"

// Limiter serializes pipeline executions per conversation. The pipeline
// reads-then-writes history and pending state, so two in-flight turns on the
// same conversation id must never interleave.
type Limiter interface {
	Acquire(ctx context.Context, conversationID string) (release func(), err error)
}
