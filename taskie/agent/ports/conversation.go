package agentports

import (
	"context"
	"encoding/json"
	"time"
)

// Turn represents one message in a conversation. Turns are append-only and
// never mutated after being written.
type Turn struct {
	Seq         int              `json:"seq"`
	Role        string           `json:"role"` // "user" | "assistant"
	Content     string           `json:"content"`
	Intent      string           `json:"intent,omitempty"`
	Params      json.RawMessage  `json:"params,omitempty"`
	Invocations []ToolInvocation `json:"invocations,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ToolInvocation records one tool call performed while producing a turn.
type ToolInvocation struct {
	Tool   string          `json:"tool"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Pending state kinds.
const (
	PendingConfirmationKind = "confirmation"
	PendingCandidatesKind   = "candidates"
)

// PendingConfirmation holds a destructive invocation awaiting an explicit
// yes/no from the user.
type PendingConfirmation struct {
	Intent      string          `json:"intent"`
	ToolName    string          `json:"tool_name"`
	ToolInput   json.RawMessage `json:"tool_input"`
	Description string          `json:"description"` // human-readable target, e.g. the task title
}

// Candidate is one entry of an ambiguous reference choice.
type Candidate struct {
	TaskID int64  `json:"task_id"`
	Title  string `json:"title"`
}

// PendingCandidates holds an ambiguous reference awaiting selection,
// together with the intent that produced it.
type PendingCandidates struct {
	Intent     string          `json:"intent"`
	Params     json.RawMessage `json:"params,omitempty"`
	Candidates []Candidate     `json:"candidates"`
}

// PendingState is the at-most-one transient record per conversation. Exactly
// one of Confirmation and Candidates is non-nil, matching Kind.
type PendingState struct {
	Kind         string               `json:"kind"`
	Confirmation *PendingConfirmation `json:"confirmation,omitempty"`
	Candidates   *PendingCandidates   `json:"candidates,omitempty"`
}

// ConversationStore persists turn history and transient pending state. It is
// the only cross-request memory the interpreter has.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, conversationID, owner string) error
	AppendTurn(ctx context.Context, conversationID string, turn Turn) error
	LoadRecent(ctx context.Context, conversationID string, limit int) ([]Turn, error)
	GetPending(ctx context.Context, conversationID string) (*PendingState, error)
	SetPending(ctx context.Context, conversationID string, state PendingState) error
	ClearPending(ctx context.Context, conversationID string) error
}
