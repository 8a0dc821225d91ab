package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// LibSQLConversationStore implements ConversationStore over an embedded
// libsql database. Turns are append-only; pending state is a single
// replaceable row per conversation.
type LibSQLConversationStore struct {
	db *sql.DB
}

// NewLibSQLConversationStore creates a new libsql conversation store.
func NewLibSQLConversationStore(db *sql.DB) *LibSQLConversationStore {
	return &LibSQLConversationStore{db: db}
}

// EnsureConversation creates the conversation row if it does not exist.
func (s *LibSQLConversationStore) EnsureConversation(ctx context.Context, conversationID, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, owner_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, conversationID, owner, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}
	return nil
}

// AppendTurn saves a conversation turn. The turn's sequence number must be
// the next in the conversation; the primary key rejects rewrites.
func (s *LibSQLConversationStore) AppendTurn(ctx context.Context, conversationID string, turn ports.Turn) error {
	var params, invocations any
	if len(turn.Params) > 0 {
		params = string(turn.Params)
	}
	if len(turn.Invocations) > 0 {
		data, err := json.Marshal(turn.Invocations)
		if err != nil {
			return fmt.Errorf("failed to marshal invocations: %w", err)
		}
		invocations = string(data)
	}

	var intent any
	if turn.Intent != "" {
		intent = turn.Intent
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO turns (conversation_id, seq, role, content, intent, params_json, invocations_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, conversationID, turn.Seq, turn.Role, turn.Content, intent, params, invocations, turn.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// LoadRecent loads the last `limit` turns in chronological order.
func (s *LibSQLConversationStore) LoadRecent(ctx context.Context, conversationID string, limit int) ([]ports.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, role, content, intent, params_json, invocations_json, created_at
		FROM turns
		WHERE conversation_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []ports.Turn
	for rows.Next() {
		var (
			t           ports.Turn
			intent      sql.NullString
			params      sql.NullString
			invocations sql.NullString
		)
		if err := rows.Scan(&t.Seq, &t.Role, &t.Content, &intent, &params, &invocations, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Intent = intent.String
		if params.Valid {
			t.Params = json.RawMessage(params.String)
		}
		if invocations.Valid {
			if err := json.Unmarshal([]byte(invocations.String), &t.Invocations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal invocations: %w", err)
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating turns: %w", err)
	}

	// Reverse to chronological order (oldest first)
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// GetPending returns the conversation's pending state, or nil when none.
func (s *LibSQLConversationStore) GetPending(ctx context.Context, conversationID string) (*ports.PendingState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload_json FROM pending_state WHERE conversation_id = ?
	`, conversationID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending state: %w", err)
	}

	var state ports.PendingState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending state: %w", err)
	}
	return &state, nil
}

// SetPending replaces the conversation's pending state. At most one pending
// record exists per conversation.
func (s *LibSQLConversationStore) SetPending(ctx context.Context, conversationID string, state ports.PendingState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal pending state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO pending_state (conversation_id, kind, payload_json, created_at)
		VALUES (?, ?, ?, ?)
	`, conversationID, state.Kind, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set pending state: %w", err)
	}
	return nil
}

// ClearPending discards the conversation's pending state, if any.
func (s *LibSQLConversationStore) ClearPending(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM pending_state WHERE conversation_id = ?
	`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to clear pending state: %w", err)
	}
	return nil
}

// Ensure LibSQLConversationStore implements the ConversationStore interface.
var _ ports.ConversationStore = (*LibSQLConversationStore)(nil)
