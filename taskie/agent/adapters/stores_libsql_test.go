package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
	"github.com/taskie-agent/taskie/taskie/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.ConnectToDB(filepath.Join(t.TempDir(), "taskie-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLibSQLTaskStoreCRUD(t *testing.T) {
	store := NewLibSQLTaskStore(testDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "buy milk", "oat if they have it")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, ports.TaskPending, created.Status)

	_, err = store.Create(ctx, "alice", "call mom", "")
	require.NoError(t, err)

	all, err := store.List(ctx, "alice", ports.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := store.SetStatus(ctx, "alice", created.ID, ports.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, ports.TaskCompleted, completed.Status)

	// Idempotent: completing again still succeeds.
	again, err := store.SetStatus(ctx, "alice", created.ID, ports.TaskCompleted)
	require.NoError(t, err)
	assert.Equal(t, ports.TaskCompleted, again.Status)

	pending, err := store.List(ctx, "alice", ports.FilterPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "call mom", pending[0].Title)

	newTitle := "buy oat milk"
	updated, err := store.Update(ctx, "alice", created.ID, ports.TaskFields{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", updated.Title)

	require.NoError(t, store.Delete(ctx, "alice", created.ID))
	assert.ErrorIs(t, store.Delete(ctx, "alice", created.ID), ports.ErrNotFound)
}

func TestLibSQLTaskStoreValidation(t *testing.T) {
	store := NewLibSQLTaskStore(testDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "alice", "   ", "")
	assert.ErrorIs(t, err, ports.ErrValidation)

	_, err = store.Update(ctx, "alice", 1, ports.TaskFields{})
	assert.ErrorIs(t, err, ports.ErrValidation)
}

func TestLibSQLTaskStoreOwnerScoping(t *testing.T) {
	store := NewLibSQLTaskStore(testDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, "alice", "buy milk", "")
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, "bob", created.ID, ports.TaskCompleted)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "bob", created.ID), ports.ErrNotFound)

	tasks, err := store.List(ctx, "bob", ports.FilterAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestLibSQLConversationStoreTurns(t *testing.T) {
	conn := testDB(t)
	store := NewLibSQLConversationStore(conn)
	ctx := context.Background()

	require.NoError(t, store.EnsureConversation(ctx, "c1", "alice"))
	// Idempotent.
	require.NoError(t, store.EnsureConversation(ctx, "c1", "alice"))

	now := time.Now().UTC()
	require.NoError(t, store.AppendTurn(ctx, "c1", ports.Turn{
		Seq: 1, Role: "user", Content: "add buy milk", CreatedAt: now,
	}))
	require.NoError(t, store.AppendTurn(ctx, "c1", ports.Turn{
		Seq: 2, Role: "assistant", Content: "Got it!", Intent: "create_task",
		Params: json.RawMessage(`{"title":"buy milk"}`),
		Invocations: []ports.ToolInvocation{
			{Tool: "add_task", Input: json.RawMessage(`{"title":"buy milk"}`), Output: json.RawMessage(`{"id":1}`)},
		},
		CreatedAt: now,
	}))

	// Rewriting an existing sequence number is rejected.
	err := store.AppendTurn(ctx, "c1", ports.Turn{Seq: 2, Role: "user", Content: "x", CreatedAt: now})
	assert.Error(t, err)

	turns, err := store.LoadRecent(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
	assert.Equal(t, "create_task", turns[1].Intent)
	require.Len(t, turns[1].Invocations, 1)
	assert.Equal(t, "add_task", turns[1].Invocations[0].Tool)

	// A tighter limit returns only the most recent turns, oldest first.
	turns, err = store.LoadRecent(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, 2, turns[0].Seq)
}

func TestLibSQLConversationStorePending(t *testing.T) {
	store := NewLibSQLConversationStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, store.EnsureConversation(ctx, "c1", "alice"))

	got, err := store.GetPending(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := ports.PendingState{
		Kind: ports.PendingConfirmationKind,
		Confirmation: &ports.PendingConfirmation{
			Intent:      "delete_task",
			ToolName:    "delete_task",
			ToolInput:   json.RawMessage(`{"owner":"alice","task_id":1}`),
			Description: "buy milk",
		},
	}
	require.NoError(t, store.SetPending(ctx, "c1", state))

	got, err = store.GetPending(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ports.PendingConfirmationKind, got.Kind)
	require.NotNil(t, got.Confirmation)
	assert.Equal(t, "buy milk", got.Confirmation.Description)

	// Replacement keeps at most one pending record.
	require.NoError(t, store.SetPending(ctx, "c1", ports.PendingState{
		Kind: ports.PendingCandidatesKind,
		Candidates: &ports.PendingCandidates{
			Intent:     "complete_task",
			Candidates: []ports.Candidate{{TaskID: 1, Title: "buy milk"}},
		},
	}))
	got, err = store.GetPending(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ports.PendingCandidatesKind, got.Kind)

	require.NoError(t, store.ClearPending(ctx, "c1"))
	got, err = store.GetPending(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
	// Clearing again is a no-op.
	require.NoError(t, store.ClearPending(ctx, "c1"))
}
