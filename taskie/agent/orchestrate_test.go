package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
	"github.com/taskie-agent/taskie/taskie/agent/tools"
)

// stubTool records invocations and returns a canned result or error.
type stubTool struct {
	name    string
	result  any
	err     error
	calls   int
	lastCtx context.Context
}

func (t *stubTool) Name() string { return t.name }

func (t *stubTool) Schema() []byte {
	return []byte(`{"type": "object"}`)
}

func (t *stubTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	t.calls++
	t.lastCtx = ctx
	if t.err != nil {
		return nil, t.err
	}
	return t.result, nil
}

var _ ports.Tool = (*stubTool)(nil)

func TestOrchestratorExecutesInOrder(t *testing.T) {
	first := &stubTool{name: "first", result: map[string]any{"ok": true}}
	second := &stubTool{name: "second", result: map[string]any{"ok": true}}
	registry, err := tools.NewRegistry(first, second)
	require.NoError(t, err)

	orch := NewOrchestrator(registry, noOpTracer{}, time.Second)
	results := orch.Execute(context.Background(), []Step{
		{Tool: "first", Input: json.RawMessage(`{}`)},
		{Tool: "second", Input: json.RawMessage(`{}`)},
	})

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestOrchestratorHaltsOnFailure(t *testing.T) {
	failing := &stubTool{name: "failing", err: errors.New("boom")}
	never := &stubTool{name: "never", result: map[string]any{}}
	registry, err := tools.NewRegistry(failing, never)
	require.NoError(t, err)

	orch := NewOrchestrator(registry, noOpTracer{}, time.Second)
	results := orch.Execute(context.Background(), []Step{
		{Tool: "failing", Input: json.RawMessage(`{}`)},
		{Tool: "never", Input: json.RawMessage(`{}`)},
	})

	// The failing step is recorded; the later step never ran.
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrToolInvocation)
	assert.Equal(t, 0, never.calls)
}

func TestOrchestratorUnknownTool(t *testing.T) {
	registry, err := tools.NewRegistry()
	require.NoError(t, err)

	orch := NewOrchestrator(registry, noOpTracer{}, time.Second)
	results := orch.Execute(context.Background(), []Step{
		{Tool: "nope", Input: json.RawMessage(`{}`)},
	})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrToolInvocation)
}

func TestOrchestratorAppliesStepDeadline(t *testing.T) {
	tool := &stubTool{name: "probe", result: map[string]any{}}
	registry, err := tools.NewRegistry(tool)
	require.NoError(t, err)

	orch := NewOrchestrator(registry, noOpTracer{}, time.Minute)
	orch.Execute(context.Background(), []Step{{Tool: "probe", Input: json.RawMessage(`{}`)}})

	require.NotNil(t, tool.lastCtx)
	deadline, ok := tool.lastCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestInvocationsTrace(t *testing.T) {
	results := []StepResult{
		{
			Step:   Step{Tool: "add_task", Input: json.RawMessage(`{"title":"x"}`)},
			Output: json.RawMessage(`{"id":1}`),
		},
		{
			Step: Step{Tool: "list_tasks", Input: json.RawMessage(`{}`)},
			Err:  errors.New("boom"),
		},
	}

	invs := Invocations(results)
	require.Len(t, invs, 2)
	assert.Equal(t, "add_task", invs[0].Tool)
	assert.Empty(t, invs[0].Error)
	assert.Equal(t, "boom", invs[1].Error)
	assert.Nil(t, invs[1].Output)
}
