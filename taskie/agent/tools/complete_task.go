package tools

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// CompleteTaskSchema defines the JSON schema for complete_task parameters.
const CompleteTaskSchema = `{
  "type": "object",
  "properties": {
    "owner": {
      "type": "string",
      "description": "Authenticated owner identity the task belongs to",
      "minLength": 1
    },
    "task_id": {
      "type": "integer",
      "description": "Identifier of the task to mark completed",
      "minimum": 1
    }
  },
  "required": ["owner", "task_id"]
}`

// CompleteTaskTool marks a task completed. Completing an already-completed
// task succeeds again (set-status is idempotent).
type CompleteTaskTool struct {
	store ports.TaskStore
}

// NewCompleteTaskTool creates a new complete_task tool.
func NewCompleteTaskTool(store ports.TaskStore) *CompleteTaskTool {
	return &CompleteTaskTool{store: store}
}

// Name returns the tool name.
func (t *CompleteTaskTool) Name() string {
	return "complete_task"
}

// Schema returns the JSON schema for tool parameters.
func (t *CompleteTaskTool) Schema() []byte {
	return []byte(CompleteTaskSchema)
}

// Invoke executes the complete_task tool.
func (t *CompleteTaskTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Owner  string `json:"owner"`
		TaskID int64  `json:"task_id"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	task, err := t.store.SetStatus(ctx, params.Owner, params.TaskID, ports.TaskCompleted)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Ensure CompleteTaskTool implements the Tool interface.
var _ ports.Tool = (*CompleteTaskTool)(nil)
