package tools

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// DeleteTaskSchema defines the JSON schema for delete_task parameters.
const DeleteTaskSchema = `{
  "type": "object",
  "properties": {
    "owner": {
      "type": "string",
      "description": "Authenticated owner identity the task belongs to",
      "minLength": 1
    },
    "task_id": {
      "type": "integer",
      "description": "Identifier of the task to delete",
      "minimum": 1
    }
  },
  "required": ["owner", "task_id"]
}`

// DeleteTaskResult acknowledges a deletion.
type DeleteTaskResult struct {
	Deleted bool  `json:"deleted"`
	TaskID  int64 `json:"task_id"`
}

// DeleteTaskTool removes a task. Deletion is not idempotent; the pipeline
// never invokes it without a prior confirmation.
type DeleteTaskTool struct {
	store ports.TaskStore
}

// NewDeleteTaskTool creates a new delete_task tool.
func NewDeleteTaskTool(store ports.TaskStore) *DeleteTaskTool {
	return &DeleteTaskTool{store: store}
}

// Name returns the tool name.
func (t *DeleteTaskTool) Name() string {
	return "delete_task"
}

// Schema returns the JSON schema for tool parameters.
func (t *DeleteTaskTool) Schema() []byte {
	return []byte(DeleteTaskSchema)
}

// Invoke executes the delete_task tool.
func (t *DeleteTaskTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Owner  string `json:"owner"`
		TaskID int64  `json:"task_id"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	if err := t.store.Delete(ctx, params.Owner, params.TaskID); err != nil {
		return nil, err
	}
	return DeleteTaskResult{Deleted: true, TaskID: params.TaskID}, nil
}

// Ensure DeleteTaskTool implements the Tool interface.
var _ ports.Tool = (*DeleteTaskTool)(nil)
