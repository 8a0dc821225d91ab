package tools

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// UpdateTaskSchema defines the JSON schema for update_task parameters. At
// least one of title/description must be present.
const UpdateTaskSchema = `{
  "type": "object",
  "properties": {
    "owner": {
      "type": "string",
      "description": "Authenticated owner identity the task belongs to",
      "minLength": 1
    },
    "task_id": {
      "type": "integer",
      "description": "Identifier of the task to update",
      "minimum": 1
    },
    "title": {
      "type": "string",
      "description": "New task title",
      "minLength": 1,
      "maxLength": 255
    },
    "description": {
      "type": "string",
      "description": "New task description",
      "maxLength": 2000
    }
  },
  "required": ["owner", "task_id"],
  "anyOf": [
    {"required": ["title"]},
    {"required": ["description"]}
  ]
}`

// UpdateTaskTool changes a task's title and/or description.
type UpdateTaskTool struct {
	store ports.TaskStore
}

// NewUpdateTaskTool creates a new update_task tool.
func NewUpdateTaskTool(store ports.TaskStore) *UpdateTaskTool {
	return &UpdateTaskTool{store: store}
}

// Name returns the tool name.
func (t *UpdateTaskTool) Name() string {
	return "update_task"
}

// Schema returns the JSON schema for tool parameters.
func (t *UpdateTaskTool) Schema() []byte {
	return []byte(UpdateTaskSchema)
}

// Invoke executes the update_task tool.
func (t *UpdateTaskTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Owner       string  `json:"owner"`
		TaskID      int64   `json:"task_id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	task, err := t.store.Update(ctx, params.Owner, params.TaskID, ports.TaskFields{
		Title:       params.Title,
		Description: params.Description,
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Ensure UpdateTaskTool implements the Tool interface.
var _ ports.Tool = (*UpdateTaskTool)(nil)
