package tools

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// AddTaskSchema defines the JSON schema for add_task parameters.
const AddTaskSchema = `{
  "type": "object",
  "properties": {
    "owner": {
      "type": "string",
      "description": "Authenticated owner identity the task belongs to",
      "minLength": 1
    },
    "title": {
      "type": "string",
      "description": "Task title",
      "minLength": 1,
      "maxLength": 255
    },
    "description": {
      "type": "string",
      "description": "Optional task description",
      "maxLength": 2000
    }
  },
  "required": ["owner", "title"]
}`

// AddTaskTool creates a new task via the task store.
type AddTaskTool struct {
	store ports.TaskStore
}

// NewAddTaskTool creates a new add_task tool.
func NewAddTaskTool(store ports.TaskStore) *AddTaskTool {
	return &AddTaskTool{store: store}
}

// Name returns the tool name.
func (t *AddTaskTool) Name() string {
	return "add_task"
}

// Schema returns the JSON schema for tool parameters.
func (t *AddTaskTool) Schema() []byte {
	return []byte(AddTaskSchema)
}

// Invoke executes the add_task tool.
func (t *AddTaskTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Owner       string `json:"owner"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	task, err := t.store.Create(ctx, params.Owner, params.Title, params.Description)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Ensure AddTaskTool implements the Tool interface.
var _ ports.Tool = (*AddTaskTool)(nil)
