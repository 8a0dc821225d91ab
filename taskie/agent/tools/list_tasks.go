package tools

import (
	"context"
	"encoding/json"
	"fmt"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// ListTasksSchema defines the JSON schema for list_tasks parameters.
const ListTasksSchema = `{
  "type": "object",
  "properties": {
    "owner": {
      "type": "string",
      "description": "Authenticated owner identity whose tasks to list",
      "minLength": 1
    },
    "status": {
      "type": "string",
      "enum": ["all", "pending", "completed"],
      "description": "Status filter",
      "default": "all"
    }
  },
  "required": ["owner"]
}`

// ListTasksResult is the structured output of list_tasks.
type ListTasksResult struct {
	Tasks []ports.Task `json:"tasks"`
	Count int          `json:"count"`
}

// ListTasksTool lists the owner's tasks with an optional status filter.
type ListTasksTool struct {
	store ports.TaskStore
}

// NewListTasksTool creates a new list_tasks tool.
func NewListTasksTool(store ports.TaskStore) *ListTasksTool {
	return &ListTasksTool{store: store}
}

// Name returns the tool name.
func (t *ListTasksTool) Name() string {
	return "list_tasks"
}

// Schema returns the JSON schema for tool parameters.
func (t *ListTasksTool) Schema() []byte {
	return []byte(ListTasksSchema)
}

// Invoke executes the list_tasks tool.
func (t *ListTasksTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Owner  string `json:"owner"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	filter := ports.StatusFilter(params.Status)
	if params.Status == "" {
		filter = ports.FilterAll
	}

	tasks, err := t.store.List(ctx, params.Owner, filter)
	if err != nil {
		return nil, err
	}
	return ListTasksResult{Tasks: tasks, Count: len(tasks)}, nil
}

// Ensure ListTasksTool implements the Tool interface.
var _ ports.Tool = (*ListTasksTool)(nil)
