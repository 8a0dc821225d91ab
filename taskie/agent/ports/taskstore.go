package agentports

import (
	"context"
	"errors"
	"time"
)

// TaskStatus enumerates task completion states.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// StatusFilter selects which tasks a List call returns.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// Task is the store-owned record the interpreter references but never
// mutates directly.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskFields carries the optional fields of an update. A nil pointer leaves
// the field untouched.
type TaskFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Store errors. A task belonging to a different owner reports ErrNotFound so
// that task existence is never disclosed across owners.
var (
	ErrNotFound   = errors.New("task not found")
	ErrValidation = errors.New("invalid task input")
)

// TaskStore is the boundary contract to the task backend. All operations are
// scoped by the owning identity.
type TaskStore interface {
	Create(ctx context.Context, owner, title, description string) (Task, error)
	List(ctx context.Context, owner string, filter StatusFilter) ([]Task, error)
	SetStatus(ctx context.Context, owner string, taskID int64, status TaskStatus) (Task, error)
	Update(ctx context.Context, owner string, taskID int64, fields TaskFields) (Task, error)
	Delete(ctx context.Context, owner string, taskID int64) error
}
