package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Input limits enforced by the store regardless of what extraction allowed
// through.
const (
	maxTitleLen       = 255
	maxDescriptionLen = 2000
)

// LibSQLTaskStore implements TaskStore over an embedded libsql database.
type LibSQLTaskStore struct {
	db *sql.DB
}

// NewLibSQLTaskStore creates a new libsql task store.
func NewLibSQLTaskStore(db *sql.DB) *LibSQLTaskStore {
	return &LibSQLTaskStore{db: db}
}

// Create inserts a new pending task for the owner.
func (s *LibSQLTaskStore) Create(ctx context.Context, owner, title, description string) (ports.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ports.Task{}, fmt.Errorf("%w: title must not be empty", ports.ErrValidation)
	}
	if len(title) > maxTitleLen {
		return ports.Task{}, fmt.Errorf("%w: title exceeds %d characters", ports.ErrValidation, maxTitleLen)
	}
	if len(description) > maxDescriptionLen {
		return ports.Task{}, fmt.Errorf("%w: description exceeds %d characters", ports.ErrValidation, maxDescriptionLen)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (owner_id, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, owner, title, description, ports.TaskPending, now, now)
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to read inserted task id: %w", err)
	}

	return ports.Task{
		ID:          id,
		OwnerID:     owner,
		Title:       title,
		Description: description,
		Status:      ports.TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// List returns the owner's tasks matching the filter, most recent first.
func (s *LibSQLTaskStore) List(ctx context.Context, owner string, filter ports.StatusFilter) ([]ports.Task, error) {
	query := `
		SELECT id, owner_id, title, description, status, created_at, updated_at
		FROM tasks
		WHERE owner_id = ?
	`
	args := []any{owner}

	switch filter {
	case ports.FilterAll, "":
		// no extra predicate
	case ports.FilterPending, ports.FilterCompleted:
		query += " AND status = ?"
		args = append(args, string(filter))
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", ports.ErrValidation, filter)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []ports.Task
	for rows.Next() {
		var t ports.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// SetStatus sets the task's completion status. Setting an already-set status
// is a no-op that still reports success (idempotent).
func (s *LibSQLTaskStore) SetStatus(ctx context.Context, owner string, taskID int64, status ports.TaskStatus) (ports.Task, error) {
	if status != ports.TaskPending && status != ports.TaskCompleted {
		return ports.Task{}, fmt.Errorf("%w: unknown status %q", ports.ErrValidation, status)
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, string(status), time.Now().UTC(), taskID, owner)
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to update task status: %w", err)
	}

	return s.get(ctx, owner, taskID)
}

// Update changes the task's title and/or description.
func (s *LibSQLTaskStore) Update(ctx context.Context, owner string, taskID int64, fields ports.TaskFields) (ports.Task, error) {
	if fields.Title == nil && fields.Description == nil {
		return ports.Task{}, fmt.Errorf("%w: no fields to update", ports.ErrValidation)
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return ports.Task{}, fmt.Errorf("%w: title must not be empty", ports.ErrValidation)
		}
		if len(title) > maxTitleLen {
			return ports.Task{}, fmt.Errorf("%w: title exceeds %d characters", ports.ErrValidation, maxTitleLen)
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if fields.Description != nil {
		if len(*fields.Description) > maxDescriptionLen {
			return ports.Task{}, fmt.Errorf("%w: description exceeds %d characters", ports.ErrValidation, maxDescriptionLen)
		}
		sets = append(sets, "description = ?")
		args = append(args, *fields.Description)
	}

	args = append(args, taskID, owner)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ? AND owner_id = ?", strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ports.Task{}, ports.ErrNotFound
	}

	return s.get(ctx, owner, taskID)
}

// Delete removes the task. Tasks owned by someone else report ErrNotFound.
func (s *LibSQLTaskStore) Delete(ctx context.Context, owner string, taskID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND owner_id = ?
	`, taskID, owner)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (s *LibSQLTaskStore) get(ctx context.Context, owner string, taskID int64) (ports.Task, error) {
	var t ports.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, status, created_at, updated_at
		FROM tasks WHERE id = ? AND owner_id = ?
	`, taskID, owner).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Task{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.Task{}, fmt.Errorf("failed to load task: %w", err)
	}
	return t, nil
}

// Ensure LibSQLTaskStore implements the TaskStore interface.
var _ ports.TaskStore = (*LibSQLTaskStore)(nil)
