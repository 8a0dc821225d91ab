package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// stubTaskStore implements ports.TaskStore over a fixed slice.
type stubTaskStore struct {
	tasks   []ports.Task
	listErr error
}

func (s *stubTaskStore) Create(ctx context.Context, owner, title, description string) (ports.Task, error) {
	return ports.Task{}, errors.New("not implemented")
}

func (s *stubTaskStore) List(ctx context.Context, owner string, filter ports.StatusFilter) ([]ports.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []ports.Task
	for _, t := range s.tasks {
		if t.OwnerID != owner {
			continue
		}
		switch filter {
		case ports.FilterPending:
			if t.Status != ports.TaskPending {
				continue
			}
		case ports.FilterCompleted:
			if t.Status != ports.TaskCompleted {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTaskStore) SetStatus(ctx context.Context, owner string, taskID int64, status ports.TaskStatus) (ports.Task, error) {
	return ports.Task{}, errors.New("not implemented")
}

func (s *stubTaskStore) Update(ctx context.Context, owner string, taskID int64, fields ports.TaskFields) (ports.Task, error) {
	return ports.Task{}, errors.New("not implemented")
}

func (s *stubTaskStore) Delete(ctx context.Context, owner string, taskID int64) error {
	return errors.New("not implemented")
}

var _ ports.TaskStore = (*stubTaskStore)(nil)

func resolverFixture() *Resolver {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &stubTaskStore{tasks: []ports.Task{
		{ID: 1, OwnerID: "alice", Title: "buy milk", Status: ports.TaskPending, CreatedAt: base},
		{ID: 2, OwnerID: "alice", Title: "buy bread", Status: ports.TaskPending, CreatedAt: base.Add(time.Hour)},
		{ID: 3, OwnerID: "alice", Title: "call mom", Status: ports.TaskPending, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, OwnerID: "alice", Title: "buy stamps", Status: ports.TaskCompleted, CreatedAt: base.Add(3 * time.Hour)},
		{ID: 5, OwnerID: "bob", Title: "buy milk", Status: ports.TaskPending, CreatedAt: base},
	}}
	return NewResolver(store, 5)
}

func TestResolveByID(t *testing.T) {
	r := resolverFixture()

	task, cands, err := r.Resolve(context.Background(), "alice", "3")
	require.NoError(t, err)
	assert.Nil(t, cands)
	assert.Equal(t, int64(3), task.ID)
}

func TestResolveByIDExactOrNothing(t *testing.T) {
	r := resolverFixture()

	// Id 99 does not exist; no title fallback happens.
	_, _, err := r.Resolve(context.Background(), "alice", "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveByIDOwnerScoped(t *testing.T) {
	r := resolverFixture()

	// Task 5 belongs to bob; alice must not see it.
	_, _, err := r.Resolve(context.Background(), "alice", "5")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveExactTitle(t *testing.T) {
	r := resolverFixture()

	task, _, err := r.Resolve(context.Background(), "alice", "call mom")
	require.NoError(t, err)
	assert.Equal(t, int64(3), task.ID)
}

func TestResolveSubstringSkipsCompleted(t *testing.T) {
	r := resolverFixture()

	// "stamps" only matches a completed task, so nothing resolves.
	_, _, err := r.Resolve(context.Background(), "alice", "stamps")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAmbiguous(t *testing.T) {
	r := resolverFixture()

	_, cands, err := r.Resolve(context.Background(), "alice", "buy")
	assert.ErrorIs(t, err, ErrAmbiguousReference)
	require.Len(t, cands, 2)
	// Most recently created first.
	assert.Equal(t, int64(2), cands[0].TaskID)
	assert.Equal(t, int64(1), cands[1].TaskID)
}

func TestResolveCandidateCap(t *testing.T) {
	base := time.Now().UTC()
	store := &stubTaskStore{}
	for i := int64(1); i <= 8; i++ {
		store.tasks = append(store.tasks, ports.Task{
			ID: i, OwnerID: "alice", Title: "errand", Status: ports.TaskPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	r := NewResolver(store, 3)

	_, cands, err := r.Resolve(context.Background(), "alice", "errand")
	assert.ErrorIs(t, err, ErrAmbiguousReference)
	assert.Len(t, cands, 3)
	assert.Equal(t, int64(8), cands[0].TaskID)
}

func TestResolveEmptyRef(t *testing.T) {
	r := resolverFixture()

	_, _, err := r.Resolve(context.Background(), "alice", "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResolveStoreFault(t *testing.T) {
	r := NewResolver(&stubTaskStore{listErr: errors.New("connection refused")}, 5)

	_, _, err := r.Resolve(context.Background(), "alice", "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
