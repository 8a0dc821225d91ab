package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Resolver turns a user-facing task reference (numeric id or free-text
// title) into a concrete task, reading through the task store.
type Resolver struct {
	store         ports.TaskStore
	maxCandidates int
}

// NewResolver creates a resolver that caps ambiguity candidate lists at
// maxCandidates entries.
func NewResolver(store ports.TaskStore, maxCandidates int) *Resolver {
	if maxCandidates < 1 {
		maxCandidates = 5
	}
	return &Resolver{store: store, maxCandidates: maxCandidates}
}

// Resolve maps ref to exactly one task or fails. Numeric references are
// exact-or-nothing: a bad id never falls back to a title search. Title
// references try exact match first, then substring match over open tasks;
// more than one hit either way is ambiguous, never a guess.
func (r *Resolver) Resolve(ctx context.Context, owner, ref string) (ports.Task, []ports.Candidate, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ports.Task{}, nil, fmt.Errorf("resolve: empty reference: %w", ErrValidation)
	}

	if id, ok := parseTaskID(ref); ok {
		return r.resolveByID(ctx, owner, id)
	}
	return r.resolveByTitle(ctx, owner, ref)
}

func (r *Resolver) resolveByID(ctx context.Context, owner string, id int64) (ports.Task, []ports.Candidate, error) {
	tasks, err := r.store.List(ctx, owner, ports.FilterAll)
	if err != nil {
		return ports.Task{}, nil, fmt.Errorf("resolve: list tasks: %w", err)
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil, nil
		}
	}
	return ports.Task{}, nil, fmt.Errorf("resolve: task %d: %w", id, ErrNotFound)
}

func (r *Resolver) resolveByTitle(ctx context.Context, owner, ref string) (ports.Task, []ports.Candidate, error) {
	tasks, err := r.store.List(ctx, owner, ports.FilterAll)
	if err != nil {
		return ports.Task{}, nil, fmt.Errorf("resolve: list tasks: %w", err)
	}

	needle := strings.ToLower(ref)

	var exact []ports.Task
	for _, t := range tasks {
		if strings.ToLower(t.Title) == needle {
			exact = append(exact, t)
		}
	}
	switch len(exact) {
	case 1:
		return exact[0], nil, nil
	case 0:
		// fall through to substring search
	default:
		return ports.Task{}, r.candidates(exact), fmt.Errorf("resolve: %q: %w", ref, ErrAmbiguousReference)
	}

	// Substring match considers only open tasks: "finish the report" should
	// not trip over a report task completed last month.
	var partial []ports.Task
	for _, t := range tasks {
		if t.Status == ports.TaskPending && strings.Contains(strings.ToLower(t.Title), needle) {
			partial = append(partial, t)
		}
	}
	switch len(partial) {
	case 0:
		return ports.Task{}, nil, fmt.Errorf("resolve: %q: %w", ref, ErrNotFound)
	case 1:
		return partial[0], nil, nil
	default:
		return ports.Task{}, r.candidates(partial), fmt.Errorf("resolve: %q: %w", ref, ErrAmbiguousReference)
	}
}

// candidates orders ambiguous matches most-recently-created first and caps
// the list so the disambiguation prompt stays readable.
func (r *Resolver) candidates(tasks []ports.Task) []ports.Candidate {
	sorted := make([]ports.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	if len(sorted) > r.maxCandidates {
		sorted = sorted[:r.maxCandidates]
	}
	out := make([]ports.Candidate, len(sorted))
	for i, t := range sorted {
		out[i] = ports.Candidate{TaskID: t.ID, Title: t.Title}
	}
	return out
}
