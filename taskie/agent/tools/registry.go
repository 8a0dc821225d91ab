// Package tools exposes each task-store operation as a schema-validated
// tool. The interpreter never touches the store directly; every mutation
// flows through a named tool so the invocation trace is complete.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
	"github.com/xeipuuv/gojsonschema"
)

// Registry holds the closed set of tools and validates arguments against
// each tool's JSON schema before dispatch.
type Registry struct {
	tools   map[string]ports.Tool
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry compiles the schemas of the given tools.
func NewRegistry(toolList ...ports.Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]ports.Tool, len(toolList)),
		schemas: make(map[string]*gojsonschema.Schema, len(toolList)),
	}
	for _, t := range toolList {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(t.Schema()))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema for tool %s: %w", t.Name(), err)
		}
		r.tools[t.Name()] = t
		r.schemas[t.Name()] = schema
	}
	return r, nil
}

// NewTaskRegistry builds the standard registry over a task store.
func NewTaskRegistry(store ports.TaskStore) (*Registry, error) {
	return NewRegistry(
		NewAddTaskTool(store),
		NewListTasksTool(store),
		NewCompleteTaskTool(store),
		NewUpdateTaskTool(store),
		NewDeleteTaskTool(store),
	)
}

// Get returns the named tool.
func (r *Registry) Get(name string) (ports.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Invoke validates args against the tool's schema and executes it.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	if err := r.validate(name, args); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrValidation, err)
	}

	return tool.Invoke(ctx, args)
}

func (r *Registry) validate(name string, args json.RawMessage) error {
	if !json.Valid(args) {
		return fmt.Errorf("tool arguments are not valid JSON")
	}

	result, err := r.schemas[name].Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(problems, "; "))
	}
	return nil
}
