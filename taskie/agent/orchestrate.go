package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
	"github.com/taskie-agent/taskie/taskie/agent/tools"
)

// Step is one planned tool call inside a turn.
type Step struct {
	Intent Intent
	Tool   string
	Input  json.RawMessage
}

// StepResult records what one executed step produced.
type StepResult struct {
	Step   Step
	Output json.RawMessage
	Err    error
}

// Orchestrator executes planned steps in order against the tool registry.
// Execution is strictly sequential: a failing step halts the plan, later
// steps never run, and earlier effects are not rolled back.
type Orchestrator struct {
	registry    *tools.Registry
	tracer      ports.Tracer
	stepTimeout time.Duration
}

// NewOrchestrator wires an orchestrator. A non-positive timeout disables
// the per-step deadline.
func NewOrchestrator(registry *tools.Registry, tracer ports.Tracer, stepTimeout time.Duration) *Orchestrator {
	return &Orchestrator{registry: registry, tracer: tracer, stepTimeout: stepTimeout}
}

// Execute runs the steps and returns a result per attempted step. The
// returned slice is always non-empty when steps is non-empty; the last
// entry carries the halting error if any.
func (o *Orchestrator) Execute(ctx context.Context, steps []Step) []StepResult {
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		o.tracer.Event(ctx, "step_start", map[string]any{
			"index": i,
			"tool":  step.Tool,
		})

		out, err := o.invoke(ctx, step)
		results = append(results, StepResult{Step: step, Output: out, Err: err})

		if err != nil {
			o.tracer.Event(ctx, "step_failed", map[string]any{
				"index": i,
				"tool":  step.Tool,
				"error": err.Error(),
			})
			break
		}
		o.tracer.Event(ctx, "step_done", map[string]any{
			"index": i,
			"tool":  step.Tool,
		})
	}
	return results
}

func (o *Orchestrator) invoke(ctx context.Context, step Step) (json.RawMessage, error) {
	if o.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stepTimeout)
		defer cancel()
	}

	out, err := o.registry.Invoke(ctx, step.Tool, step.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrToolInvocation, step.Tool, err)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: encode output: %w", ErrToolInvocation, step.Tool, err)
	}
	return raw, nil
}

// Invocations converts step results into the trace records persisted with
// the assistant turn.
func Invocations(results []StepResult) []ports.ToolInvocation {
	out := make([]ports.ToolInvocation, len(results))
	for i, r := range results {
		inv := ports.ToolInvocation{
			Tool:   r.Step.Tool,
			Input:  r.Step.Input,
			Output: r.Output,
		}
		if r.Err != nil {
			inv.Error = r.Err.Error()
		}
		out[i] = inv
	}
	return out
}
