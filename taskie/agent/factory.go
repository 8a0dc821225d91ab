package agent

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskie-agent/taskie/taskie/agent/adapters"
	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
	"github.com/taskie-agent/taskie/taskie/agent/tools"
	"github.com/taskie-agent/taskie/taskie/config"
)

// Factory assembles a fully wired agent from configuration and a database
// handle, substituting no-op adapters where a concern is disabled.
type Factory struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewFactory creates a factory bound to the given configuration.
func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// Build wires stores, tools, tracer and limiter into an Agent backed by db.
func (f *Factory) Build(db *sql.DB) (*Agent, error) {
	taskStore := adapters.NewLibSQLTaskStore(db)
	convStore := adapters.NewLibSQLConversationStore(db)

	registry, err := tools.NewTaskRegistry(taskStore)
	if err != nil {
		return nil, fmt.Errorf("build agent: %w", err)
	}

	var tracer ports.Tracer = noOpTracer{}
	if f.cfg.Agent.EnableTracing {
		tracer = adapters.NewZerologTracer(f.logger)
	}

	orch := NewOrchestrator(registry, tracer, f.cfg.Agent.ToolTimeout)

	return NewAgent(
		taskStore,
		convStore,
		orch,
		tracer,
		adapters.NewInflightGate(),
		f.logger,
		Options{
			LookbackTurns:      f.cfg.Agent.LookbackTurns,
			MaxCandidates:      f.cfg.Agent.MaxCandidates,
			MaxWorkflowSteps:   f.cfg.Agent.MaxWorkflowSteps,
			ConfirmDestructive: f.cfg.Agent.ConfirmDestructive,
		},
	), nil
}

// NewConversationID mints an id for a fresh conversation.
func NewConversationID() string {
	return uuid.NewString()
}

// noOpTracer drops all spans and events.
type noOpTracer struct{}

func (noOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (noOpTracer) Event(context.Context, string, map[string]any) {}

// noOpLimiter admits every turn. Useful in tests where serialization is
// provided by the caller.
type noOpLimiter struct{}

func (noOpLimiter) Acquire(ctx context.Context, conversationID string) (func(), error) {
	return func() {}, nil
}

var (
	_ ports.Tracer  = noOpTracer{}
	_ ports.Limiter = noOpLimiter{}
)
