package adapters

import (
	"context"
	"sync"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// InflightGate implements Limiter with a single-slot gate per conversation.
// A second turn arriving while one is in flight for the same conversation is
// rejected rather than queued, so pipeline state reads never interleave.
type InflightGate struct {
	mu       sync.Mutex
	inflight map[string]bool
}

// NewInflightGate creates a new per-conversation gate.
func NewInflightGate() *InflightGate {
	return &InflightGate{inflight: make(map[string]bool)}
}

// Acquire claims the conversation's slot until the returned release func is
// called. ErrTurnInFlight is returned when the slot is taken.
func (g *InflightGate) Acquire(ctx context.Context, conversationID string) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[conversationID] {
		return nil, ErrTurnInFlight
	}
	g.inflight[conversationID] = true

	var once sync.Once
	release = func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, conversationID)
			g.mu.Unlock()
		})
	}
	return release, nil
}

// ErrTurnInFlight is returned when a conversation already has a turn in flight.
var ErrTurnInFlight = &TurnInFlightError{Message: "a turn is already in flight for this conversation"}

type TurnInFlightError struct {
	Message string
}

func (e *TurnInFlightError) Error() string {
	return e.Message
}

// Ensure InflightGate implements the Limiter interface.
var _ ports.Limiter = (*InflightGate)(nil)
