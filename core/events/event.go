package events

import "github.com/google/uuid"

// Event represents a structured state change emitted by the engine.
type Event interface {
	EventType() string
	Attributes() map[string]string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// NewID returns a unique identifier for correlating emitted events.
func NewID() string { return uuid.NewString() }
