package service

import "context"

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from the view binding
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to the view layer.
// The App struct implements this by delegating to whatever UI runtime
// is attached. Services receive this interface instead of a runtime
// handle, which makes them independently testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Event names emitted by the deck services.
const (
	EventSlideChanged   = "deck:slide-changed"
	EventDrawingUpdated = "deck:drawing-updated"
	EventHistoryChanged = "deck:history-changed"
	EventStorageError   = "storage:error"
	EventRoleChanged    = "broadcast:role-changed"
	EventPeerCount      = "broadcast:peers"
	EventDocumentCached = "document:cached"
)

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
