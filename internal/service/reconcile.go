package service

import (
	"sync"

	"lessondeck/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Reconciler — echo discipline between local edits and the
// shared remote store
// ─────────────────────────────────────────────────────────────

// ReconcileState names the phases of one slide's write/receive cycle.
type ReconcileState int

const (
	// StateIdle: no write pending, nothing expected back.
	StateIdle ReconcileState = iota
	// StatePendingLocalWrite: a local edit is sitting in the debounce
	// window waiting to be flushed.
	StatePendingLocalWrite
	// StateAwaitingRemoteEcho: we flushed a write and expect the store's
	// subscription to echo it back to us.
	StateAwaitingRemoteEcho
	// StateInboundApplied: a genuine remote change was just applied
	// locally; exactly one outbound write of that same value is skipped.
	StateInboundApplied
)

// Reconciler tracks one slide's position in the cycle. It generalizes
// the single suppress-next-write flag into an explicit state machine so
// the suppression window is testable and a genuinely new remote change
// arriving during suppression is never swallowed.
//
// Known limit, accepted: a local edit racing an in-flight remote write
// is resolved last-writer-wins at the store. The reconciler only
// guarantees that an inbound overwrite is not immediately re-sent, and
// that our own echoes are not re-applied.
type Reconciler struct {
	mu          sync.Mutex
	state       ReconcileState
	lastWritten *domain.DrawingModel
	lastInbound *domain.DrawingModel
}

// NoteLocalEdit records that a local edit entered the debounce window.
func (r *Reconciler) NoteLocalEdit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateIdle || r.state == StateAwaitingRemoteEcho {
		r.state = StatePendingLocalWrite
	}
}

// ShouldWrite decides, at debounce expiry, whether m goes out. Writing
// the value we just applied from the remote would be an echo; skipping
// it consumes the suppression state, so the next cycle writes normally.
func (r *Reconciler) ShouldWrite(m domain.DrawingModel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateInboundApplied && r.lastInbound != nil && r.lastInbound.Equal(m) {
		r.state = StateIdle
		return false
	}
	return true
}

// NoteWrite records a completed outbound write of m.
func (r *Reconciler) NoteWrite(m domain.DrawingModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := m.Clone()
	r.lastWritten = &clone
	r.state = StateAwaitingRemoteEcho
}

// AcceptInbound decides whether an inbound remote value should be
// applied locally. Our own write coming back is dropped; anything else
// is applied and arms the one-shot outbound suppression.
func (r *Reconciler) AcceptInbound(m domain.DrawingModel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateAwaitingRemoteEcho && r.lastWritten != nil && r.lastWritten.Equal(m) {
		r.state = StateIdle
		return false
	}
	clone := m.Clone()
	r.lastInbound = &clone
	r.state = StateInboundApplied
	return true
}

// State returns the current phase, for tests and diagnostics.
func (r *Reconciler) State() ReconcileState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
