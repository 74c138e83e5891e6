package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bep/debounce"

	"lessondeck/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Persister — durable storage boundary for slide drawings
// ─────────────────────────────────────────────────────────────

// Persister writes one slide's present drawing somewhere durable. The
// local and shared-remote deployments both sit behind this interface so
// the deck can be tested with an in-memory fake.
type Persister interface {
	WriteSlide(ctx context.Context, collectionID string, index int, m domain.DrawingModel) error
}

// LocalPersister is the local-only deployment: present drawings go to
// the SQLite slide store.
type LocalPersister struct {
	Slides domain.SlideStore
}

func (p *LocalPersister) WriteSlide(_ context.Context, collectionID string, index int, m domain.DrawingModel) error {
	return p.Slides.PutDrawing(collectionID, index, m)
}

// RemotePersister is the shared-remote deployment: drawings go both to
// the local store (offline cache) and the shared document store.
type RemotePersister struct {
	Slides domain.SlideStore
	Remote domain.RemoteStore
}

func (p *RemotePersister) WriteSlide(ctx context.Context, collectionID string, index int, m domain.DrawingModel) error {
	if err := p.Slides.PutDrawing(collectionID, index, m); err != nil {
		return err
	}
	return p.Remote.SaveSlide(ctx, collectionID, index, m)
}

// ─────────────────────────────────────────────────────────────
// DebouncedWriter — coalesced per-slide writes
// ─────────────────────────────────────────────────────────────

// DebouncedWriter coalesces a burst of edits into one write per slide:
// the timer restarts on every edit and only the settled value after the
// last edit goes out. Timers are keyed by slide index, so navigating
// away never cancels a pending flush — it fires later with the index it
// captured at schedule time.
type DebouncedWriter struct {
	interval time.Duration
	sink     Persister
	emitter  EventEmitter

	mu           sync.Mutex
	collectionID string
	debouncers   map[int]func(func())
	latest       map[int]domain.DrawingModel
	reconcilers  map[int]*Reconciler
}

// NewDebouncedWriter wraps sink with per-slide debounce at the given
// interval. Write failures are logged and surfaced through the emitter;
// the in-memory state stays authoritative.
func NewDebouncedWriter(sink Persister, interval time.Duration, emitter EventEmitter) *DebouncedWriter {
	return &DebouncedWriter{
		interval:    interval,
		sink:        sink,
		emitter:     emitter,
		debouncers:  make(map[int]func(func())),
		latest:      make(map[int]domain.DrawingModel),
		reconcilers: make(map[int]*Reconciler),
	}
}

// SetCollection resets the writer for a newly opened collection. Values
// still sitting in the debounce window belong to the previous collection
// and are flushed first; switching decks never loses the last edit burst.
func (w *DebouncedWriter) SetCollection(collectionID string) {
	w.FlushAll()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.collectionID = collectionID
	w.debouncers = make(map[int]func(func()))
	w.latest = make(map[int]domain.DrawingModel)
	w.reconcilers = make(map[int]*Reconciler)
}

func (w *DebouncedWriter) reconciler(index int) *Reconciler {
	if r, ok := w.reconcilers[index]; ok {
		return r
	}
	r := &Reconciler{}
	w.reconcilers[index] = r
	return r
}

// Schedule records a local edit for a slide and (re)starts its debounce
// timer.
func (w *DebouncedWriter) Schedule(index int, m domain.DrawingModel) {
	w.mu.Lock()
	w.latest[index] = m.Clone()
	w.reconciler(index).NoteLocalEdit()
	d, ok := w.debouncers[index]
	if !ok {
		d = debounce.New(w.interval)
		w.debouncers[index] = d
	}
	w.mu.Unlock()

	d(func() { w.flush(index) })
}

func (w *DebouncedWriter) flush(index int) {
	w.mu.Lock()
	collectionID := w.collectionID
	m, ok := w.latest[index]
	r := w.reconciler(index)
	w.mu.Unlock()
	if !ok || collectionID == "" {
		return
	}

	if !r.ShouldWrite(m) {
		log.Printf("[persist] suppressed echo write for slide %d", index)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.sink.WriteSlide(ctx, collectionID, index, m); err != nil {
		log.Printf("[persist] write slide %d failed: %v", index, err)
		if w.emitter != nil {
			w.emitter.Emit(ctx, EventStorageError, fmt.Sprintf("save failed for slide %d: %v", index+1, err))
		}
		return
	}
	r.NoteWrite(m)
}

// AcceptInbound routes an inbound remote value through the slide's
// reconciler. A false return means the value is our own echo and must
// not be applied.
func (w *DebouncedWriter) AcceptInbound(index int, m domain.DrawingModel) bool {
	w.mu.Lock()
	r := w.reconciler(index)
	w.mu.Unlock()
	return r.AcceptInbound(m)
}

// FlushAll writes every scheduled value immediately. Used by the
// autosave sweep and on shutdown so the last burst is never lost.
func (w *DebouncedWriter) FlushAll() {
	w.mu.Lock()
	indices := make([]int, 0, len(w.latest))
	for i := range w.latest {
		indices = append(indices, i)
	}
	w.mu.Unlock()
	for _, i := range indices {
		w.flush(i)
	}
}
