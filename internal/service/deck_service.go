package service

import (
	"context"
	"log"
	"sync"

	"lessondeck/internal/broadcast"
	"lessondeck/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Deck Service — navigation, history wiring, role enforcement
// ─────────────────────────────────────────────────────────────

// Broadcaster is what the deck needs from a host session: push state to
// every viewer. Nil when the session is solo or viewing.
type Broadcaster interface {
	SendState(p broadcast.StatePayload)
}

// DeckService owns the active slide index and the per-slide history map
// for the open collection, and wires every committed edit to the
// debounced persister and the host broadcast. All mutation goes through
// its lock; adapters only ever hand it requests or read copies.
type DeckService struct {
	emitter EventEmitter
	writer  *DebouncedWriter

	mu         sync.Mutex
	collection *domain.Collection
	history    *domain.SlideHistory
	current    int
	role       broadcast.Role
	caster     Broadcaster

	// in-progress stroke capture, nil when idle
	pending *strokeCapture
}

type strokeCapture struct {
	points []domain.Point
	color  string
	width  float64
	mode   domain.StrokeMode
}

// NewDeckService creates a DeckService wired to the given writer.
func NewDeckService(writer *DebouncedWriter, emitter EventEmitter) *DeckService {
	return &DeckService{
		emitter: emitter,
		writer:  writer,
		history: domain.NewSlideHistory(),
		role:    broadcast.RoleNone,
	}
}

// Open loads a collection into the deck: persisted drawings become the
// present of fresh histories (stacks start empty on load) and the saved
// index is clamped into range.
func (d *DeckService) Open(c *domain.Collection, drawings map[int]domain.DrawingModel, savedIndex int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collection = c
	d.history = domain.NewSlideHistory()
	for index, m := range drawings {
		d.history.Set(index, domain.NewHistory(m))
	}
	d.current = clamp(savedIndex, 0, c.SlideCount()-1)
	d.pending = nil
	d.writer.SetCollection(c.ID)
}

// SetCollection refreshes the open collection's metadata (page counts)
// without touching histories or navigation. Used after AddPage.
func (d *DeckService) SetCollection(c *domain.Collection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collection == nil || d.collection.ID != c.ID {
		return
	}
	d.collection = c
}

// Close discards the deck state. Pending debounced writes are left to
// complete on their own timers.
func (d *DeckService) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collection = nil
	d.history = domain.NewSlideHistory()
	d.current = 0
	d.pending = nil
}

// SetRole records the session's broadcast role. Viewers become
// read-only: local navigation and edits are suppressed.
func (d *DeckService) SetRole(ctx context.Context, role broadcast.Role) {
	d.mu.Lock()
	d.role = role
	d.mu.Unlock()
	d.emitter.Emit(ctx, EventRoleChanged, string(role))
}

// SetBroadcaster attaches or detaches (nil) the host fan-out.
func (d *DeckService) SetBroadcaster(b Broadcaster) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.caster = b
}

// Role returns the current broadcast role.
func (d *DeckService) Role() broadcast.Role {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.role
}

// CurrentSlide returns the active slide index.
func (d *DeckService) CurrentSlide() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// SlideCount returns the open collection's slide count, 0 when closed.
func (d *DeckService) SlideCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collection == nil {
		return 0
	}
	return d.collection.SlideCount()
}

// Present returns a copy of the active slide's present drawing.
func (d *DeckService) Present() domain.DrawingModel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Get(d.current).Present.Clone()
}

// History returns the active slide's history, for rendering undo/redo
// affordances.
func (d *DeckService) History() domain.HistoryState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Get(d.current)
}

// ── Navigation ─────────────────────────────────────────────

// Next advances one slide, clamped at the end of the deck.
func (d *DeckService) Next(ctx context.Context) { d.navigate(ctx, +1) }

// Prev retreats one slide, clamped at index 0.
func (d *DeckService) Prev(ctx context.Context) { d.navigate(ctx, -1) }

// GoTo jumps to a slide index, clamped into range.
func (d *DeckService) GoTo(ctx context.Context, index int) {
	d.mu.Lock()
	if d.collection == nil || d.role == broadcast.RoleViewer {
		d.mu.Unlock()
		return
	}
	d.finishPendingLocked(ctx)
	target := clamp(index, 0, d.collection.SlideCount()-1)
	changed := target != d.current
	d.current = target
	caster := d.caster
	current := d.current
	d.mu.Unlock()

	if changed {
		d.emitter.Emit(ctx, EventSlideChanged, current)
		if caster != nil {
			caster.SendState(broadcast.StatePayload{CurrentSlide: current, Slide: current})
		}
	}
}

func (d *DeckService) navigate(ctx context.Context, delta int) {
	d.GoTo(ctx, d.CurrentSlide()+delta)
}

// ── Key handling ───────────────────────────────────────────

// HandleKey dispatches a keyboard event. Keys are consumed only when
// focus is outside a text-entry field: advance on right-arrow, space or
// enter; retreat on left-arrow; undo on mod+z, redo with shift added.
func (d *DeckService) HandleKey(ctx context.Context, key string, ctrl, meta, shift, inTextField bool) {
	if inTextField {
		return
	}
	switch {
	case key == "ArrowRight" || key == " " || key == "Enter":
		d.Next(ctx)
	case key == "ArrowLeft":
		d.Prev(ctx)
	case (ctrl || meta) && (key == "z" || key == "Z"):
		if shift {
			d.Redo(ctx)
		} else {
			d.Undo(ctx)
		}
	}
}

// ── Stroke capture ─────────────────────────────────────────

// BeginStroke starts capturing a freehand gesture.
func (d *DeckService) BeginStroke(at domain.Point, color string, width float64, mode domain.StrokeMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.role == broadcast.RoleViewer {
		return
	}
	d.pending = &strokeCapture{
		points: []domain.Point{at},
		color:  color,
		width:  width,
		mode:   mode,
	}
}

// ExtendStroke appends a point to the in-progress gesture.
func (d *DeckService) ExtendStroke(at domain.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return
	}
	d.pending.points = append(d.pending.points, at)
}

// EndStroke commits the captured gesture. A capture with fewer than two
// points is a degenerate click and is discarded without a commit.
func (d *DeckService) EndStroke(ctx context.Context) {
	d.mu.Lock()
	d.finishPendingLocked(ctx)
	d.mu.Unlock()
}

// finishPendingLocked commits or discards any in-progress stroke. Also
// invoked before navigation so switching slides mid-stroke has a
// defined outcome: the stroke lands on the slide it was drawn on.
func (d *DeckService) finishPendingLocked(ctx context.Context) {
	p := d.pending
	d.pending = nil
	if p == nil || len(p.points) < 2 {
		return
	}
	stroke := domain.Stroke{
		Points: p.points,
		Color:  p.color,
		Width:  p.width,
		Mode:   p.mode,
	}
	h := d.history.Get(d.current)
	d.commitLocked(ctx, h.Present.AddStroke(stroke))
}

// ── Edits ──────────────────────────────────────────────────

// UpdateDrawing commits a whole new present for the active slide.
func (d *DeckService) UpdateDrawing(ctx context.Context, m domain.DrawingModel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.role == broadcast.RoleViewer {
		return
	}
	d.commitLocked(ctx, m)
}

// AddTextBox places a text box on the active slide.
func (d *DeckService) AddTextBox(ctx context.Context, at domain.Point, color string) {
	d.edit(ctx, func(m domain.DrawingModel) domain.DrawingModel {
		return m.AddTextBox(at, color)
	})
}

// EditTextBox changes a text box's text; unknown ids are a no-op.
func (d *DeckService) EditTextBox(ctx context.Context, id, text string) {
	d.edit(ctx, func(m domain.DrawingModel) domain.DrawingModel {
		return m.EditTextBoxText(id, text)
	})
}

// DeleteTextBox removes a text box; unknown ids are a no-op.
func (d *DeckService) DeleteTextBox(ctx context.Context, id string) {
	d.edit(ctx, func(m domain.DrawingModel) domain.DrawingModel {
		return m.DeleteTextBox(id)
	})
}

func (d *DeckService) edit(ctx context.Context, f func(domain.DrawingModel) domain.DrawingModel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collection == nil || d.role == broadcast.RoleViewer {
		return
	}
	present := d.history.Get(d.current).Present
	next := f(present)
	if next.Equal(present) {
		// No-op edits (unknown text-box id, dropped stroke) never
		// pollute the history.
		return
	}
	d.commitLocked(ctx, next)
}

func (d *DeckService) commitLocked(ctx context.Context, m domain.DrawingModel) {
	index := d.current
	h := d.history.Get(index).Commit(m)
	d.history.Set(index, h)
	d.afterChangeLocked(ctx, index, h)
}

// ── Undo / Redo ────────────────────────────────────────────

// Undo steps the active slide back one snapshot.
func (d *DeckService) Undo(ctx context.Context) {
	d.applyHistory(ctx, domain.HistoryState.Undo)
}

// Redo steps the active slide forward one snapshot.
func (d *DeckService) Redo(ctx context.Context) {
	d.applyHistory(ctx, domain.HistoryState.Redo)
}

func (d *DeckService) applyHistory(ctx context.Context, f func(domain.HistoryState) domain.HistoryState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collection == nil || d.role == broadcast.RoleViewer {
		return
	}
	index := d.current
	before := d.history.Get(index)
	after := f(before)
	if after.Present.Equal(before.Present) && before.CanUndo() == after.CanUndo() && before.CanRedo() == after.CanRedo() {
		return
	}
	d.history.Set(index, after)
	d.afterChangeLocked(ctx, index, after)
}

// afterChangeLocked runs the outbound side of every local change:
// schedule the debounced persistence write and fan out to viewers.
func (d *DeckService) afterChangeLocked(ctx context.Context, index int, h domain.HistoryState) {
	present := h.Present.Clone()
	d.writer.Schedule(index, present)

	d.emitter.Emit(ctx, EventDrawingUpdated, map[string]any{"slide": index, "drawing": present})
	d.emitter.Emit(ctx, EventHistoryChanged, map[string]any{"canUndo": h.CanUndo(), "canRedo": h.CanRedo()})

	if d.caster != nil && d.role == broadcast.RoleHost {
		d.caster.SendState(broadcast.StatePayload{
			CurrentSlide: d.current,
			Slide:        index,
			Drawing:      &present,
		})
	}
}

// ── Inbound updates ────────────────────────────────────────

// HandleRemoteChange applies one inbound update from the shared store.
// Echoes of our own writes are dropped by the reconciler; a genuinely
// different value overwrites present while the local undo chain
// survives.
func (d *DeckService) HandleRemoteChange(ctx context.Context, change domain.SlideChange) {
	d.mu.Lock()
	if d.collection == nil || d.collection.ID != change.CollectionID {
		d.mu.Unlock()
		return
	}
	h := d.history.Get(change.Index)
	if h.Present.Equal(change.Drawing) {
		d.mu.Unlock()
		return
	}
	if !d.writer.AcceptInbound(change.Index, change.Drawing) {
		d.mu.Unlock()
		return
	}
	log.Printf("[deck] remote overwrite for slide %d", change.Index)
	after := h.Overwrite(change.Drawing.Clone())
	d.history.Set(change.Index, after)
	index := change.Index
	present := after.Present.Clone()
	d.mu.Unlock()

	d.emitter.Emit(ctx, EventDrawingUpdated, map[string]any{"slide": index, "drawing": present})
}

// HandlePeerState applies one inbound host push on a viewer: the
// navigation index always, plus a slide overwrite when the push carried
// a drawing. This is the only way a viewer's displayed index changes.
func (d *DeckService) HandlePeerState(ctx context.Context, p broadcast.StatePayload) {
	d.mu.Lock()
	if d.role != broadcast.RoleViewer {
		d.mu.Unlock()
		return
	}
	changed := p.CurrentSlide != d.current
	d.current = p.CurrentSlide
	if p.Drawing != nil {
		h := d.history.Get(p.Slide)
		d.history.Set(p.Slide, h.Overwrite(p.Drawing.Clone()))
	}
	current := d.current
	d.mu.Unlock()

	if changed {
		d.emitter.Emit(ctx, EventSlideChanged, current)
	}
	if p.Drawing != nil {
		d.emitter.Emit(ctx, EventDrawingUpdated, map[string]any{"slide": p.Slide, "drawing": p.Drawing.Clone()})
	}
}

// Snapshot returns the payload a host pushes to a late joiner: the
// current index and the active slide's drawing.
func (d *DeckService) Snapshot() broadcast.StatePayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	present := d.history.Get(d.current).Present.Clone()
	return broadcast.StatePayload{
		CurrentSlide: d.current,
		Slide:        d.current,
		Drawing:      &present,
	}
}

// Presents returns a copy of every touched slide's present drawing.
func (d *DeckService) Presents() map[int]domain.DrawingModel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Presents()
}

// CollectionID returns the open collection id, "" when closed.
func (d *DeckService) CollectionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.collection == nil {
		return ""
	}
	return d.collection.ID
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
