package domain

// MaxHistoryDepth bounds the undo stack per slide. A long session would
// otherwise grow snapshots without limit; the oldest past entry is
// dropped once the cap is hit.
const MaxHistoryDepth = 40

// HistoryState is the undo/redo triple for one slide's DrawingModel.
// Past is oldest-first, Future is nearest-redo-first. The zero value is
// not usable; construct with NewHistory.
type HistoryState struct {
	Past    []DrawingModel `json:"past"`
	Present DrawingModel   `json:"present"`
	Future  []DrawingModel `json:"future"`
}

// NewHistory returns a history with the given present and empty stacks.
func NewHistory(present DrawingModel) HistoryState {
	return HistoryState{
		Past:    []DrawingModel{},
		Present: present,
		Future:  []DrawingModel{},
	}
}

// Commit records a completed edit: the current present moves onto the
// past stack, the new model becomes present, and any redo branch is
// invalidated. Fired on stroke finish, text add/change/delete.
func (h HistoryState) Commit(m DrawingModel) HistoryState {
	past := append(append([]DrawingModel{}, h.Past...), h.Present)
	if len(past) > MaxHistoryDepth {
		past = past[len(past)-MaxHistoryDepth:]
	}
	return HistoryState{
		Past:    past,
		Present: m,
		Future:  []DrawingModel{},
	}
}

// Undo steps back one snapshot. A no-op at the stack boundary.
func (h HistoryState) Undo() HistoryState {
	if len(h.Past) == 0 {
		return h
	}
	prev := h.Past[len(h.Past)-1]
	return HistoryState{
		Past:    append([]DrawingModel{}, h.Past[:len(h.Past)-1]...),
		Present: prev,
		Future:  append([]DrawingModel{h.Present}, h.Future...),
	}
}

// Redo steps forward one snapshot. A no-op at the stack boundary.
func (h HistoryState) Redo() HistoryState {
	if len(h.Future) == 0 {
		return h
	}
	next := h.Future[0]
	return HistoryState{
		Past:    append(append([]DrawingModel{}, h.Past...), h.Present),
		Present: next,
		Future:  append([]DrawingModel{}, h.Future[1:]...),
	}
}

// Overwrite replaces present without touching the stacks. Used when an
// inbound persistence load or sync delta sets the slide's state; the
// local undo chain survives the overwrite.
func (h HistoryState) Overwrite(m DrawingModel) HistoryState {
	h.Present = m
	return h
}

// CanUndo reports whether Undo would change state.
func (h HistoryState) CanUndo() bool { return len(h.Past) > 0 }

// CanRedo reports whether Redo would change state.
func (h HistoryState) CanRedo() bool { return len(h.Future) > 0 }

// SlideHistory maps slide index to that slide's HistoryState. Entries
// materialize lazily with an empty drawing on first access. Keys are
// dense non-negative indices; slides are append-only so indices are
// stable for the life of a collection.
type SlideHistory struct {
	slides map[int]HistoryState
}

// NewSlideHistory returns an empty per-slide history map.
func NewSlideHistory() *SlideHistory {
	return &SlideHistory{slides: make(map[int]HistoryState)}
}

// Get returns the history for a slide, materializing a default empty
// entry if the slide has never been touched.
func (s *SlideHistory) Get(index int) HistoryState {
	if h, ok := s.slides[index]; ok {
		return h
	}
	h := NewHistory(EmptyDrawing())
	s.slides[index] = h
	return h
}

// Set replaces the history for a slide.
func (s *SlideHistory) Set(index int, h HistoryState) {
	s.slides[index] = h
}

// Presents returns the present drawing of every touched slide. This is
// the shape the local persistence layer stores: past/future are never
// persisted.
func (s *SlideHistory) Presents() map[int]DrawingModel {
	out := make(map[int]DrawingModel, len(s.slides))
	for i, h := range s.slides {
		out[i] = h.Present.Clone()
	}
	return out
}

// Indices returns the touched slide indices in unspecified order.
func (s *SlideHistory) Indices() []int {
	out := make([]int, 0, len(s.slides))
	for i := range s.slides {
		out = append(out, i)
	}
	return out
}
