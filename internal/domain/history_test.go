package domain_test

import (
	"fmt"
	"testing"

	"lessondeck/internal/domain"
)

func drawingWithStrokes(n int) domain.DrawingModel {
	m := domain.EmptyDrawing()
	for i := 0; i < n; i++ {
		m = m.AddStroke(domain.Stroke{
			Points: []domain.Point{{X: float64(i), Y: 0}, {X: float64(i), Y: 1}},
			Color:  "#FF0000",
			Width:  3,
			Mode:   domain.ModeDraw,
		})
	}
	return m
}

func TestCommitUndoRedoInverse(t *testing.T) {
	h := domain.NewHistory(domain.EmptyDrawing())
	edited := drawingWithStrokes(1)

	committed := h.Commit(edited)
	if len(committed.Past) != 1 {
		t.Fatalf("expected past length 1 after commit, got %d", len(committed.Past))
	}

	undone := committed.Undo()
	if !undone.Present.Equal(h.Present) {
		t.Fatal("undo after commit must restore the prior present")
	}
	if len(undone.Future) != 1 || !undone.Future[0].Equal(edited) {
		t.Fatal("undo must park the committed value at the front of future")
	}

	redone := undone.Redo()
	if !redone.Present.Equal(edited) {
		t.Fatal("redo must restore the committed value exactly")
	}
}

func TestCommitClearsFuture(t *testing.T) {
	h := domain.NewHistory(domain.EmptyDrawing()).
		Commit(drawingWithStrokes(1)).
		Commit(drawingWithStrokes(2)).
		Undo().
		Undo()
	if len(h.Future) != 2 {
		t.Fatalf("expected 2 redo entries, got %d", len(h.Future))
	}

	h = h.Commit(drawingWithStrokes(3))
	if len(h.Future) != 0 {
		t.Fatal("a fresh commit must clear the redo branch entirely")
	}
	// The cleared branch must not be resurrectable.
	if !h.Redo().Present.Equal(h.Present) {
		t.Fatal("redo after a fresh commit must be a no-op")
	}
}

func TestUndoRedoBoundaryNoops(t *testing.T) {
	h := domain.NewHistory(drawingWithStrokes(1))
	if got := h.Undo(); !got.Present.Equal(h.Present) || len(got.Past) != 0 {
		t.Fatal("undo with empty past must be a no-op")
	}
	if got := h.Redo(); !got.Present.Equal(h.Present) || len(got.Future) != 0 {
		t.Fatal("redo with empty future must be a no-op")
	}
}

func TestOverwritePreservesStacks(t *testing.T) {
	h := domain.NewHistory(domain.EmptyDrawing()).
		Commit(drawingWithStrokes(1)).
		Commit(drawingWithStrokes(2)).
		Undo()

	incoming := drawingWithStrokes(5)
	after := h.Overwrite(incoming)
	if !after.Present.Equal(incoming) {
		t.Fatal("overwrite must replace present")
	}
	if len(after.Past) != len(h.Past) || len(after.Future) != len(h.Future) {
		t.Fatal("overwrite must not touch the undo/redo stacks")
	}
}

func TestHistoryDepthCap(t *testing.T) {
	h := domain.NewHistory(domain.EmptyDrawing())
	for i := 1; i <= domain.MaxHistoryDepth+10; i++ {
		h = h.Commit(drawingWithStrokes(i))
	}
	if len(h.Past) != domain.MaxHistoryDepth {
		t.Fatalf("expected past capped at %d, got %d", domain.MaxHistoryDepth, len(h.Past))
	}
	// The newest snapshots survive; the oldest are gone.
	last := h.Past[len(h.Past)-1]
	if len(last.Paths) != domain.MaxHistoryDepth+9 {
		t.Fatalf("cap dropped the wrong end: newest past has %d paths", len(last.Paths))
	}
}

func TestSlideHistoryLazyDefault(t *testing.T) {
	s := domain.NewSlideHistory()
	h := s.Get(3)
	if !h.Present.IsEmpty() || h.CanUndo() || h.CanRedo() {
		t.Fatal("untouched slide must materialize an empty default history")
	}

	s.Set(3, h.Commit(drawingWithStrokes(1)))
	if !s.Get(3).CanUndo() {
		t.Fatal("Set must replace the slide's entry")
	}
	if s.Get(4).CanUndo() {
		t.Fatal("slides must have independent stacks")
	}
}

func TestSlideHistoryPresents(t *testing.T) {
	s := domain.NewSlideHistory()
	for i := 0; i < 3; i++ {
		s.Set(i, domain.NewHistory(drawingWithStrokes(i+1)))
	}
	presents := s.Presents()
	if len(presents) != 3 {
		t.Fatalf("expected 3 presents, got %d", len(presents))
	}
	for i, m := range presents {
		if len(m.Paths) != i+1 {
			t.Errorf("slide %d: expected %d paths, got %d", i, i+1, len(m.Paths))
		}
	}
}

func TestSlideHistoryManySlides(t *testing.T) {
	s := domain.NewSlideHistory()
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("slide-%d", i)
		m := domain.EmptyDrawing().AddTextBox(domain.Point{X: float64(i)}, "#000000")
		m = m.EditTextBoxText(m.TextBoxes[0].ID, name)
		s.Set(i, s.Get(i).Commit(m))
	}
	for i := 0; i < 10; i++ {
		got := s.Get(i).Present.TextBoxes[0].Text
		want := fmt.Sprintf("slide-%d", i)
		if got != want {
			t.Errorf("slide %d: got %q, want %q", i, got, want)
		}
	}
}
