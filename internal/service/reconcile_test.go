package service_test

import (
	"testing"

	"lessondeck/internal/domain"
	"lessondeck/internal/service"
)

func strokeDrawing(x float64) domain.DrawingModel {
	return domain.EmptyDrawing().AddStroke(domain.Stroke{
		Points: []domain.Point{{X: x, Y: 0}, {X: x, Y: 1}},
		Color:  "#FF0000",
		Width:  3,
		Mode:   domain.ModeDraw,
	})
}

func TestReconciler_OwnEchoNotReapplied(t *testing.T) {
	r := &service.Reconciler{}
	m := strokeDrawing(1)

	r.NoteLocalEdit()
	if !r.ShouldWrite(m) {
		t.Fatal("a plain local edit must be written")
	}
	r.NoteWrite(m)

	// The store's subscription echoes our own write back.
	if r.AcceptInbound(m) {
		t.Fatal("our own echo must not be applied")
	}
	if r.State() != service.StateIdle {
		t.Fatalf("echo must settle the cycle, state = %v", r.State())
	}
}

func TestReconciler_InboundSuppressesOneWrite(t *testing.T) {
	r := &service.Reconciler{}
	remote := strokeDrawing(2)

	if !r.AcceptInbound(remote) {
		t.Fatal("a genuine remote change must be applied")
	}
	// Whatever schedules a write of that same value next is an echo.
	if r.ShouldWrite(remote) {
		t.Fatal("the write following an inbound apply must be skipped")
	}
	// Exactly one: the cycle after that writes normally.
	if !r.ShouldWrite(remote) {
		t.Fatal("suppression must be one-shot")
	}
}

func TestReconciler_NewEditDuringSuppressionNotSwallowed(t *testing.T) {
	r := &service.Reconciler{}
	remote := strokeDrawing(3)
	if !r.AcceptInbound(remote) {
		t.Fatal("remote change must be applied")
	}

	// The user edits before the suppressed cycle fires: the settled
	// value differs from the inbound one and must go out.
	edited := remote.AddStroke(domain.Stroke{
		Points: []domain.Point{{X: 9, Y: 9}, {X: 9, Y: 10}},
		Color:  "#00FF00",
		Width:  3,
		Mode:   domain.ModeDraw,
	})
	r.NoteLocalEdit()
	if !r.ShouldWrite(edited) {
		t.Fatal("a genuinely new local value must never be suppressed")
	}
}

func TestReconciler_ConcurrentRemoteDuringAwait(t *testing.T) {
	r := &service.Reconciler{}
	ours := strokeDrawing(4)
	theirs := strokeDrawing(5)

	r.NoteLocalEdit()
	r.NoteWrite(ours)

	// Another editor won the race at the store: their value, not ours,
	// comes down the subscription. It must be applied.
	if !r.AcceptInbound(theirs) {
		t.Fatal("a losing write must still accept the winner's value")
	}
}
