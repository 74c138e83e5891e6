package domain_test

import (
	"testing"

	"lessondeck/internal/domain"
)

func twoPointStroke(color string) domain.Stroke {
	return domain.Stroke{
		Points: []domain.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
		Color:  color,
		Width:  3,
		Mode:   domain.ModeDraw,
	}
}

func TestAddStroke_DegenerateDropped(t *testing.T) {
	m := domain.EmptyDrawing()

	got := m.AddStroke(domain.Stroke{Points: []domain.Point{{X: 1, Y: 1}}, Color: "#FF0000", Width: 3})
	if len(got.Paths) != 0 {
		t.Fatalf("single-point stroke should be dropped, got %d paths", len(got.Paths))
	}

	got = m.AddStroke(domain.Stroke{Points: nil, Color: "#FF0000", Width: 3})
	if len(got.Paths) != 0 {
		t.Fatalf("empty stroke should be dropped, got %d paths", len(got.Paths))
	}

	got = m.AddStroke(twoPointStroke("#FF0000"))
	if len(got.Paths) != 1 {
		t.Fatalf("two-point stroke should append exactly one path, got %d", len(got.Paths))
	}
}

func TestAddStroke_DoesNotMutateReceiver(t *testing.T) {
	m := domain.EmptyDrawing()
	m2 := m.AddStroke(twoPointStroke("#FF0000"))
	if len(m.Paths) != 0 {
		t.Fatal("AddStroke mutated its receiver")
	}
	// Mutating the new model's points must not bleed back.
	m3 := m2.AddStroke(twoPointStroke("#00FF00"))
	m3.Paths[0].Points[0].X = 99
	if m2.Paths[0].Points[0].X == 99 {
		t.Fatal("models alias stroke point storage")
	}
}

func TestAddTextBox_FreshID(t *testing.T) {
	m := domain.EmptyDrawing().
		AddTextBox(domain.Point{X: 10, Y: 20}, "#0000FF").
		AddTextBox(domain.Point{X: 30, Y: 40}, "#0000FF")
	if len(m.TextBoxes) != 2 {
		t.Fatalf("expected 2 text boxes, got %d", len(m.TextBoxes))
	}
	if m.TextBoxes[0].ID == m.TextBoxes[1].ID {
		t.Fatal("text box ids must be unique")
	}
	if m.TextBoxes[0].Text != domain.DefaultTextBoxText {
		t.Fatalf("expected placeholder text, got %q", m.TextBoxes[0].Text)
	}
}

func TestEditTextBoxText(t *testing.T) {
	m := domain.EmptyDrawing().AddTextBox(domain.Point{X: 1, Y: 2}, "#000000")
	id := m.TextBoxes[0].ID

	m2 := m.EditTextBoxText(id, "nǐ hǎo")
	if m2.TextBoxes[0].Text != "nǐ hǎo" {
		t.Fatalf("edit did not apply, got %q", m2.TextBoxes[0].Text)
	}
	if m.TextBoxes[0].Text != domain.DefaultTextBoxText {
		t.Fatal("edit mutated the original model")
	}

	m3 := m2.EditTextBoxText("no-such-id", "x")
	if !m3.Equal(m2) {
		t.Fatal("editing an unknown id must be a no-op")
	}
}

func TestDeleteTextBox_Idempotent(t *testing.T) {
	m := domain.EmptyDrawing().AddTextBox(domain.Point{X: 1, Y: 2}, "#000000")
	id := m.TextBoxes[0].ID

	once := m.DeleteTextBox(id)
	if len(once.TextBoxes) != 0 {
		t.Fatalf("expected box removed, got %d boxes", len(once.TextBoxes))
	}
	twice := once.DeleteTextBox(id)
	if !twice.Equal(once) {
		t.Fatal("deleting twice must equal deleting once")
	}
	if !m.DeleteTextBox("absent").Equal(m) {
		t.Fatal("deleting an unknown id must be a no-op")
	}
}

func TestDrawingEqual(t *testing.T) {
	a := domain.EmptyDrawing().AddStroke(twoPointStroke("#FF0000"))
	b := domain.EmptyDrawing().AddStroke(twoPointStroke("#FF0000"))
	if !a.Equal(b) {
		t.Fatal("identical drawings must compare equal")
	}
	c := domain.EmptyDrawing().AddStroke(twoPointStroke("#00FF00"))
	if a.Equal(c) {
		t.Fatal("different colors must not compare equal")
	}
	d := a.Clone()
	if !a.Equal(d) {
		t.Fatal("clone must compare equal to its source")
	}
}
