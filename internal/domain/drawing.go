package domain

import "github.com/google/uuid"

// StrokeMode tells the renderer how to composite a stroke.
type StrokeMode string

const (
	ModeDraw  StrokeMode = "draw"
	ModeErase StrokeMode = "erase"
)

// Point is a device-local pixel coordinate captured during a gesture.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous freehand gesture. Immutable once committed.
// An erase stroke visually subtracts when rendered; it never removes
// other strokes from the model.
type Stroke struct {
	Points []Point    `json:"points"`
	Color  string     `json:"color"`
	Width  float64    `json:"width"`
	Mode   StrokeMode `json:"mode"`
}

// TextBox is an annotation label positioned on a slide. Identity is ID.
type TextBox struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

// DefaultTextBoxText is the placeholder a fresh text box starts with.
const DefaultTextBoxText = "Type here"

// DrawingModel is the full annotation content for one slide: the unit of
// persistence and synchronization. Paths are append-only under normal
// editing; rendering order is significant.
type DrawingModel struct {
	Paths     []Stroke  `json:"paths"`
	TextBoxes []TextBox `json:"textBoxes"`
}

// EmptyDrawing returns a fresh model with non-nil slices so JSON output
// is always {"paths":[],"textBoxes":[]} rather than nulls.
func EmptyDrawing() DrawingModel {
	return DrawingModel{Paths: []Stroke{}, TextBoxes: []TextBox{}}
}

// Clone returns a deep copy. History snapshots and outbound copies must
// never alias live state.
func (d DrawingModel) Clone() DrawingModel {
	out := DrawingModel{
		Paths:     make([]Stroke, len(d.Paths)),
		TextBoxes: make([]TextBox, len(d.TextBoxes)),
	}
	for i, p := range d.Paths {
		cp := p
		cp.Points = append([]Point(nil), p.Points...)
		out.Paths[i] = cp
	}
	copy(out.TextBoxes, d.TextBoxes)
	return out
}

// Equal reports deep equality. Used by the remote reconciler to detect
// echoes of our own writes.
func (d DrawingModel) Equal(other DrawingModel) bool {
	if len(d.Paths) != len(other.Paths) || len(d.TextBoxes) != len(other.TextBoxes) {
		return false
	}
	for i, p := range d.Paths {
		q := other.Paths[i]
		if p.Color != q.Color || p.Width != q.Width || p.Mode != q.Mode || len(p.Points) != len(q.Points) {
			return false
		}
		for j, pt := range p.Points {
			if pt != q.Points[j] {
				return false
			}
		}
	}
	for i, b := range d.TextBoxes {
		if b != other.TextBoxes[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the model has no content at all.
func (d DrawingModel) IsEmpty() bool {
	return len(d.Paths) == 0 && len(d.TextBoxes) == 0
}

// AddStroke appends a stroke and returns the new model. Strokes with
// fewer than two points are degenerate single clicks and are dropped
// silently; the input model is returned unchanged.
func (d DrawingModel) AddStroke(s Stroke) DrawingModel {
	if len(s.Points) < 2 {
		return d
	}
	out := d.Clone()
	s.Points = append([]Point(nil), s.Points...)
	out.Paths = append(out.Paths, s)
	return out
}

// AddTextBox creates a text box with a fresh id at the given point and
// returns the new model.
func (d DrawingModel) AddTextBox(at Point, color string) DrawingModel {
	out := d.Clone()
	out.TextBoxes = append(out.TextBoxes, TextBox{
		ID:    uuid.New().String(),
		X:     at.X,
		Y:     at.Y,
		Text:  DefaultTextBoxText,
		Color: color,
	})
	return out
}

// EditTextBoxText replaces the text of the box with the given id.
// Unknown ids are a silent no-op.
func (d DrawingModel) EditTextBoxText(id, text string) DrawingModel {
	out := d.Clone()
	for i := range out.TextBoxes {
		if out.TextBoxes[i].ID == id {
			out.TextBoxes[i].Text = text
			return out
		}
	}
	return d
}

// DeleteTextBox removes the box with the given id. Unknown ids are a
// silent no-op; deleting twice equals deleting once.
func (d DrawingModel) DeleteTextBox(id string) DrawingModel {
	for i, b := range d.TextBoxes {
		if b.ID == id {
			out := d.Clone()
			out.TextBoxes = append(out.TextBoxes[:i], out.TextBoxes[i+1:]...)
			return out
		}
	}
	return d
}
