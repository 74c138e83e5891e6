package app

import "lessondeck/internal/domain"

// ============================================================
// Deck — navigation, drawing, undo/redo
// ============================================================

func (a *App) CurrentSlide() int { return a.deck.CurrentSlide() }
func (a *App) SlideCount() int   { return a.deck.SlideCount() }

// Present returns a copy of the active slide's drawing for rendering.
func (a *App) Present() domain.DrawingModel { return a.deck.Present() }

func (a *App) NextSlide() { a.deck.Next(a.ctx) }
func (a *App) PrevSlide() { a.deck.Prev(a.ctx) }

func (a *App) GoToSlide(index int) { a.deck.GoTo(a.ctx, index) }

// HandleKey forwards a keyboard event from the view layer.
func (a *App) HandleKey(key string, ctrl, meta, shift, inTextField bool) {
	a.deck.HandleKey(a.ctx, key, ctrl, meta, shift, inTextField)
}

func (a *App) BeginStroke(x, y float64, color string, width float64, erase bool) {
	mode := domain.ModeDraw
	if erase {
		mode = domain.ModeErase
	}
	a.deck.BeginStroke(domain.Point{X: x, Y: y}, color, width, mode)
}

func (a *App) ExtendStroke(x, y float64) {
	a.deck.ExtendStroke(domain.Point{X: x, Y: y})
}

func (a *App) EndStroke() { a.deck.EndStroke(a.ctx) }

func (a *App) AddTextBox(x, y float64, color string) {
	a.deck.AddTextBox(a.ctx, domain.Point{X: x, Y: y}, color)
}

func (a *App) EditTextBox(id, text string) { a.deck.EditTextBox(a.ctx, id, text) }
func (a *App) DeleteTextBox(id string)     { a.deck.DeleteTextBox(a.ctx, id) }

func (a *App) Undo() { a.deck.Undo(a.ctx) }
func (a *App) Redo() { a.deck.Redo(a.ctx) }

// CanUndo/CanRedo drive the toolbar affordances.
func (a *App) CanUndo() bool { return a.deck.History().CanUndo() }
func (a *App) CanRedo() bool { return a.deck.History().CanRedo() }
