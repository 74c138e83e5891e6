package app

import (
	"errors"

	"lessondeck/internal/export"
)

// ============================================================
// Export
// ============================================================

// ExportPDF captures the open deck's annotations into a PDF at path,
// one page per slide. Pending writes are flushed first so the capture
// matches what persistence will show.
func (a *App) ExportPDF(path string) error {
	if a.deck.CollectionID() == "" {
		return errors.New("no collection open")
	}
	a.writer.FlushAll()
	return export.PDF(path, a.deck.SlideCount(), a.deck.Presents())
}
