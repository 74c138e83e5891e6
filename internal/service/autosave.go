package service

import (
	"log"

	"github.com/robfig/cron/v3"

	"lessondeck/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Autosave — periodic sweep behind the debounced writes
// ─────────────────────────────────────────────────────────────

// Autosave periodically flushes every scheduled slide write and saves
// the navigation position. The debounced writer already persists on
// quiescence; the sweep is the backstop for a session that never goes
// quiet.
type Autosave struct {
	deck   *DeckService
	writer *DebouncedWriter
	slides domain.SlideStore
	sched  *cron.Cron
}

// NewAutosave creates a sweep that is not yet running.
func NewAutosave(deck *DeckService, writer *DebouncedWriter, slides domain.SlideStore) *Autosave {
	return &Autosave{deck: deck, writer: writer, slides: slides}
}

// Start schedules the sweep. spec is a cron expression, e.g. "@every 1m".
func (a *Autosave) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, a.sweep); err != nil {
		return err
	}
	c.Start()
	a.sched = c
	log.Printf("[autosave] scheduled %q", spec)
	return nil
}

// Stop halts the sweep and runs one final flush.
func (a *Autosave) Stop() {
	if a.sched != nil {
		a.sched.Stop()
		a.sched = nil
	}
	a.sweep()
}

func (a *Autosave) sweep() {
	id := a.deck.CollectionID()
	if id == "" {
		return
	}
	a.writer.FlushAll()
	if err := a.slides.SetSlideIndex(id, a.deck.CurrentSlide()); err != nil {
		log.Printf("[autosave] save slide index: %v", err)
	}
}
