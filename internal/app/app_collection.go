package app

import (
	"context"
	"errors"
	"log"

	"lessondeck/internal/domain"
)

// ============================================================
// Collections
// ============================================================

var errAlreadyInSession = errors.New("a broadcast session is already active")

func (a *App) ListCollections() ([]domain.Collection, error) {
	return a.colls.ListCollections()
}

func (a *App) CreateCollection(title string, template string) (*domain.Collection, error) {
	c, err := a.colls.CreateCollection(a.ctx, title, domain.Template(template))
	if err != nil {
		return nil, err
	}
	a.openDeck(c, map[int]domain.DrawingModel{}, 0)
	return c, nil
}

// OpenCollection loads a collection into the deck and, with a remote
// store attached, subscribes to its shared slide documents.
func (a *App) OpenCollection(id string) error {
	c, drawings, savedIndex, err := a.colls.OpenCollection(a.ctx, id)
	if err != nil {
		return err
	}
	a.openDeck(c, drawings, savedIndex)
	return nil
}

func (a *App) openDeck(c *domain.Collection, drawings map[int]domain.DrawingModel, savedIndex int) {
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}
	a.deck.Open(c, drawings, savedIndex)

	if a.remote == nil {
		return
	}
	watchCtx, cancel := context.WithCancel(a.ctx)
	a.watchCancel = cancel
	ch, err := a.remote.WatchSlides(watchCtx, c.ID)
	if err != nil {
		log.Printf("[app] watch shared slides: %v", err)
		cancel()
		a.watchCancel = nil
		return
	}
	go func() {
		for change := range ch {
			a.deck.HandleRemoteChange(watchCtx, change)
		}
	}()
}

// CloseCollection leaves the deck. Debounced writes flush on their own
// timers; the subscription for this collection stops.
func (a *App) CloseCollection() error {
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}
	a.deck.Close()
	return a.colls.CloseCollection()
}

func (a *App) DeleteCollection(id string) error {
	if a.deck.CollectionID() == id {
		if err := a.CloseCollection(); err != nil {
			return err
		}
	}
	return a.colls.DeleteCollection(id)
}

// AddPage appends one blank note page to the open collection.
func (a *App) AddPage() error {
	id := a.deck.CollectionID()
	if id == "" {
		return errors.New("no collection open")
	}
	c, err := a.colls.AddPage(a.ctx, id)
	if err != nil {
		return err
	}
	a.deck.SetCollection(c)
	return nil
}

// ImportDocument attaches an imported document to the open collection.
func (a *App) ImportDocument(blob []byte) error {
	id := a.deck.CollectionID()
	if id == "" {
		return errors.New("no collection open")
	}
	c, err := a.colls.ImportDocument(a.ctx, id, blob)
	if err != nil {
		return err
	}
	a.deck.SetCollection(c)

	// Viewers already connected get the document right away; late
	// joiners get it from the hello handshake.
	a.session.mu.Lock()
	host := a.session.host
	a.session.mu.Unlock()
	if host != nil {
		host.SendDocument(id, blob)
	}
	return nil
}
