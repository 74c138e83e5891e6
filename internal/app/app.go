package app

import (
	"context"
	"log"

	"lessondeck/internal/broadcast"
	"lessondeck/internal/config"
	"lessondeck/internal/domain"
	"lessondeck/internal/remote"
	"lessondeck/internal/service"
	"lessondeck/internal/storage"
)

// App is the application root: it owns the stores, the services and the
// broadcast session, and is the single EventEmitter implementation the
// services talk through. A view binding attaches via SetEmitHandler.
type App struct {
	ctx context.Context
	cfg *config.Config

	db          *storage.DB
	collections *storage.CollectionStore
	slides      *storage.SlideStore
	documents   *storage.DocumentStore
	remote      domain.RemoteStore

	writer   *service.DebouncedWriter
	deck     *service.DeckService
	colls    *service.CollectionService
	autosave *service.Autosave
	docWatch *service.DocumentWatcher

	session *session

	// watchCancel stops the remote subscription of the open collection.
	watchCancel context.CancelFunc

	emitFn func(event string, data any)
}

// New creates an App from configuration. Nothing is opened until
// Startup.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg, session: newSession()}
}

// SetEmitHandler attaches the view binding that receives every event.
func (a *App) SetEmitHandler(f func(event string, data any)) {
	a.emitFn = f
}

// Emit implements service.EventEmitter. Navigation events also persist
// the slide index as a side effect, so the deck reopens where it was
// left.
func (a *App) Emit(ctx context.Context, event string, data any) {
	if event == service.EventSlideChanged {
		if index, ok := data.(int); ok {
			a.saveNavigation(ctx, index)
		}
	}
	if a.emitFn != nil {
		a.emitFn(event, data)
	}
}

// Startup opens storage and the optional remote store, builds the
// services, and reopens the collection that was current last session.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	db, err := storage.New(a.cfg.DBPath(), a.cfg.DocumentsDir())
	if err != nil {
		return err
	}
	a.db = db
	a.collections = storage.NewCollectionStore(db)
	a.slides = storage.NewSlideStore(db)
	a.documents = storage.NewDocumentStore(db)

	if a.cfg.Remote.URI != "" {
		store, err := remote.Connect(ctx, a.cfg.Remote.URI, a.cfg.Remote.Database)
		if err != nil {
			// Shared store is best-effort; the deck still works locally.
			log.Printf("[app] remote store unavailable: %v", err)
			a.Emit(ctx, service.EventStorageError, "shared store unavailable, working locally")
		} else {
			a.remote = store
		}
	}

	var sink service.Persister
	if a.remote != nil {
		sink = &service.RemotePersister{Slides: a.slides, Remote: a.remote}
	} else {
		sink = &service.LocalPersister{Slides: a.slides}
	}
	a.writer = service.NewDebouncedWriter(sink, a.cfg.Debounce(), a)
	a.deck = service.NewDeckService(a.writer, a)
	a.colls = service.NewCollectionService(a.collections, a.slides, a.documents, a.remote, a)

	a.autosave = service.NewAutosave(a.deck, a.writer, a.slides)
	if err := a.autosave.Start(a.cfg.Storage.AutosaveSchedule); err != nil {
		log.Printf("[app] autosave schedule invalid: %v", err)
	}

	watcher, err := service.NewDocumentWatcher(ctx, a.documents.Dir(), a)
	if err != nil {
		log.Printf("[app] document watcher unavailable: %v", err)
	} else {
		a.docWatch = watcher
	}

	if id, err := a.collections.CurrentCollectionID(); err == nil && id != "" {
		if err := a.OpenCollection(id); err != nil {
			log.Printf("[app] reopen collection %s: %v", id, err)
		}
	}
	return nil
}

// Shutdown flushes pending writes and releases every resource.
func (a *App) Shutdown(ctx context.Context) {
	a.Disconnect()
	if a.watchCancel != nil {
		a.watchCancel()
		a.watchCancel = nil
	}
	if a.autosave != nil {
		a.autosave.Stop()
	}
	if a.docWatch != nil {
		a.docWatch.Stop()
	}
	if a.remote != nil {
		if err := a.remote.Close(ctx); err != nil {
			log.Printf("[app] close remote: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[app] close db: %v", err)
		}
	}
}

func (a *App) saveNavigation(ctx context.Context, index int) {
	id := a.deck.CollectionID()
	if id == "" {
		return
	}
	if err := a.slides.SetSlideIndex(id, index); err != nil {
		log.Printf("[app] save slide index: %v", err)
	}
	if a.remote != nil && a.deck.Role() != broadcast.RoleViewer {
		go func() {
			if err := a.remote.SaveNavigation(ctx, id, index); err != nil {
				log.Printf("[app] mirror navigation: %v", err)
			}
		}()
	}
}
