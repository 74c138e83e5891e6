package service

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ─────────────────────────────────────────────────────────────
// Document watcher — external changes to the cached documents
// ─────────────────────────────────────────────────────────────

// DocumentWatcher watches the imported-document cache directory and
// emits an event when a blob is replaced from outside the app (another
// process, a received peer transfer landing on disk), so the view can
// re-render the affected collection without a restart.
type DocumentWatcher struct {
	emitter EventEmitter
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewDocumentWatcher starts watching dir. Call Stop to release it.
func NewDocumentWatcher(ctx context.Context, dir string, emitter EventEmitter) (*DocumentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &DocumentWatcher{emitter: emitter, watcher: watcher, stopCh: make(chan struct{})}
	go w.loop(ctx)
	return w, nil
}

// Stop releases the underlying watcher.
func (w *DocumentWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *DocumentWatcher) loop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			id, ok := collectionIDFromPath(event.Name)
			if !ok {
				continue
			}
			log.Printf("[docs] cached document changed for %s", id)
			w.emitter.Emit(ctx, EventDocumentCached, id)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[docs] watcher error: %v", err)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// collectionIDFromPath extracts the collection id from a cache filename
// of the form document_<id>.pdf.
func collectionIDFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "document_") {
		return "", false
	}
	name = strings.TrimPrefix(name, "document_")
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		return "", false
	}
	return name, true
}
