package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lessondeck/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Collection Service — lessons, note pages, imported documents
// ─────────────────────────────────────────────────────────────

// CollectionService manages collection metadata, appended note pages
// and the imported-document cache. The remote store is optional; when
// present, metadata and page counts are mirrored there best-effort.
type CollectionService struct {
	store   domain.CollectionStore
	slides  domain.SlideStore
	docs    domain.DocumentStore
	remote  domain.RemoteStore
	emitter EventEmitter
}

// NewCollectionService creates a CollectionService. remote may be nil
// for the local-only deployment.
func NewCollectionService(
	store domain.CollectionStore,
	slides domain.SlideStore,
	docs domain.DocumentStore,
	remote domain.RemoteStore,
	emitter EventEmitter,
) *CollectionService {
	return &CollectionService{
		store:   store,
		slides:  slides,
		docs:    docs,
		remote:  remote,
		emitter: emitter,
	}
}

func (s *CollectionService) ListCollections() ([]domain.Collection, error) {
	return s.store.ListCollections()
}

func (s *CollectionService) GetCollection(id string) (*domain.Collection, error) {
	return s.store.GetCollection(id)
}

// CreateCollection makes a new presentation from a template and selects
// it as the current collection.
func (s *CollectionService) CreateCollection(ctx context.Context, title string, template domain.Template) (*domain.Collection, error) {
	if template != domain.TemplateBlank {
		template = domain.TemplateDefault
	}
	c := &domain.Collection{
		ID:       uuid.New().String(),
		Title:    title,
		Date:     time.Now().Format("2006-01-02"),
		Template: template,
	}
	if err := s.store.CreateCollection(c); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if err := s.store.SetCurrentCollectionID(c.ID); err != nil {
		return nil, fmt.Errorf("select collection: %w", err)
	}
	s.mirrorMeta(ctx, *c)
	return c, nil
}

func (s *CollectionService) DeleteCollection(id string) error {
	if err := s.slides.DeleteDrawings(id); err != nil {
		log.Printf("[collection] delete drawings for %s: %v", id, err)
	}
	if err := s.docs.DeleteDocument(id); err != nil {
		log.Printf("[collection] delete document for %s: %v", id, err)
	}
	current, _ := s.store.CurrentCollectionID()
	if current == id {
		_ = s.store.SetCurrentCollectionID("")
	}
	return s.store.DeleteCollection(id)
}

// CurrentCollectionID returns the last open collection id, "" if none.
func (s *CollectionService) CurrentCollectionID() (string, error) {
	return s.store.CurrentCollectionID()
}

// OpenCollection selects a collection and loads everything the deck
// needs: metadata, the persisted present drawings, and the saved slide
// index. With a remote store attached, the shared drawings win over the
// local cache (last writer to the shared store wins).
func (s *CollectionService) OpenCollection(ctx context.Context, id string) (*domain.Collection, map[int]domain.DrawingModel, int, error) {
	c, err := s.store.GetCollection(id)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("open collection: %w", err)
	}
	if err := s.store.SetCurrentCollectionID(id); err != nil {
		return nil, nil, 0, err
	}

	drawings, err := s.slides.GetDrawings(id)
	if err != nil {
		// Never block entry on a storage failure; start empty.
		log.Printf("[collection] load drawings for %s: %v", id, err)
		s.emitter.Emit(ctx, EventStorageError, fmt.Sprintf("could not load saved drawings: %v", err))
		drawings = map[int]domain.DrawingModel{}
	}

	if s.remote != nil {
		shared, err := s.remote.LoadSlides(ctx, id)
		if err != nil {
			log.Printf("[collection] load shared slides for %s: %v", id, err)
			s.emitter.Emit(ctx, EventStorageError, fmt.Sprintf("shared store unavailable: %v", err))
		} else {
			for index, m := range shared {
				drawings[index] = m
			}
		}
	}

	index, err := s.slides.SlideIndex(id)
	if err != nil {
		log.Printf("[collection] saved index for %s: %v", id, err)
		index = 0
	}
	return c, drawings, index, nil
}

// CloseCollection clears the current selection. Pending debounced
// writes are untouched; they flush on their own timers.
func (s *CollectionService) CloseCollection() error {
	return s.store.SetCurrentCollectionID("")
}

// AddPage appends one blank note page to the end of the deck.
func (s *CollectionService) AddPage(ctx context.Context, id string) (*domain.Collection, error) {
	c, err := s.store.GetCollection(id)
	if err != nil {
		return nil, err
	}
	c.ExtraPages++
	if err := s.store.UpdateCollection(c); err != nil {
		return nil, fmt.Errorf("add page: %w", err)
	}
	if s.remote != nil {
		if err := s.remote.SaveCustomPages(ctx, id, c.ExtraPages); err != nil {
			log.Printf("[collection] mirror page count: %v", err)
		}
	}
	return c, nil
}

// ImportDocument caches an imported document blob for the collection
// and records its page count so the deck enumerates one slide per page.
// A blob that cannot be parsed still imports with a single page; the
// affected slides just start with empty drawings.
func (s *CollectionService) ImportDocument(ctx context.Context, id string, blob []byte) (*domain.Collection, error) {
	c, err := s.store.GetCollection(id)
	if err != nil {
		return nil, err
	}
	if err := s.docs.SaveDocument(id, blob); err != nil {
		return nil, fmt.Errorf("import document: %w", err)
	}
	c.DocumentPages = countPDFPages(blob)
	if err := s.store.UpdateCollection(c); err != nil {
		return nil, fmt.Errorf("record document pages: %w", err)
	}
	s.mirrorMeta(ctx, *c)
	s.emitter.Emit(ctx, EventDocumentCached, id)
	return c, nil
}

// CacheDocument stores a document received from a host session without
// touching page metadata owned by the host's state pushes.
func (s *CollectionService) CacheDocument(ctx context.Context, id string, blob []byte) error {
	if err := s.docs.SaveDocument(id, blob); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventDocumentCached, id)
	return nil
}

// LoadDocument returns the cached blob for a collection, nil if absent.
func (s *CollectionService) LoadDocument(id string) ([]byte, error) {
	return s.docs.LoadDocument(id)
}

func (s *CollectionService) mirrorMeta(ctx context.Context, c domain.Collection) {
	if s.remote == nil {
		return
	}
	if err := s.remote.SaveCollectionMeta(ctx, c); err != nil {
		log.Printf("[collection] mirror meta for %s: %v", c.ID, err)
	}
}

// countPDFPages counts page objects in a PDF blob. The pack has no PDF
// reader (gofpdf only writes), so this scans for page markers; a count
// of zero means the blob is not recognizably a PDF and the document
// contributes a single slide.
func countPDFPages(blob []byte) int {
	n := bytes.Count(blob, []byte("/Type /Page")) - bytes.Count(blob, []byte("/Type /Pages"))
	n += bytes.Count(blob, []byte("/Type/Page")) - bytes.Count(blob, []byte("/Type/Pages"))
	if n < 1 {
		return 1
	}
	return n
}
