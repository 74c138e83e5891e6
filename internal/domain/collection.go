package domain

import (
	"context"
	"time"
)

// Template picks the fixed slides a collection starts with.
type Template string

const (
	// TemplateDefault is the built-in lesson: title, self-intro, pinyin,
	// numbers, measure words, number sentences.
	TemplateDefault Template = "default"
	// TemplateBlank starts with a single note page.
	TemplateBlank Template = "blank"
)

// DefaultTemplatePages is the fixed page count of the default lesson.
const DefaultTemplatePages = 6

// Collection identifies one presentation: its template, an optionally
// imported document, and how many blank note pages were appended.
type Collection struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Template      Template  `json:"template"`
	DocumentPages int       `json:"documentPages"` // pages of the imported document, 0 if none
	ExtraPages    int       `json:"extraPages"`    // appended blank note pages
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SlideCount is the total number of slide indices the deck enumerates.
func (c Collection) SlideCount() int {
	base := 0
	switch c.Template {
	case TemplateBlank:
		base = 1
	default:
		base = DefaultTemplatePages
	}
	if c.DocumentPages > 0 {
		base = c.DocumentPages
	}
	return base + c.ExtraPages
}

// CollectionStore is the local metadata store for collections.
type CollectionStore interface {
	CreateCollection(c *Collection) error
	GetCollection(id string) (*Collection, error)
	ListCollections() ([]Collection, error)
	UpdateCollection(c *Collection) error
	DeleteCollection(id string) error

	// CurrentCollectionID is the last open collection, "" if none.
	CurrentCollectionID() (string, error)
	SetCurrentCollectionID(id string) error
}

// SlideStore persists present drawings and the saved slide index for a
// collection. Only present values are stored; history stacks are not.
type SlideStore interface {
	GetDrawings(collectionID string) (map[int]DrawingModel, error)
	PutDrawing(collectionID string, index int, m DrawingModel) error
	DeleteDrawings(collectionID string) error

	SlideIndex(collectionID string) (int, error)
	SetSlideIndex(collectionID string, index int) error
}

// DocumentStore caches imported document blobs per collection so a deck
// reopens offline.
type DocumentStore interface {
	SaveDocument(collectionID string, blob []byte) error
	LoadDocument(collectionID string) ([]byte, error)
	DeleteDocument(collectionID string) error
}

// SlideChange is one inbound update from the shared remote store.
type SlideChange struct {
	CollectionID string
	Index        int
	Drawing      DrawingModel
	UpdatedAt    time.Time
}

// RemoteStore is the shared-document deployment of persistence: one
// document per slide, plus navigation and page-count documents, with a
// subscription feed for inbound changes. Implementations receive and
// emit copies only; they never hold live DrawingModel references.
type RemoteStore interface {
	SaveCollectionMeta(ctx context.Context, c Collection) error
	SaveSlide(ctx context.Context, collectionID string, index int, m DrawingModel) error
	LoadSlides(ctx context.Context, collectionID string) (map[int]DrawingModel, error)
	WatchSlides(ctx context.Context, collectionID string) (<-chan SlideChange, error)

	SaveNavigation(ctx context.Context, collectionID string, index int) error
	SaveCustomPages(ctx context.Context, collectionID string, count int) error

	Close(ctx context.Context) error
}
