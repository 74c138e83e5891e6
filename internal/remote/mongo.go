package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"lessondeck/internal/domain"
)

// Collection names in the shared database.
const (
	collCollections = "collections"
	collSlides      = "slides"
	collSlideState  = "slides_state"
	collCustomPages = "custom_pages"
)

// MongoStore implements domain.RemoteStore on a shared MongoDB database.
// One document per slide keyed by (collectionId, slideIndex); navigation
// and page counts live in their own small documents, mirroring the
// local store's layout.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// slideDoc is the wire shape of one slide document.
type slideDoc struct {
	CollectionID string    `bson:"collectionId"`
	SlideIndex   int       `bson:"slideIndex"`
	DrawingJSON  string    `bson:"drawing"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// Connect opens the shared store. uri is a standard mongodb:// or
// mongodb+srv:// connection string; dbName defaults to "lessondeck".
func Connect(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = "lessondeck"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) SaveCollectionMeta(ctx context.Context, c domain.Collection) error {
	filter := bson.M{"_id": c.ID}
	update := bson.M{"$set": bson.M{
		"title":     c.Title,
		"date":      c.Date,
		"template":  string(c.Template),
		"pageCount": c.SlideCount(),
		"createdAt": c.CreatedAt,
	}}
	_, err := s.db.Collection(collCollections).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save collection meta: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveSlide(ctx context.Context, collectionID string, index int, m domain.DrawingModel) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal drawing: %w", err)
	}
	filter := bson.M{"collectionId": collectionID, "slideIndex": index}
	update := bson.M{"$set": bson.M{
		"drawing":   string(raw),
		"updatedAt": time.Now(),
	}}
	_, err = s.db.Collection(collSlides).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save slide %d: %w", index, err)
	}
	return nil
}

func (s *MongoStore) LoadSlides(ctx context.Context, collectionID string) (map[int]domain.DrawingModel, error) {
	cursor, err := s.db.Collection(collSlides).Find(ctx, bson.M{"collectionId": collectionID})
	if err != nil {
		return nil, fmt.Errorf("load slides: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[int]domain.DrawingModel)
	for cursor.Next(ctx) {
		var doc slideDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode slide: %w", err)
		}
		m, ok := decodeDrawing(doc.DrawingJSON)
		if !ok {
			// A malformed document must not block entry; slide opens empty.
			m = domain.EmptyDrawing()
		}
		out[doc.SlideIndex] = m
	}
	return out, cursor.Err()
}

// WatchSlides subscribes to the shared slide documents of one collection
// via a change stream. The returned channel closes when ctx is cancelled
// or the stream dies; errors are logged, not returned mid-stream, per
// the best-effort failure model.
func (s *MongoStore) WatchSlides(ctx context.Context, collectionID string) (<-chan domain.SlideChange, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fullDocument.collectionId": collectionID,
			"operationType":             bson.M{"$in": bson.A{"insert", "update", "replace"}},
		}}},
	}
	stream, err := s.db.Collection(collSlides).Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, fmt.Errorf("watch slides: %w", err)
	}

	ch := make(chan domain.SlideChange, 16)
	go func() {
		defer close(ch)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument slideDoc `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("[remote] decode change event: %v", err)
				continue
			}
			m, ok := decodeDrawing(event.FullDocument.DrawingJSON)
			if !ok {
				continue
			}
			change := domain.SlideChange{
				CollectionID: event.FullDocument.CollectionID,
				Index:        event.FullDocument.SlideIndex,
				Drawing:      m,
				UpdatedAt:    event.FullDocument.UpdatedAt,
			}
			select {
			case ch <- change:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[remote] slide stream closed: %v", err)
		}
	}()
	return ch, nil
}

func (s *MongoStore) SaveNavigation(ctx context.Context, collectionID string, index int) error {
	filter := bson.M{"_id": collectionID}
	update := bson.M{"$set": bson.M{"currentSlide": index}}
	_, err := s.db.Collection(collSlideState).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save navigation: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveCustomPages(ctx context.Context, collectionID string, count int) error {
	filter := bson.M{"_id": collectionID}
	update := bson.M{"$set": bson.M{"count": count}}
	_, err := s.db.Collection(collCustomPages).UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save custom pages: %w", err)
	}
	return nil
}

func decodeDrawing(raw string) (domain.DrawingModel, bool) {
	var m domain.DrawingModel
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Printf("[remote] malformed drawing document: %v", err)
		return domain.DrawingModel{}, false
	}
	if m.Paths == nil {
		m.Paths = []domain.Stroke{}
	}
	if m.TextBoxes == nil {
		m.TextBoxes = []domain.TextBox{}
	}
	return m, true
}

var _ domain.RemoteStore = (*MongoStore)(nil)
