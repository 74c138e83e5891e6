package storage_test

import (
	"path/filepath"
	"testing"

	"lessondeck/internal/domain"
	"lessondeck/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "deck.db"), dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDrawing() domain.DrawingModel {
	m := domain.EmptyDrawing().AddStroke(domain.Stroke{
		Points: []domain.Point{{X: 1, Y: 1}, {X: 2, Y: 2}},
		Color:  "#0000FF",
		Width:  2,
		Mode:   domain.ModeDraw,
	})
	return m.AddTextBox(domain.Point{X: 10, Y: 20}, "#000000")
}

func TestSlideRoundTrip(t *testing.T) {
	db := openTestDB(t)
	slides := storage.NewSlideStore(db)

	want := sampleDrawing()
	if err := slides.PutDrawing("col-1", 3, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := slides.GetDrawings("col-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d slides, want 1", len(got))
	}
	if !got[3].Equal(want) {
		t.Fatal("drawing must survive the round trip")
	}
}

func TestSlideUpsertKeepsLatest(t *testing.T) {
	db := openTestDB(t)
	slides := storage.NewSlideStore(db)

	first := sampleDrawing()
	second := domain.EmptyDrawing()
	if err := slides.PutDrawing("col-1", 0, first); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := slides.PutDrawing("col-1", 0, second); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := slides.GetDrawings("col-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got[0].Equal(second) {
		t.Fatal("the later write must win")
	}
}

func TestCorruptRowYieldsEmptySlide(t *testing.T) {
	db := openTestDB(t)
	slides := storage.NewSlideStore(db)

	_, err := db.Conn().Exec(
		`INSERT INTO slides (collection_id, slide_index, drawing_json) VALUES (?, ?, ?)`,
		"col-1", 0, "{not json",
	)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	got, err := slides.GetDrawings("col-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m, ok := got[0]; !ok || !m.IsEmpty() {
		t.Fatal("a corrupt row must open as an empty slide, not an error")
	}
}

func TestSlideIndexDefaultsToZero(t *testing.T) {
	db := openTestDB(t)
	slides := storage.NewSlideStore(db)

	index, err := slides.SlideIndex("never-seen")
	if err != nil {
		t.Fatalf("slide index: %v", err)
	}
	if index != 0 {
		t.Fatalf("index = %d, want 0", index)
	}

	if err := slides.SetSlideIndex("col-1", 4); err != nil {
		t.Fatalf("set index: %v", err)
	}
	if err := slides.SetSlideIndex("col-1", 2); err != nil {
		t.Fatalf("set index again: %v", err)
	}
	index, err = slides.SlideIndex("col-1")
	if err != nil {
		t.Fatalf("slide index: %v", err)
	}
	if index != 2 {
		t.Fatalf("index = %d, want 2", index)
	}
}

func TestCollectionStoreLifecycle(t *testing.T) {
	db := openTestDB(t)
	colls := storage.NewCollectionStore(db)

	c := &domain.Collection{
		ID:       "col-1",
		Title:    "Lesson 1",
		Date:     "2026-09-01",
		Template: domain.TemplateDefault,
	}
	if err := colls.CreateCollection(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := colls.GetCollection("col-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Lesson 1" || got.Template != domain.TemplateDefault {
		t.Fatalf("got %+v", got)
	}

	got.ExtraPages = 2
	if err := colls.UpdateCollection(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = colls.GetCollection("col-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.ExtraPages != 2 {
		t.Fatalf("extra pages = %d, want 2", got.ExtraPages)
	}

	list, err := colls.ListCollections()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list length = %d, want 1", len(list))
	}

	if err := colls.DeleteCollection("col-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := colls.GetCollection("col-1"); err == nil {
		t.Fatal("get after delete must fail")
	}
}

func TestCurrentCollectionID(t *testing.T) {
	db := openTestDB(t)
	colls := storage.NewCollectionStore(db)

	id, err := colls.CurrentCollectionID()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if id != "" {
		t.Fatalf("fresh db current = %q, want empty", id)
	}

	if err := colls.SetCurrentCollectionID("col-9"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	id, err = colls.CurrentCollectionID()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if id != "col-9" {
		t.Fatalf("current = %q, want col-9", id)
	}
}
