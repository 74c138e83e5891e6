package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lessondeck/internal/domain"
)

// SlideStore implements domain.SlideStore using SQLite. Only the present
// drawing of each slide is stored, serialized as JSON the same way the
// remote store and the peer channel carry it.
type SlideStore struct {
	db *DB
}

func NewSlideStore(db *DB) *SlideStore {
	return &SlideStore{db: db}
}

func (s *SlideStore) GetDrawings(collectionID string) (map[int]domain.DrawingModel, error) {
	rows, err := s.db.conn.Query(
		`SELECT slide_index, drawing_json FROM slides WHERE collection_id = ?`, collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("load slides: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.DrawingModel)
	for rows.Next() {
		var index int
		var raw string
		if err := rows.Scan(&index, &raw); err != nil {
			return nil, fmt.Errorf("scan slide: %w", err)
		}
		var m domain.DrawingModel
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			// A corrupt row must not block deck entry; the slide opens empty.
			out[index] = domain.EmptyDrawing()
			continue
		}
		if m.Paths == nil {
			m.Paths = []domain.Stroke{}
		}
		if m.TextBoxes == nil {
			m.TextBoxes = []domain.TextBox{}
		}
		out[index] = m
	}
	return out, rows.Err()
}

func (s *SlideStore) PutDrawing(collectionID string, index int, m domain.DrawingModel) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal drawing: %w", err)
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO slides (collection_id, slide_index, drawing_json, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection_id, slide_index) DO UPDATE SET drawing_json = excluded.drawing_json, updated_at = excluded.updated_at`,
		collectionID, index, string(raw), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save slide: %w", err)
	}
	return nil
}

func (s *SlideStore) DeleteDrawings(collectionID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM slides WHERE collection_id = ?`, collectionID)
	return err
}

func (s *SlideStore) SlideIndex(collectionID string) (int, error) {
	var index int
	err := s.db.conn.QueryRow(
		`SELECT slide_index FROM slide_state WHERE collection_id = ?`, collectionID,
	).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get slide index: %w", err)
	}
	return index, nil
}

func (s *SlideStore) SetSlideIndex(collectionID string, index int) error {
	_, err := s.db.conn.Exec(
		`INSERT INTO slide_state (collection_id, slide_index) VALUES (?, ?)
		 ON CONFLICT(collection_id) DO UPDATE SET slide_index = excluded.slide_index`,
		collectionID, index,
	)
	return err
}
