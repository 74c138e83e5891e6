package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lessondeck/internal/domain"
)

// CollectionStore implements domain.CollectionStore using SQLite.
type CollectionStore struct {
	db *DB
}

func NewCollectionStore(db *DB) *CollectionStore {
	return &CollectionStore{db: db}
}

func (s *CollectionStore) CreateCollection(c *domain.Collection) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO collections (id, title, date, template, document_pages, extra_pages, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Date, string(c.Template), c.DocumentPages, c.ExtraPages, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *CollectionStore) GetCollection(id string) (*domain.Collection, error) {
	c := &domain.Collection{}
	var template string
	err := s.db.conn.QueryRow(
		`SELECT id, title, date, template, document_pages, extra_pages, created_at, updated_at
		 FROM collections WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Date, &template, &c.DocumentPages, &c.ExtraPages, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	c.Template = domain.Template(template)
	return c, nil
}

func (s *CollectionStore) ListCollections() ([]domain.Collection, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, title, date, template, document_pages, extra_pages, created_at, updated_at
		 FROM collections ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		var c domain.Collection
		var template string
		if err := rows.Scan(&c.ID, &c.Title, &c.Date, &template, &c.DocumentPages, &c.ExtraPages, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Template = domain.Template(template)
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (s *CollectionStore) UpdateCollection(c *domain.Collection) error {
	c.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE collections SET title = ?, date = ?, template = ?, document_pages = ?, extra_pages = ?, updated_at = ?
		 WHERE id = ?`,
		c.Title, c.Date, string(c.Template), c.DocumentPages, c.ExtraPages, c.UpdatedAt, c.ID,
	)
	return err
}

func (s *CollectionStore) DeleteCollection(id string) error {
	_, _ = s.db.conn.Exec(`DELETE FROM slide_state WHERE collection_id = ?`, id)
	_, err := s.db.conn.Exec(`DELETE FROM collections WHERE id = ?`, id)
	return err
}

func (s *CollectionStore) CurrentCollectionID() (string, error) {
	var id string
	err := s.db.conn.QueryRow(`SELECT value FROM session WHERE key = 'current_collection_id'`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get current collection: %w", err)
	}
	return id, nil
}

func (s *CollectionStore) SetCurrentCollectionID(id string) error {
	if id == "" {
		_, err := s.db.conn.Exec(`DELETE FROM session WHERE key = 'current_collection_id'`)
		return err
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO session (key, value) VALUES ('current_collection_id', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, id,
	)
	return err
}
