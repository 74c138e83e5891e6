package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lessondeck/internal/domain"
)

// DocumentStore implements domain.DocumentStore by caching imported
// document blobs as files under the data directory, one per collection.
// File-backed so the directory can be watched for external replacement.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Path returns the cache file path for a collection's document.
func (s *DocumentStore) Path(collectionID string) string {
	return filepath.Join(s.db.DataDir(), "document_"+collectionID+".pdf")
}

// Dir returns the directory all cached documents live in.
func (s *DocumentStore) Dir() string {
	return s.db.DataDir()
}

func (s *DocumentStore) SaveDocument(collectionID string, blob []byte) error {
	if err := os.WriteFile(s.Path(collectionID), blob, 0644); err != nil {
		return fmt.Errorf("cache document: %w", err)
	}
	return nil
}

func (s *DocumentStore) LoadDocument(collectionID string) ([]byte, error) {
	blob, err := os.ReadFile(s.Path(collectionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached document: %w", err)
	}
	return blob, nil
}

func (s *DocumentStore) DeleteDocument(collectionID string) error {
	err := os.Remove(s.Path(collectionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

var _ domain.DocumentStore = (*DocumentStore)(nil)
