// Package localstore is the durable client-local key/value slot used for the
// watched order id and the persisted view-state. It mirrors the browser
// localStorage contract: string get/set/remove, last write wins.
package localstore

import (
	"fmt"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store is a simple durable string key/value store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type entry struct {
	Key   string `gorm:"primaryKey;type:varchar(100)"`
	Value string `gorm:"type:text"`
}

func (entry) TableName() string { return "local_entries" }

// SQLiteStore persists entries in a small SQLite file via GORM.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the local store at the given path.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key and whether it was present.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var e entry
	if err := s.db.First(&e, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read local key %s: %w", key, err)
	}
	return e.Value, true, nil
}

// Set writes the value for key, overwriting any previous value.
func (s *SQLiteStore) Set(key, value string) error {
	err := s.db.Save(&entry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write local key %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Removing an absent key is not an error.
func (s *SQLiteStore) Remove(key string) error {
	if err := s.db.Delete(&entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove local key %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests. Values survive for the
// process lifetime, which is enough to simulate a reload.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set writes the value for key.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes the key.
func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
