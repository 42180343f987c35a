// Package storage provides the durable local key-value store used as a
// fallback cache for currency state. Values are stored as JSON in a single
// SQLite table (pure-Go driver, no cgo).
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type kvEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// Store is a SQLite-backed JSON key-value store.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New opens (or creates) the store at the given file path.
func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Get unmarshals the stored value for key into dest. It returns false when
// the key is absent or the stored value cannot be unmarshaled; a corrupt
// value is treated as a miss, never an error.
func (s *Store) Get(key string, dest any) bool {
	var entry kvEntry
	if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(entry.Value), dest); err != nil {
		s.logger.Warn("Discarding corrupt stored value", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	entry := kvEntry{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to store value for key %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if err := s.db.Delete(&kvEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
