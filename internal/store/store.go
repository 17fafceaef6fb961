// Package store is the unit's non-volatile key/value state. It backs onto a
// small sqlite file so the last known availability status survives a restart.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"faculty-desk-unit/internal/model"
)

// KeyAvailability holds the last AvailabilityStatus string.
const KeyAvailability = "availability_status"

// Store defines the key/value persistence capability.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Open opens (or creates) the sqlite database at path and runs migrations.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.AutoMigrate(&model.DeviceState{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	return db, nil
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Get returns the stored value for key, with found=false when the key has
// never been written.
func (s *gormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row model.DeviceState
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return row.Value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *gormStore) Set(ctx context.Context, key, value string) error {
	row := model.DeviceState{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	return nil
}
