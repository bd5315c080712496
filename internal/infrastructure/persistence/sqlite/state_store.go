// Package sqlite provides the SQLite-backed StateStore for on-device persistence
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// StateModel represents the GORM model for one persisted state entry
type StateModel struct {
	Key       string `gorm:"column:state_key;type:varchar(128);primaryKey"`
	Value     []byte `gorm:"type:blob;not null"`
	UpdatedAt time.Time
}

// TableName overrides the table name
func (StateModel) TableName() string {
	return "client_state"
}

// SetupDatabase opens the SQLite database and migrates the state table
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run auto-migration
	if err := db.AutoMigrate(&StateModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// StateStore implements outbound.StateStore on a GORM/SQLite table
type StateStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStateStore creates a new SQLite state store
func NewStateStore(db *gorm.DB, logger *zap.Logger) *StateStore {
	return &StateStore{
		db:     db,
		logger: logger.Named("sqlite-state"),
	}
}

// Get retrieves a value
func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model StateModel
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, outbound.ErrStateNotFound
	}
	if err != nil {
		s.logger.Error("State get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read state %s: %w", key, err)
	}
	return model.Value, nil
}

// Set stores a value, replacing any previous one
func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	model := StateModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		s.logger.Error("State set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write state %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&StateModel{}).Error; err != nil {
		s.logger.Error("State delete failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

var _ outbound.StateStore = (*StateStore)(nil)
