package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carhub/service-rental/pkg/domain"
)

// BlobModel is the GORM model for the blobs table.
type BlobModel struct {
	Key       string    `gorm:"primaryKey;size:200"`
	Value     []byte    `gorm:"type:jsonb;not null"`
	Version   int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BlobModel) TableName() string {
	return "blobs"
}

// PostgresStore is the GORM-backed Store. Every write bumps the row version
// and Update locks the row for the duration of the mutation.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the blob under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var model BlobModel
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob %q: %w", key, err)
	}
	return model.Value, nil
}

// Set upserts the blob under key.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	model := BlobModel{Key: key, Value: value, Version: 1, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"version":    gorm.Expr("blobs.version + 1"),
			"updated_at": model.UpdatedAt,
		}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to write blob %q: %w", key, err)
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result guarded by the version that was read.
func (s *PostgresStore) Update(ctx context.Context, key string, fn MutateFunc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model BlobModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).First(&model).Error
		exists := true
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to lock blob %q: %w", key, err)
			}
			exists = false
		}

		var current []byte
		if exists {
			current = model.Value
		}

		next, write, err := fn(current)
		if err != nil {
			return err
		}
		if !write {
			return nil
		}

		now := time.Now().UTC()
		if !exists {
			if err := tx.Create(&BlobModel{Key: key, Value: next, Version: 1, UpdatedAt: now}).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.NewConflictError(fmt.Sprintf("blob %q was created concurrently", key))
				}
				return fmt.Errorf("failed to create blob %q: %w", key, err)
			}
			return nil
		}

		result := tx.Model(&BlobModel{}).
			Where("key = ? AND version = ?", key, model.Version).
			Updates(map[string]interface{}{
				"value":      next,
				"version":    model.Version + 1,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update blob %q: %w", key, result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError(fmt.Sprintf("blob %q was modified by another transaction", key))
		}
		return nil
	})
}
