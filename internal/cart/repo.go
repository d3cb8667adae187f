package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStorage persists carts as rows of cart_snapshots through GORM. It works
// against both the Postgres and SQLite dialectors.
type SQLStorage struct {
	db *gorm.DB
}

func NewSQLStorage(db *gorm.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

func (r *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var snapshot models.CartSnapshot
	err := r.db.WithContext(ctx).Where("storage_key = ?", key).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load cart snapshot: %w", err)
	}
	return snapshot.Payload, true, nil
}

func (r *SQLStorage) Set(ctx context.Context, key, value string) error {
	snapshot := models.CartSnapshot{
		StorageKey: key,
		Payload:    value,
		UpdatedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (r *SQLStorage) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DeleteOlderThan removes carts last written before cutoff.
func (r *SQLStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", cutoff.UTC()).Delete(&models.CartSnapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete stale cart snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}
