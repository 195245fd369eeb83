// File: internal/liveprice/repository.go
package liveprice

import (
	"context"
	"fmt"
	"time"

	"krishipredict_backend/internal/common"

	"gorm.io/gorm"
)

// Repository defines the interface for live price data operations.
type Repository interface {
	Create(ctx context.Context, price *LivePrice) error
	// Recent returns prices reported since the given time whose district
	// contains district (case-insensitive), newest first.
	Recent(ctx context.Context, district string, since time.Time, limit int) ([]LivePrice, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-based live price repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, price *LivePrice) error {
	if err := r.db.WithContext(ctx).Create(price).Error; err != nil {
		return fmt.Errorf("creating live price failed: %w", err)
	}
	return nil
}

func (r *gormRepository) Recent(ctx context.Context, district string, since time.Time, limit int) ([]LivePrice, error) {
	prices := []LivePrice{}
	err := r.db.WithContext(ctx).
		Where(`LOWER(district) LIKE ? ESCAPE '\'`, common.LikePattern(district)).
		Where("reported_at >= ?", since.UTC()).
		Order("reported_at DESC").
		Limit(limit).
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("listing live prices failed: %w", err)
	}
	return prices, nil
}

func (r *gormRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("reported_at < ?", cutoff.UTC()).Delete(&LivePrice{})
	if result.Error != nil {
		return 0, fmt.Errorf("purging live prices failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
