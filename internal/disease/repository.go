// File: internal/disease/repository.go
package disease

import (
	"context"
	"fmt"
	"time"

	"krishipredict_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for disease report data operations.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	AlertCounts(ctx context.Context, district string, since time.Time) ([]Alert, error)
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-based disease report repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, report *Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("creating disease report failed: %w", err)
	}
	return nil
}

// AlertCounts groups reports since the given time whose district contains
// district (case-insensitive), most reported first.
func (r *gormRepository) AlertCounts(ctx context.Context, district string, since time.Time) ([]Alert, error) {
	alerts := []Alert{}
	err := r.db.WithContext(ctx).Model(&Report{}).
		Select("disease_name AS disease, COUNT(*) AS count").
		Where(`LOWER(district) LIKE ? ESCAPE '\'`, common.LikePattern(district)).
		Where("date >= ?", since.UTC()).
		Group("disease_name").
		Order("count DESC, disease_name ASC").
		Scan(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating disease alerts failed: %w", err)
	}
	return alerts, nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Report{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting disease reports failed: %w", err)
	}
	return n, nil
}

func (r *gormRepository) ListRecent(ctx context.Context, limit int) ([]Report, error) {
	reports := []Report{}
	if err := r.db.WithContext(ctx).Order("date DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("listing disease reports failed: %w", err)
	}
	return reports, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Report{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting disease report failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithMessage("Report not found")
	}
	return nil
}
