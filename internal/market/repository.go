// File: internal/market/repository.go
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"krishipredict_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for market listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error)
	ListActiveByDistrict(ctx context.Context, district string) ([]Listing, error)
	SearchActive(ctx context.Context, query SearchQuery) ([]Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus) error
	SetImage(ctx context.Context, id uuid.UUID, path string) error
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	FindAllActive(ctx context.Context) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-based market listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

const districtFilter = `LOWER(district) LIKE ? ESCAPE '\'`

func (r *gormRepository) Create(ctx context.Context, listing *Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("creating listing failed: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithMessage("Listing not found")
		}
		return nil, fmt.Errorf("finding listing failed: %w", err)
	}
	return &listing, nil
}

// FindByIDs returns the active listings among ids, in the order of ids.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error) {
	if len(ids) == 0 {
		return []Listing{}, nil
	}
	var found []Listing
	err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, StatusActive).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("loading listings by id failed: %w", err)
	}
	byID := make(map[uuid.UUID]Listing, len(found))
	for _, l := range found {
		byID[l.ID] = l
	}
	ordered := make([]Listing, 0, len(found))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, nil
}

func (r *gormRepository) ListActiveByDistrict(ctx context.Context, district string) ([]Listing, error) {
	listings := []Listing{}
	err := r.db.WithContext(ctx).
		Where(districtFilter, common.LikePattern(district)).
		Where("status = ?", StatusActive).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("listing market items failed: %w", err)
	}
	return listings, nil
}

// SearchActive is the database fallback for full-text search: a
// case-insensitive substring match on crop or variety.
func (r *gormRepository) SearchActive(ctx context.Context, query SearchQuery) ([]Listing, error) {
	listings := []Listing{}
	tx := r.db.WithContext(ctx).Where("status = ?", StatusActive)
	if query.Query != "" {
		p := common.LikePattern(query.Query)
		tx = tx.Where(`(LOWER(crop) LIKE ? ESCAPE '\' OR LOWER(variety) LIKE ? ESCAPE '\')`, p, p)
	}
	if query.District != "" {
		tx = tx.Where(districtFilter, common.LikePattern(query.District))
	}
	if err := tx.Order("created_at DESC").Limit(query.Limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("searching listings failed: %w", err)
	}
	return listings, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ListingStatus) error {
	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("updating listing status failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithMessage("Listing not found")
	}
	return nil
}

func (r *gormRepository) SetImage(ctx context.Context, id uuid.UUID, path string) error {
	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Update("image", path)
	if result.Error != nil {
		return fmt.Errorf("saving listing image failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithMessage("Listing not found")
	}
	return nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Listing{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting listings failed: %w", err)
	}
	return n, nil
}

func (r *gormRepository) ListRecent(ctx context.Context, limit int) ([]Listing, error) {
	listings := []Listing{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("listing recent listings failed: %w", err)
	}
	return listings, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Listing{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting listing failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithMessage("Listing not found")
	}
	return nil
}

// ExpireOlderThan marks active listings created before cutoff as expired and
// returns their ids.
func (r *gormRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Listing{}).
			Where("status = ? AND created_at < ?", StatusActive, cutoff.UTC()).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&Listing{}).Where("id IN ?", ids).Update("status", StatusExpired).Error
	})
	if err != nil {
		return nil, fmt.Errorf("expiring listings failed: %w", err)
	}
	return ids, nil
}

func (r *gormRepository) FindAllActive(ctx context.Context) ([]Listing, error) {
	listings := []Listing{}
	if err := r.db.WithContext(ctx).Where("status = ?", StatusActive).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("loading active listings failed: %w", err)
	}
	return listings, nil
}
