// File: internal/notification/repository.go
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository defines the interface for notification data operations.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	// Feed returns unexpired notifications, newest first. A non-empty
	// district limits the feed to notices for all districts or that one.
	Feed(ctx context.Context, district string, now time.Time, limit int) ([]Notification, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *GORMRepository) Feed(ctx context.Context, district string, now time.Time, limit int) ([]Notification, error) {
	notifications := []Notification{}
	query := r.db.WithContext(ctx).Where("expires_at > ?", now.UTC())
	if d := strings.TrimSpace(district); d != "" {
		query = query.Where("(target_district = ? OR LOWER(target_district) = ?)", TargetAll, strings.ToLower(d))
	}
	if err := query.Order("date DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("fetching notifications failed: %w", err)
	}
	return notifications, nil
}

func (r *GORMRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
