// File: internal/activity/activity.go
package activity

import (
	"context"
	"fmt"
	"time"

	"krishipredict_backend/internal/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kinds of recorded events.
const (
	KindUserRegistered = "user_registered"
	KindListingCreated = "listing_created"
	KindDiseaseReport  = "disease_reported"
	KindPriceReported  = "price_reported"
	KindBroadcast      = "broadcast"
	KindAdminDelete    = "admin_delete"
)

// Entry is one line of the admin activity feed.
type Entry struct {
	common.BaseModel
	Kind    string `gorm:"type:varchar(50);not null;index" json:"kind"`
	Message string `gorm:"type:text;not null" json:"message"`
}

// TableName specifies the table name for GORM.
func (Entry) TableName() string {
	return "activity_log"
}

// Recorder appends to the activity feed. Recording is best effort: a failure
// is logged and never fails the calling operation.
type Recorder interface {
	Record(ctx context.Context, kind, message string)
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type gormRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGORMRecorder creates a Recorder persisting to the activity_log table.
func NewGORMRecorder(db *gorm.DB, logger *zap.Logger) Recorder {
	return &gormRecorder{db: db, logger: logger.Named("activity")}
}

func (r *gormRecorder) Record(ctx context.Context, kind, message string) {
	entry := &Entry{Kind: kind, Message: message}
	// Detached from the request so a cancelled request still leaves a trace.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.db.WithContext(writeCtx).Create(entry).Error; err != nil {
		r.logger.Warn("Failed to record activity", zap.String("kind", kind), zap.Error(err))
	}
}

func (r *gormRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("loading recent activity failed: %w", err)
	}
	return entries, nil
}
