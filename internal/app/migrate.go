// File: internal/app/migrate.go
package app

import (
	"fmt"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/disease"
	"krishipredict_backend/internal/liveprice"
	"krishipredict_backend/internal/market"
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted model.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&disease.Report{},
		&market.Listing{},
		&liveprice.LivePrice{},
		&notification.Notification{},
		&activity.Entry{},
	}
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	logger.Info("Database schema is up to date", zap.Int("models", len(Models())))
	return nil
}
