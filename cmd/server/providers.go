// File: cmd/server/providers.go
package main

import (
	"context"
	"log"
	"time"

	"krishipredict_backend/internal/app"
	"krishipredict_backend/internal/auth"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/firebase"
	"krishipredict_backend/internal/market"
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/platform/database"
	"krishipredict_backend/internal/platform/elasticsearch"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const indexSetupTimeout = 15 * time.Second

// provideDatabase opens the database and migrates the schema. The cleanup
// closes the pool and flushes the logger.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := app.Migrate(db, logger.Named("Migrate")); err != nil {
		database.CloseGORMDB(db)
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return db, cleanup, nil
}

func provideOTPStore(cfg *config.Config) auth.OTPStore {
	return auth.NewInMemoryOTPStore(cfg.OTPTTL)
}

// provideSearchIndex creates the listings index when search is configured.
// A failure here is logged only; search falls back to the database.
func provideSearchIndex(client *elasticsearch.ESClientWrapper, logger *zap.Logger) market.Index {
	index := market.NewIndex(client, logger)
	if index == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), indexSetupTimeout)
	defer cancel()
	if err := index.EnsureIndex(ctx); err != nil {
		logger.Error("Failed to create market listings index", zap.Error(err))
	}
	return index
}

// providePusher keeps a disabled push service a nil interface.
func providePusher(push *firebase.PushService) notification.Pusher {
	if push == nil {
		return nil
	}
	return push
}
