// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/admin"
	"krishipredict_backend/internal/app"
	"krishipredict_backend/internal/auth"
	"krishipredict_backend/internal/chat"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/disease"
	"krishipredict_backend/internal/filestorage"
	"krishipredict_backend/internal/firebase"
	"krishipredict_backend/internal/jobs"
	"krishipredict_backend/internal/liveprice"
	"krishipredict_backend/internal/market"
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/platform/elasticsearch"
	"krishipredict_backend/internal/platform/logger"
	"krishipredict_backend/internal/prediction"
	"krishipredict_backend/internal/recommendation"
	"krishipredict_backend/internal/user"
	"krishipredict_backend/internal/weather"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	logger.New,
	provideDatabase,
	activity.NewGORMRecorder,
	elasticsearch.NewClient,
	filestorage.NewFileStorageService,
)

var marketSet = wire.NewSet(
	provideSearchIndex,
	market.NewGORMRepository,
	market.NewService,
	wire.Bind(new(market.Service), new(*market.ServiceImplementation)),
	wire.Bind(new(market.ImageStore), new(*filestorage.FileStorageService)),
	market.NewHandler,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		marketSet,

		// Farmers and login
		user.NewGORMRepository,
		provideOTPStore,
		auth.NewFast2SMSSender,
		wire.Bind(new(auth.SMSSender), new(*auth.Fast2SMSSender)),
		auth.NewJWTService,
		auth.NewService,
		wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
		auth.NewHandler,

		// ML backed features
		prediction.NewClient,
		prediction.NewHandler,
		recommendation.NewRanker,
		recommendation.NewHandler,
		disease.NewGORMRepository,
		disease.NewService,
		wire.Bind(new(disease.Service), new(*disease.ServiceImplementation)),
		disease.NewHandler,

		// Community
		liveprice.NewGORMRepository,
		liveprice.NewHandler,
		firebase.NewPushService,
		providePusher,
		notification.NewGORMRepository,
		wire.Bind(new(notification.TokenSource), new(user.Repository)),
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,
		chat.NewClient,
		chat.NewHandler,
		weather.NewClient,
		weather.NewService,
		wire.Bind(new(weather.Service), new(*weather.ServiceImplementation)),
		weather.NewHandler,

		// Back-office
		wire.Bind(new(admin.UserStore), new(user.Repository)),
		wire.Bind(new(admin.ReportStore), new(disease.Repository)),
		wire.Bind(new(admin.ListingStore), new(market.Service)),
		wire.Bind(new(admin.Broadcaster), new(notification.Service)),
		admin.NewService,
		wire.Bind(new(admin.Service), new(*admin.ServiceImplementation)),
		admin.NewHandler,

		// Retention
		wire.Bind(new(jobs.ListingExpirer), new(market.Service)),
		wire.Bind(new(jobs.LivePricePurger), new(liveprice.Repository)),
		wire.Bind(new(jobs.NotificationPurger), new(notification.Service)),
		jobs.NewRetentionJob,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		wire.Struct(new(app.Background), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeListingSync builds just enough to rebuild the search index.
func initializeListingSync(cfg *config.Config) (market.Service, func(), error) {
	wire.Build(
		platformSet,
		marketSet,
	)
	return nil, nil, nil
}
