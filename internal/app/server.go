// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"krishipredict_backend/internal/admin"
	"krishipredict_backend/internal/auth"
	"krishipredict_backend/internal/chat"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/disease"
	"krishipredict_backend/internal/filestorage"
	"krishipredict_backend/internal/jobs"
	"krishipredict_backend/internal/liveprice"
	"krishipredict_backend/internal/market"
	"krishipredict_backend/internal/metrics"
	"krishipredict_backend/internal/middleware"
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/prediction"
	"krishipredict_backend/internal/recommendation"
	"krishipredict_backend/internal/shared"
	"krishipredict_backend/internal/weather"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every route handler the server mounts.
type Handlers struct {
	Auth           *auth.Handler
	Prediction     *prediction.Handler
	Disease        *disease.Handler
	Recommendation *recommendation.Handler
	Market         *market.Handler
	LivePrice      *liveprice.Handler
	Notification   *notification.Handler
	Chat           *chat.Handler
	Weather        *weather.Handler
	Admin          *admin.Handler
}

// Background is work that outlives a request and must finish before exit.
type Background struct {
	Disease       disease.Service
	Notifications notification.Service
}

func (b Background) wait() {
	if b.Disease != nil {
		b.Disease.Wait()
	}
	if b.Notifications != nil {
		b.Notifications.Wait()
	}
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer   *http.Server
	router       *gin.Engine
	cfg          *config.Config
	logger       *zap.Logger
	retentionJob *jobs.RetentionJob
	background   Background
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	retentionJob *jobs.RetentionJob,
	tokenService shared.TokenService,
	files *filestorage.FileStorageService,
	background Background,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg)))

	loginMW := middleware.RateLimitMiddleware(
		middleware.NewIPRateLimiter(cfg.LoginPerMin, cfg.LoginBurst), logger.Named("LoginRateLimit"))
	identityMW := middleware.OptionalAuthMiddleware(tokenService, logger.Named("AuthMiddleware"))
	authMW := middleware.AuthMiddleware(tokenService, logger.Named("AuthMiddleware"))
	adminMW := middleware.AdminKeyMiddleware(cfg.AdminPassword, logger.Named("AdminMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "KrishiPredict API is healthy!"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if files != nil {
		router.Static("/uploads", files.Root())
	}

	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1, loginMW, identityMW, authMW)
	handlers.Prediction.RegisterRoutes(v1)
	handlers.Disease.RegisterRoutes(v1)
	handlers.Recommendation.RegisterRoutes(v1)
	handlers.Market.RegisterRoutes(v1, identityMW)
	handlers.LivePrice.RegisterRoutes(v1)
	handlers.Notification.RegisterRoutes(v1)
	handlers.Chat.RegisterRoutes(v1)
	handlers.Weather.RegisterRoutes(v1)
	handlers.Admin.RegisterRoutes(v1, adminMW)

	// Upstream calls (ML cold starts) can take longer than ordinary requests.
	writeTimeout := max(cfg.ServerTimeout, cfg.MLTimeout) + 5*time.Second
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer:   httpServer,
		router:       router,
		cfg:          cfg,
		logger:       logger,
		retentionJob: retentionJob,
		background:   background,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", common.AdminKeyHeader, middleware.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	return corsCfg
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.retentionJob != nil {
		if err := s.retentionJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start retention job", zap.Error(err))
		}
	} else {
		s.logger.Info("Retention job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops accepting requests, then waits for background writes and
// pushes until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.retentionJob != nil {
		s.retentionJob.Stop()
	}
	err := s.httpServer.Shutdown(ctx)

	drained := make(chan struct{})
	go func() {
		s.background.wait()
		close(drained)
	}()
	select {
	case <-drained:
		s.logger.Info("Background work drained")
	case <-ctx.Done():
		s.logger.Warn("Timed out waiting for background work", zap.Error(ctx.Err()))
	}
	return err
}
