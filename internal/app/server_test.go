package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"krishipredict_backend/internal/activity"
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
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/platform/database"
	"krishipredict_backend/internal/prediction"
	"krishipredict_backend/internal/recommendation"
	"krishipredict_backend/internal/user"
	"krishipredict_backend/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		GinMode:                     "test",
		ServerHost:                  "127.0.0.1",
		ServerPort:                  "0",
		ServerTimeout:               5 * time.Second,
		CORSAllowedOrigins:          []string{"*"},
		DefaultDistrict:             "Sehore",
		DefaultState:                "Madhya Pradesh",
		MLServerURL:                 "http://ml.invalid",
		OTPTestCode:                 "1234",
		OTPTTL:                      time.Minute,
		LoginPerMin:                 60,
		LoginBurst:                  10,
		JWTSecretKey:                "test-secret",
		JWTAccessTokenExpiryMinutes: time.Hour,
		AdminPassword:               "admin123",
		ImageStoragePath:            t.TempDir(),
		NotificationTTLDays:         7,
	}
}

// newTestServer assembles the server the same way the injector does, on an
// in-memory database.
func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := testConfig(t)
	logger := zap.NewNop()
	db, err := database.OpenInMemory(Models()...)
	require.NoError(t, err)

	recorder := activity.NewGORMRecorder(db, logger)
	users := user.NewGORMRepository(db)
	tokens := auth.NewJWTService(cfg, logger)
	authSvc := auth.NewService(users, auth.NewInMemoryOTPStore(cfg.OTPTTL), auth.NewFast2SMSSender(cfg, logger), tokens, recorder, cfg, logger)

	ml := prediction.NewClient(cfg, logger)
	reports := disease.NewGORMRepository(db)
	diseaseSvc := disease.NewService(reports, ml, recorder, cfg, logger)

	files, err := filestorage.NewFileStorageService(cfg, logger)
	require.NoError(t, err)
	marketSvc := market.NewService(market.NewGORMRepository(db), nil, files, recorder, cfg, logger)

	prices := liveprice.NewGORMRepository(db)
	notificationSvc := notification.NewService(notification.NewGORMRepository(db), users, nil, recorder, cfg, logger)
	weatherSvc := weather.NewService(weather.NewClient(cfg, logger), cfg, logger)
	adminSvc := admin.NewService(users, reports, marketSvc, notificationSvc, recorder, logger)

	handlers := Handlers{
		Auth:           auth.NewHandler(authSvc, logger),
		Prediction:     prediction.NewHandler(ml, logger),
		Disease:        disease.NewHandler(diseaseSvc, logger),
		Recommendation: recommendation.NewHandler(recommendation.NewRanker(ml, cfg, logger), logger),
		Market:         market.NewHandler(marketSvc, logger),
		LivePrice:      liveprice.NewHandler(prices, recorder, cfg, logger),
		Notification:   notification.NewHandler(notificationSvc, logger),
		Chat:           chat.NewHandler(chat.NewClient(cfg, logger), logger),
		Weather:        weather.NewHandler(weatherSvc, logger),
		Admin:          admin.NewHandler(adminSvc, logger),
	}
	job := jobs.NewRetentionJob(marketSvc, prices, notificationSvc, logger, cfg)

	server, err := NewServer(cfg, logger, handlers, job, tokens, files,
		Background{Disease: diseaseSvc, Notifications: notificationSvc})
	require.NoError(t, err)
	return server, cfg
}

func do(s *Server, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	w = do(s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "krishi_http_requests_total")
}

func TestServer_LoginFlow(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/auth/login", map[string]string{"phone": "9876543210"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(s, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{"phone": "9876543210", "otp": "1234"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verified struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verified))
	assert.NotEmpty(t, verified.Token.AccessToken)

	w = do(s, http.MethodGet, "/api/v1/auth/profile/9876543210", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "9876543210")
}

func TestServer_AdminRoutesNeedKey(t *testing.T) {
	s, cfg := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(s, http.MethodGet, "/api/v1/admin/stats", nil, http.Header{common.AdminKeyHeader: {cfg.AdminPassword}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"recentActivity"`)
}

func TestServer_CommunityRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/report/add", map[string]interface{}{
		"district": "Sehore", "mandi": "Sehore Mandi", "crop": "Wheat", "price": 2400,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(s, http.MethodGet, "/api/v1/report/recent/sehore", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sehore Mandi")

	w = do(s, http.MethodGet, "/api/v1/notifications?district=Sehore", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_CORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/market/sell", nil)
	req.Header.Set("Origin", "https://app.krishi.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", common.AdminKeyHeader)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ServesUploadedImages(t *testing.T) {
	s, cfg := newTestServer(t)
	dir := filepath.Join(cfg.ImageStoragePath, "listings")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crop.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))

	w := do(s, http.MethodGet, "/uploads/listings/crop.png", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}

func TestCorsConfig_ExplicitOrigins(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORSAllowedOrigins = []string{"https://krishi.example"}

	c := corsConfig(cfg)
	assert.False(t, c.AllowAllOrigins)
	assert.True(t, c.AllowCredentials)
	assert.Equal(t, []string{"https://krishi.example"}, c.AllowOrigins)
	assert.NoError(t, c.Validate())
}
