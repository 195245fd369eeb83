// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"krishipredict_backend/internal/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"-"`
	CORSAllowedOrigins []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Regional defaults applied when a request leaves them out
	DefaultDistrict string `mapstructure:"DEFAULT_DISTRICT"`
	DefaultState    string `mapstructure:"DEFAULT_STATE"`

	// ML inference server
	MLServerURL string        `mapstructure:"ML_SERVER_URL"`
	MLTimeout   time.Duration `mapstructure:"-"`

	// OpenAI-compatible chat completion provider (Groq by default)
	LLMAPIURL  string        `mapstructure:"LLM_API_URL"`
	LLMAPIKey  string        `mapstructure:"LLM_API_KEY"`
	LLMModel   string        `mapstructure:"LLM_MODEL"`
	LLMTimeout time.Duration `mapstructure:"-"`

	// SMS gateway and OTP
	SMSAPIURL   string        `mapstructure:"SMS_API_URL"`
	SMSAPIKey   string        `mapstructure:"SMS_API_KEY"`
	SMSTimeout  time.Duration `mapstructure:"-"`
	OTPTestCode string        `mapstructure:"OTP_TEST_CODE"`
	OTPTTL      time.Duration `mapstructure:"-"`
	LoginPerMin int           `mapstructure:"LOGIN_RATE_PER_MINUTE"`
	LoginBurst  int           `mapstructure:"LOGIN_RATE_BURST"`

	// JWT Configuration
	JWTSecretKey                string        `mapstructure:"JWT_SECRET_KEY"`
	JWTAccessTokenExpiryMinutes time.Duration `mapstructure:"-"`

	// Admin back-office shared key
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	// Weather
	WeatherAPIURL   string        `mapstructure:"WEATHER_API_URL"`
	WeatherTimeout  time.Duration `mapstructure:"-"`
	WeatherCacheTTL time.Duration `mapstructure:"-"`

	// Retention
	RetentionJobSchedule   string `mapstructure:"RETENTION_JOB_SCHEDULE"`
	ListingLifespanDays    int    `mapstructure:"LISTING_LIFESPAN_DAYS"`
	LivePriceRetentionDays int    `mapstructure:"LIVE_PRICE_RETENTION_DAYS"`
	NotificationTTLDays    int    `mapstructure:"NOTIFICATION_TTL_DAYS"`

	// Listing images
	ImageStoragePath string `mapstructure:"IMAGE_STORAGE_PATH"`

	// Firebase Configuration (push notifications, optional)
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration (market search, optional)
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Durations are whole units in the environment, not Go duration strings.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.MLTimeout = time.Duration(v.GetInt("ML_TIMEOUT_SECONDS")) * time.Second
	cfg.LLMTimeout = time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second
	cfg.SMSTimeout = time.Duration(v.GetInt("SMS_TIMEOUT_SECONDS")) * time.Second
	cfg.OTPTTL = time.Duration(v.GetInt("OTP_TTL_SECONDS")) * time.Second
	cfg.JWTAccessTokenExpiryMinutes = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute
	cfg.WeatherTimeout = time.Duration(v.GetInt("WEATHER_TIMEOUT_SECONDS")) * time.Second
	cfg.WeatherCacheTTL = time.Duration(v.GetInt("WEATHER_CACHE_MINUTES")) * time.Minute

	// Comma separated in the environment.
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if cfg.DBSource == "" && cfg.DBDriver != "sqlite" {
		cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "krishipredict")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DEFAULT_DISTRICT", "Sehore")
	v.SetDefault("DEFAULT_STATE", "Madhya Pradesh")

	v.SetDefault("ML_SERVER_URL", "http://localhost:8000")
	v.SetDefault("ML_TIMEOUT_SECONDS", 60)

	v.SetDefault("LLM_API_URL", "https://api.groq.com/openai/v1/chat/completions")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "llama3-8b-8192")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 30)

	v.SetDefault("SMS_API_URL", "https://www.fast2sms.com/dev/bulkV2")
	v.SetDefault("SMS_API_KEY", "")
	v.SetDefault("SMS_TIMEOUT_SECONDS", 10)
	v.SetDefault("OTP_TEST_CODE", "1234")
	v.SetDefault("OTP_TTL_SECONDS", 300)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("LOGIN_RATE_BURST", 3)

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60*24*7)

	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER_TIMEOUT_SECONDS", 10)
	v.SetDefault("WEATHER_CACHE_MINUTES", 10)

	v.SetDefault("RETENTION_JOB_SCHEDULE", "@hourly")
	v.SetDefault("LISTING_LIFESPAN_DAYS", 30)
	v.SetDefault("LIVE_PRICE_RETENTION_DAYS", 30)
	v.SetDefault("NOTIFICATION_TTL_DAYS", 7)

	v.SetDefault("IMAGE_STORAGE_PATH", "./uploads")

	// Firebase and Elasticsearch are optional; empty disables them.
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("ELASTICSEARCH_URL", "")
}

// Validate rejects configurations that must not reach a release deployment.
func (c *Config) Validate() error {
	if c.GinMode != "release" {
		return nil
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("FATAL: JWT_SECRET_KEY must be set in release mode")
	}
	if strings.TrimSpace(c.AdminPassword) == "" {
		return fmt.Errorf("FATAL: ADMIN_PASSWORD must be set in release mode")
	}
	if c.FirebaseServiceAccountKeyPath != "" {
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	}
	return nil
}

// SMSEnabled reports whether real OTP delivery is configured. Without a key
// the fixed test code is used.
func (c *Config) SMSEnabled() bool {
	return strings.TrimSpace(c.SMSAPIKey) != ""
}

// DistrictOr trims district and falls back to DEFAULT_DISTRICT.
func (c *Config) DistrictOr(district string) string {
	if d := strings.TrimSpace(district); d != "" {
		return d
	}
	return common.DistrictOrDefault(c.DefaultDistrict)
}

// StateOr trims state and falls back to DEFAULT_STATE.
func (c *Config) StateOr(state string) string {
	if s := strings.TrimSpace(state); s != "" {
		return s
	}
	if s := strings.TrimSpace(c.DefaultState); s != "" {
		return s
	}
	return common.DefaultState
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
