// File: internal/weather/service.go
package weather

import (
	"context"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Rain above this many millimetres today or tomorrow counts as expected rain.
const rainThresholdMM = 2.0

// Condition is the farmer-facing reading of a WMO weather code.
type Condition struct {
	Label  string `json:"label"`
	Advice string `json:"advice"`
}

// Forecast is the response of GET /weather/:district.
type Forecast struct {
	District     string      `json:"district"`
	Coordinates  Coordinates `json:"coordinates"`
	Current      Current     `json:"current"`
	Daily        Daily       `json:"daily"`
	Condition    Condition   `json:"condition"`
	RainExpected bool        `json:"rain_expected"`
}

// ConditionFor maps a WMO weather code to a label and advice.
func ConditionFor(code int) Condition {
	switch {
	case code <= 3:
		return Condition{Label: "Clear Sky", Advice: "Weather is clear. Good for spraying."}
	case code <= 48:
		return Condition{Label: "Cloudy", Advice: "Cloudy weather expected."}
	case code <= 67:
		return Condition{Label: "Rainy", Advice: "Avoid irrigation/spraying today."}
	default:
		return Condition{Label: "Stormy", Advice: "Stay safe. Heavy rain alert."}
	}
}

func rainExpected(d Daily) bool {
	for i := 0; i < len(d.Precipitation) && i < 2; i++ {
		if d.Precipitation[i] > rainThresholdMM {
			return true
		}
	}
	return false
}

// Service serves district forecasts from a short-lived cache.
type Service interface {
	Forecast(ctx context.Context, district string) (*Forecast, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	client Client
	cache  *cache.Cache
	logger *zap.Logger
}

// NewService creates a new weather service.
func NewService(client Client, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	ttl := cfg.WeatherCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ServiceImplementation{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.Named("WeatherService"),
	}
}

func (s *ServiceImplementation) Forecast(ctx context.Context, district string) (*Forecast, error) {
	key, coords := LookupDistrict(district)
	if v, ok := s.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("weather", "hit").Inc()
		return v.(*Forecast), nil
	}
	metrics.CacheLookups.WithLabelValues("weather", "miss").Inc()

	report, err := s.client.Fetch(ctx, coords)
	if err != nil {
		return nil, err
	}
	forecast := &Forecast{
		District:     key,
		Coordinates:  coords,
		Current:      report.Current,
		Daily:        report.Daily,
		Condition:    ConditionFor(report.Current.WeatherCode),
		RainExpected: rainExpected(report.Daily),
	}
	s.cache.Set(key, forecast, cache.DefaultExpiration)
	return forecast, nil
}
