// File: internal/weather/client.go
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/upstream"

	"go.uber.org/zap"
)

// Current holds the present conditions.
type Current struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature_2m"`
	Humidity    float64 `json:"relative_humidity_2m"`
	WeatherCode int     `json:"weather_code"`
	WindSpeed   float64 `json:"wind_speed_10m"`
}

// Daily holds the day-by-day forecast as parallel arrays.
type Daily struct {
	Time          []string  `json:"time"`
	WeatherCode   []int     `json:"weather_code"`
	TempMax       []float64 `json:"temperature_2m_max"`
	Precipitation []float64 `json:"precipitation_sum"`
}

// Report is the Open-Meteo forecast for one location.
type Report struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Current   Current `json:"current"`
	Daily     Daily   `json:"daily"`
}

// Client fetches forecasts.
type Client interface {
	Fetch(ctx context.Context, at Coordinates) (*Report, error)
}

type openMeteoClient struct {
	upstream *upstream.Client
	baseURL  string
	logger   *zap.Logger
}

// NewClient creates the Open-Meteo forecast client.
func NewClient(cfg *config.Config, logger *zap.Logger) Client {
	return &openMeteoClient{
		upstream: upstream.NewClient("weather", upstream.DefaultSettings(cfg.WeatherTimeout), logger),
		baseURL:  cfg.WeatherAPIURL,
		logger:   logger.Named("WeatherClient"),
	}
}

func (c *openMeteoClient) Fetch(ctx context.Context, at Coordinates) (*Report, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Latitude, 'f', 2, 64))
	q.Set("longitude", strconv.FormatFloat(at.Longitude, 'f', 2, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")
	q.Set("daily", "weather_code,temperature_2m_max,precipitation_sum")
	q.Set("timezone", "auto")

	resp, err := c.upstream.Get(ctx, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out Report
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	return &out, nil
}
