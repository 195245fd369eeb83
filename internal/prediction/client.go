// File: internal/prediction/client.go
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/upstream"

	"go.uber.org/zap"
)

const (
	predictPath = "/v1/predict"
	detectPath  = "/v1/detect-disease"
)

// ErrNoPrice is returned when the inference server answers without a usable price.
var ErrNoPrice = errors.New("prediction response carries no current_price")

// PriceRequest is the body of a price prediction call.
type PriceRequest struct {
	Crop      string  `json:"crop"`
	District  string  `json:"district"`
	State     string  `json:"state"`
	AreaAcres float64 `json:"area_acres"`
}

// PriceResult holds the fields the backend itself reads from a prediction.
type PriceResult struct {
	CurrentPrice *float64 `json:"current_price"`
	Trend        string   `json:"trend"`
}

// Client talks to the ML inference server.
type Client interface {
	// PredictRaw forwards an arbitrary request body and returns the response body as is.
	PredictRaw(ctx context.Context, body map[string]interface{}) ([]byte, error)
	// DetectRaw forwards a disease detection request and returns the response body as is.
	DetectRaw(ctx context.Context, body map[string]interface{}) ([]byte, error)
	// Predict asks for one crop price and decodes it.
	Predict(ctx context.Context, req PriceRequest) (*PriceResult, error)
}

type httpClient struct {
	upstream *upstream.Client
	baseURL  string
	logger   *zap.Logger
}

// NewClient creates the inference server client.
func NewClient(cfg *config.Config, logger *zap.Logger) Client {
	return &httpClient{
		upstream: upstream.NewClient("ml", upstream.DefaultSettings(cfg.MLTimeout), logger),
		baseURL:  strings.TrimRight(cfg.MLServerURL, "/"),
		logger:   logger.Named("MLClient"),
	}
}

func (c *httpClient) PredictRaw(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	resp, err := c.upstream.PostJSON(ctx, c.baseURL+predictPath, body, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *httpClient) DetectRaw(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	resp, err := c.upstream.PostJSON(ctx, c.baseURL+detectPath, body, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *httpClient) Predict(ctx context.Context, req PriceRequest) (*PriceResult, error) {
	resp, err := c.upstream.PostJSON(ctx, c.baseURL+predictPath, req, nil)
	if err != nil {
		return nil, err
	}
	var out PriceResult
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding prediction for %s: %w", req.Crop, err)
	}
	if out.CurrentPrice == nil {
		return nil, fmt.Errorf("%s: %w", req.Crop, ErrNoPrice)
	}
	return &out, nil
}
