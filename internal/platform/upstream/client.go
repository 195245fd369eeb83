// File: internal/platform/upstream/client.go
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"krishipredict_backend/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrUnavailable wraps every failure to obtain a usable answer from an
// external service: transport errors, timeouts, 5xx/4xx statuses and an
// open circuit breaker.
var ErrUnavailable = errors.New("upstream unavailable")

const maxResponseBytes = 10 << 20

// StatusError is returned when the upstream answered with a non-2xx status.
type StatusError struct {
	Upstream   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Upstream, e.StatusCode)
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Settings tune the circuit breaker guarding one upstream.
type Settings struct {
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// DefaultSettings returns breaker settings suited to slow, occasionally
// overloaded services.
func DefaultSettings(timeout time.Duration) Settings {
	return Settings{
		Timeout:          timeout,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// Client is an HTTP client for one named upstream. Calls are bounded by a
// timeout and pass through a circuit breaker. There is no retry.
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	logger  *zap.Logger
}

// NewClient creates a client for the named upstream.
func NewClient(name string, s Settings, logger *zap.Logger) *Client {
	log := logger.Named("upstream").With(zap.String("upstream", name))
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// Client errors are the caller's fault, not a sign of an unhealthy upstream.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &Client{
		name:    name,
		http:    &http.Client{Timeout: s.Timeout},
		breaker: cb,
		logger:  log,
	}
}

// Name returns the upstream name used in logs and metrics.
func (c *Client) Name() string { return c.name }

// Do executes the request through the breaker and reads the whole body.
func (c *Client) Do(req *http.Request) (*Response, error) {
	start := time.Now()
	resp, err := c.breaker.Execute(func() (*Response, error) {
		r, err := c.http.Do(req)
		if err != nil {
			// Query strings may carry credentials; keep them out of error text.
			var ue *url.Error
			if errors.As(err, &ue) {
				ue.URL = req.URL.Host + req.URL.Path
			}
			return nil, err
		}
		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		out := &Response{StatusCode: r.StatusCode, Header: r.Header, Body: body}
		if r.StatusCode < 200 || r.StatusCode > 299 {
			return out, &StatusError{Upstream: c.name, StatusCode: r.StatusCode, Body: body}
		}
		return out, nil
	})

	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
	}
	metrics.UpstreamRequestDuration.WithLabelValues(c.name, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("Upstream call failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Host+req.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return resp, fmt.Errorf("%s: %w: %w", c.name, ErrUnavailable, err)
	}
	return resp, nil
}

// PostJSON marshals payload and posts it with the given extra headers.
func (c *Client) PostJSON(ctx context.Context, target string, payload interface{}, header http.Header) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", c.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, target string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(req)
}
