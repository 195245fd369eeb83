// File: internal/auth/sms.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/upstream"

	"go.uber.org/zap"
)

// SMSSender delivers an OTP to a phone.
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// Fast2SMSSender sends OTPs through the Fast2SMS bulkV2 "otp" route.
type Fast2SMSSender struct {
	client  *upstream.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewFast2SMSSender creates the SMS gateway client.
func NewFast2SMSSender(cfg *config.Config, logger *zap.Logger) *Fast2SMSSender {
	return &Fast2SMSSender{
		client:  upstream.NewClient("sms", upstream.DefaultSettings(cfg.SMSTimeout), logger),
		baseURL: cfg.SMSAPIURL,
		apiKey:  cfg.SMSAPIKey,
		logger:  logger.Named("Fast2SMS"),
	}
}

type fast2smsResponse struct {
	Return  bool        `json:"return"`
	Message interface{} `json:"message"`
}

func (s *Fast2SMSSender) SendOTP(ctx context.Context, phone, code string) error {
	q := url.Values{}
	q.Set("authorization", s.apiKey)
	q.Set("variables_values", code)
	q.Set("route", "otp")
	q.Set("numbers", phone)

	resp, err := s.client.Get(ctx, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("sending otp: %w", err)
	}

	var out fast2smsResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return fmt.Errorf("decoding sms gateway response: %w", err)
	}
	if !out.Return {
		return fmt.Errorf("sms gateway rejected otp: %v", out.Message)
	}
	s.logger.Debug("OTP dispatched", zap.String("phone", maskPhone(phone)))
	return nil
}

// maskPhone keeps only the last four digits for logs.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
