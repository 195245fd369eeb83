// File: internal/chat/client.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/upstream"

	"go.uber.org/zap"
)

const (
	systemPrompt = "You are Kisan Mitra, an expert Indian agriculture AI. Reply in simple Hindi or Hinglish. Be practical."
	temperature  = 0.4
)

// ErrNotConfigured is returned when no LLM API key is set.
var ErrNotConfigured = errors.New("chat completion provider is not configured")

// errEmptyReply is returned when the provider answers without any choice.
var errEmptyReply = errors.New("chat completion returned no choices")

// Message is one turn of an OpenAI-compatible conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client sends a farmer's question to the chat completion provider.
type Client interface {
	Complete(ctx context.Context, question string) (string, error)
}

type httpClient struct {
	upstream *upstream.Client
	url      string
	apiKey   string
	model    string
	logger   *zap.Logger
}

// NewClient creates the OpenAI-compatible chat client (Groq by default).
func NewClient(cfg *config.Config, logger *zap.Logger) Client {
	return &httpClient{
		upstream: upstream.NewClient("llm", upstream.DefaultSettings(cfg.LLMTimeout), logger),
		url:      cfg.LLMAPIURL,
		apiKey:   strings.TrimSpace(cfg.LLMAPIKey),
		model:    cfg.LLMModel,
		logger:   logger.Named("ChatClient"),
	}
}

func (c *httpClient) Complete(ctx context.Context, question string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload := completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		Temperature: temperature,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.upstream.PostJSON(ctx, c.url, payload, header)
	if err != nil {
		return "", err
	}

	var out completionResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decoding chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
