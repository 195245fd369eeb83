// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"krishipredict_backend/internal/config"
)

// MaxTokensPerBatch is the FCM limit for one multicast send.
const MaxTokensPerBatch = 500

// Messenger is the slice of the FCM client the push service needs.
type Messenger interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// PushService delivers broadcast notifications to devices through Firebase
// Cloud Messaging.
type PushService struct {
	client Messenger
	logger *zap.Logger
}

// NewPushService initializes the Firebase Admin SDK. It returns (nil, nil)
// when no service account is configured; push delivery is then disabled.
func NewPushService(cfg *config.Config, logger *zap.Logger) (*PushService, error) {
	logger = logger.Named("FirebasePush")
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Info("Firebase service account key path is not configured. Push notifications disabled.")
		return nil, nil
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Messaging client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Messaging client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return NewPushServiceWithClient(client, logger), nil
}

// NewPushServiceWithClient wraps an existing messaging client.
func NewPushServiceWithClient(client Messenger, logger *zap.Logger) *PushService {
	return &PushService{client: client, logger: logger}
}

// Push sends one notification to every token, in batches of
// MaxTokensPerBatch. It returns the number of devices that accepted the
// message. A failed batch is logged and the rest are still attempted.
func (s *PushService) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error) {
	delivered := 0
	var lastErr error
	for start := 0; start < len(tokens); start += MaxTokensPerBatch {
		end := min(start+MaxTokensPerBatch, len(tokens))
		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       tokens[start:end],
			Notification: &messaging.Notification{Title: title, Body: body},
			Data:         data,
			Android:      &messaging.AndroidConfig{Priority: "high"},
		})
		if err != nil {
			s.logger.Error("FCM multicast failed", zap.Int("batch_size", end-start), zap.Error(err))
			lastErr = err
			continue
		}
		delivered += resp.SuccessCount
		if resp.FailureCount > 0 {
			unregistered := 0
			for _, r := range resp.Responses {
				if r != nil && r.Error != nil && messaging.IsUnregistered(r.Error) {
					unregistered++
				}
			}
			s.logger.Warn("Some push deliveries failed",
				zap.Int("failed", resp.FailureCount),
				zap.Int("unregistered", unregistered))
		}
	}
	if delivered == 0 && lastErr != nil {
		return 0, fmt.Errorf("sending push notifications: %w", lastErr)
	}
	return delivered, nil
}
