// File: internal/notification/service.go
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"

	"go.uber.org/zap"
)

const pushTimeout = 30 * time.Second

// Pusher delivers a notice to devices. It is nil when push is not configured.
type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

// TokenSource lists the push tokens of users in a district ("All" for every
// district) who accept notifications.
type TokenSource interface {
	FindPushTokens(ctx context.Context, district string) ([]string, error)
}

// Service defines the interface for notification operations.
type Service interface {
	Broadcast(ctx context.Context, req BroadcastRequest) (*Notification, error)
	Feed(ctx context.Context, district string) ([]Notification, error)
	PurgeExpired(ctx context.Context) (int64, error)
	// Wait blocks until in-flight push deliveries finish.
	Wait()
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	tokens   TokenSource
	pusher   Pusher
	activity activity.Recorder
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a new notification service. pusher may be nil.
func NewService(repo Repository, tokens TokenSource, pusher Pusher, recorder activity.Recorder, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	days := cfg.NotificationTTLDays
	if days <= 0 {
		days = 7
	}
	return &ServiceImplementation{
		repo:     repo,
		tokens:   tokens,
		pusher:   pusher,
		activity: recorder,
		ttl:      time.Duration(days) * 24 * time.Hour,
		logger:   logger.Named("NotificationService"),
		now:      time.Now,
	}
}

// Broadcast stores the notice for the in-app feed and pushes it to devices
// in the background.
func (s *ServiceImplementation) Broadcast(ctx context.Context, req BroadcastRequest) (*Notification, error) {
	n := req.toNotification(s.now(), s.ttl)
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.Error(err))
		return nil, common.ErrInternalServer.WithMessage("Failed")
	}
	s.activity.Record(ctx, activity.KindBroadcast, fmt.Sprintf("Broadcast to %s: %s", n.TargetDistrict, n.Title))

	if s.pusher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
			defer cancel()
			s.push(pushCtx, n)
		}()
	}
	return n, nil
}

func (s *ServiceImplementation) push(ctx context.Context, n *Notification) {
	tokens, err := s.tokens.FindPushTokens(ctx, n.TargetDistrict)
	if err != nil {
		s.logger.Error("Loading push tokens failed", zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}
	data := map[string]string{
		"notification_id": n.ID.String(),
		"type":            string(n.Type),
	}
	delivered, err := s.pusher.Push(ctx, tokens, n.Title, n.Message, data)
	if err != nil {
		s.logger.Error("Push delivery failed", zap.String("notification_id", n.ID.String()), zap.Error(err))
		return
	}
	s.logger.Info("Broadcast pushed",
		zap.String("notification_id", n.ID.String()),
		zap.Int("devices", len(tokens)),
		zap.Int("delivered", delivered))
}

func (s *ServiceImplementation) Feed(ctx context.Context, district string) ([]Notification, error) {
	return s.repo.Feed(ctx, district, s.now(), FeedLimit)
}

func (s *ServiceImplementation) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.PurgeExpired(ctx, s.now())
}

func (s *ServiceImplementation) Wait() {
	s.wg.Wait()
}
