// File: internal/admin/service.go
package admin

import (
	"context"
	"fmt"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/disease"
	"krishipredict_backend/internal/market"
	"krishipredict_backend/internal/notification"
	"krishipredict_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// ListLimit caps every admin list.
	ListLimit = 100
	// ActivityLimit is the length of the dashboard activity feed.
	ActivityLimit = 10
)

// UserStore is the slice of user storage the back-office uses.
type UserStore interface {
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportStore is the slice of disease report storage the back-office uses.
type ReportStore interface {
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]disease.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListingStore is the slice of the market service the back-office uses.
type ListingStore interface {
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]market.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Broadcaster sends admin notices.
type Broadcaster interface {
	Broadcast(ctx context.Context, req notification.BroadcastRequest) (*notification.Notification, error)
}

// ActivityItem is one dashboard activity line.
type ActivityItem struct {
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Stats is the dashboard summary.
type Stats struct {
	Users          int64          `json:"users"`
	Reports        int64          `json:"reports"`
	Listings       int64          `json:"listings"`
	RecentActivity []ActivityItem `json:"recentActivity"`
}

// Service defines the back-office operations.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	Users(ctx context.Context) ([]user.User, error)
	Reports(ctx context.Context) ([]disease.Report, error)
	Listings(ctx context.Context) ([]market.Listing, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	DeleteReport(ctx context.Context, id uuid.UUID) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	Broadcast(ctx context.Context, req notification.BroadcastRequest) (*notification.Notification, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	users       UserStore
	reports     ReportStore
	listings    ListingStore
	broadcaster Broadcaster
	activity    activity.Recorder
	logger      *zap.Logger
}

// NewService creates a new admin service.
func NewService(users UserStore, reports ReportStore, listings ListingStore, broadcaster Broadcaster, recorder activity.Recorder, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		users:       users,
		reports:     reports,
		listings:    listings,
		broadcaster: broadcaster,
		activity:    recorder,
		logger:      logger.Named("AdminService"),
	}
}

// Stats gathers the counts and the activity feed concurrently.
func (s *ServiceImplementation) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var entries []activity.Entry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { stats.Users, err = s.users.Count(gctx); return })
	g.Go(func() (err error) { stats.Reports, err = s.reports.Count(gctx); return })
	g.Go(func() (err error) { stats.Listings, err = s.listings.Count(gctx); return })
	g.Go(func() (err error) { entries, err = s.activity.Recent(gctx, ActivityLimit); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gathering admin stats: %w", err)
	}

	stats.RecentActivity = make([]ActivityItem, 0, len(entries))
	for _, e := range entries {
		stats.RecentActivity = append(stats.RecentActivity, ActivityItem{Kind: e.Kind, Text: e.Message, Time: e.CreatedAt})
	}
	return &stats, nil
}

func (s *ServiceImplementation) Users(ctx context.Context) ([]user.User, error) {
	return s.users.ListRecent(ctx, ListLimit)
}

func (s *ServiceImplementation) Reports(ctx context.Context) ([]disease.Report, error) {
	return s.reports.ListRecent(ctx, ListLimit)
}

func (s *ServiceImplementation) Listings(ctx context.Context) ([]market.Listing, error) {
	return s.listings.ListRecent(ctx, ListLimit)
}

func (s *ServiceImplementation) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.deleted(ctx, "user", id, s.users.Delete(ctx, id))
}

func (s *ServiceImplementation) DeleteReport(ctx context.Context, id uuid.UUID) error {
	return s.deleted(ctx, "disease report", id, s.reports.Delete(ctx, id))
}

func (s *ServiceImplementation) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return s.deleted(ctx, "listing", id, s.listings.Delete(ctx, id))
}

func (s *ServiceImplementation) deleted(ctx context.Context, what string, id uuid.UUID, err error) error {
	if err != nil {
		return err
	}
	s.logger.Info("Admin deleted record", zap.String("kind", what), zap.String("id", id.String()))
	s.activity.Record(ctx, activity.KindAdminDelete, fmt.Sprintf("Admin removed %s %s", what, id))
	return nil
}

func (s *ServiceImplementation) Broadcast(ctx context.Context, req notification.BroadcastRequest) (*notification.Notification, error) {
	return s.broadcaster.Broadcast(ctx, req)
}
