// File: internal/jobs/retention.go
package jobs

import (
	"context"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ListingExpirer expires active listings created before a cutoff.
type ListingExpirer interface {
	ExpireStale(ctx context.Context, cutoff time.Time) (int, error)
}

// LivePricePurger deletes live prices reported before a cutoff.
type LivePricePurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPurger deletes notifications past their expiry.
type NotificationPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// RetentionJob expires stale listings and purges old live prices and
// expired notifications on a schedule.
type RetentionJob struct {
	listings      ListingExpirer
	prices        LivePricePurger
	notifications NotificationPurger
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	now           func() time.Time
}

// NewRetentionJob creates a new RetentionJob.
func NewRetentionJob(
	listings ListingExpirer,
	prices LivePricePurger,
	notifications NotificationPurger,
	logger *zap.Logger,
	cfg *config.Config,
) *RetentionJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)

	return &RetentionJob{
		listings:      listings,
		prices:        prices,
		notifications: notifications,
		logger:        logger.Named("RetentionJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
		now:           time.Now,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *RetentionJob) SetupAndStart() error {
	jobSpec := j.cfg.RetentionJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Retention job schedule not defined (RETENTION_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule retention job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Retention job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *RetentionJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	j.Run(ctx)
}

// Run performs one retention pass. A failing step is logged and does not
// stop the others.
func (j *RetentionJob) Run(ctx context.Context) {
	j.logger.Info("Starting retention job run...")
	now := j.now()

	if days := j.cfg.ListingLifespanDays; days > 0 {
		expired, err := j.listings.ExpireStale(ctx, now.AddDate(0, 0, -days))
		if err != nil {
			j.logger.Error("Expiring stale listings failed", zap.Error(err))
		} else {
			metrics.RetentionDeleted.WithLabelValues("market_listings").Add(float64(expired))
			j.logger.Info("Stale listings expired", zap.Int("listings_expired", expired))
		}
	}

	if days := j.cfg.LivePriceRetentionDays; days > 0 {
		purged, err := j.prices.PurgeOlderThan(ctx, now.AddDate(0, 0, -days))
		if err != nil {
			j.logger.Error("Purging live prices failed", zap.Error(err))
		} else {
			metrics.RetentionDeleted.WithLabelValues("live_prices").Add(float64(purged))
			j.logger.Info("Old live prices purged", zap.Int64("live_prices_purged", purged))
		}
	}

	purged, err := j.notifications.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("Purging expired notifications failed", zap.Error(err))
	} else {
		metrics.RetentionDeleted.WithLabelValues("notifications").Add(float64(purged))
		j.logger.Info("Expired notifications purged", zap.Int64("notifications_purged", purged))
	}
	j.logger.Info("Retention job run completed")
}

// Stop gracefully stops the cron scheduler.
func (j *RetentionJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping retention job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Retention job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Retention job scheduler stop timed out.")
		}
	}
}
