// File: internal/disease/service.go
package disease

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/metrics"
	"krishipredict_backend/internal/prediction"

	"go.uber.org/zap"
)

// saveTimeout bounds one background report insert.
const saveTimeout = 10 * time.Second

// Service runs disease detection and serves community alerts.
type Service interface {
	// Detect forwards body to the vision service and returns its answer
	// verbatim. A real sighting is saved in the background.
	Detect(ctx context.Context, body map[string]interface{}) ([]byte, error)
	Alerts(ctx context.Context, district string) ([]Alert, error)
	// Wait blocks until pending background saves finish.
	Wait()
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     Repository
	ml       prediction.Client
	activity activity.Recorder
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a new disease service.
func NewService(repo Repository, ml prediction.Client, recorder activity.Recorder, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		ml:       ml,
		activity: recorder,
		cfg:      cfg,
		logger:   logger.Named("DiseaseService"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ServiceImplementation) Detect(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	raw, err := s.ml.DetectRaw(ctx, body)
	if err != nil {
		return nil, err
	}

	var det detection
	if err := json.Unmarshal(raw, &det); err != nil {
		metrics.DiseaseAutoReportFailures.Inc()
		s.logger.Warn("Detection response could not be read, skipping report", zap.Error(err))
		return raw, nil
	}
	if det.ShouldAutoReport() {
		district, _ := body["district"].(string)
		report := det.toReport(s.cfg.DistrictOr(district), s.now())
		s.saveAsync(ctx, report)
	}
	return raw, nil
}

func (s *ServiceImplementation) saveAsync(ctx context.Context, report *Report) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()

		if err := s.repo.Create(saveCtx, report); err != nil {
			metrics.DiseaseAutoReportFailures.Inc()
			s.logger.Error("Failed to save disease report",
				zap.String("district", report.District),
				zap.String("disease", report.DiseaseName),
				zap.Error(err))
			return
		}
		metrics.DiseaseReportsSaved.Inc()
		s.activity.Record(saveCtx, activity.KindDiseaseReport,
			fmt.Sprintf("%s reported in %s", report.DiseaseName, report.District))
	}()
}

func (s *ServiceImplementation) Alerts(ctx context.Context, district string) ([]Alert, error) {
	return s.repo.AlertCounts(ctx, district, s.now().Add(-AlertWindow))
}

func (s *ServiceImplementation) Wait() {
	s.wg.Wait()
}
