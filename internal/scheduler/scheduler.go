package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/config"
	"github.com/keystonepos/backend/internal/service/reporting"
	"github.com/keystonepos/backend/pkg/clients/alerts"
)

// Scheduler runs the nightly reporting job: daily summary export plus the
// low-stock webhook alert.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	alertsClient alerts.Client
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The alerts client may be
// nil when no webhook is configured.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, alertsClient alerts.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		reportingSvc: reportingSvc,
		alertsClient: alertsClient,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the nightly job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Reporting.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runDailyJob); err != nil {
		s.logger.Error("failed to schedule daily job", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runDailyJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.reportingSvc.DailySummary(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to build daily summary", zap.Error(err))
	} else {
		s.logger.Info("daily summary",
			zap.Int("sales", report.SaleCount),
			zap.Float64("total", report.Total))
		if err := s.reportingSvc.ExportDaily(ctx, *report); err != nil {
			s.logger.Error("failed to export daily report", zap.Error(err))
		}
	}

	if s.alertsClient == nil {
		return
	}

	items, err := s.reportingSvc.LowStock(ctx, s.cfg.Reporting.LowStockThreshold)
	if err != nil {
		s.logger.Error("low stock scan failed", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	if err := s.alertsClient.SendLowStockAlert(ctx, items); err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
	} else {
		s.logger.Info("low stock alert sent", zap.Int("items", len(items)))
	}
}
