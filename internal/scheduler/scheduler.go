package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/watermeter/internal/config"
	"github.com/mamadbah2/watermeter/internal/domain/models"
)

// AlertSource computes today's alerting homes.
type AlertSource interface {
	HomesWithAlerts(ctx context.Context) ([]models.HomeAlert, error)
}

// TrendSource computes the system-wide trend series.
type TrendSource interface {
	SystemTrends(ctx context.Context, windowDays int) ([]models.TrendPoint, error)
}

// DigestSender delivers the alert digest.
type DigestSender interface {
	SendDigest(ctx context.Context, day time.Time, alerts []models.HomeAlert) error
}

// TrendSink receives exported trend points.
type TrendSink interface {
	ExportTrends(ctx context.Context, points []models.TrendPoint) error
}

// Jobs groups the collaborators the scheduled jobs depend on. A nil sender or
// sink disables the matching job.
type Jobs struct {
	Alerts AlertSource
	Trends TrendSource
	Digest DigestSender
	Export TrendSink
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	jobs     Jobs
	cfg      config.SchedulerConfig
	window   int
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. Cron expressions are
// evaluated in loc.
func NewScheduler(cfg config.SchedulerConfig, trendWindowDays int, loc *time.Location, jobs Jobs, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		jobs:     jobs,
		cfg:      cfg,
		window:   trendWindowDays,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the enabled jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.jobs.Alerts != nil && s.jobs.Digest != nil {
		if _, err := s.cron.AddFunc(s.cfg.AlertSchedule, s.runAlertSweep); err != nil {
			return fmt.Errorf("schedule alert sweep %q: %w", s.cfg.AlertSchedule, err)
		}
		s.logger.Info("alert sweep scheduled", zap.String("schedule", s.cfg.AlertSchedule))
	} else {
		s.logger.Info("alert sweep disabled, no digest sender configured")
	}

	if s.jobs.Trends != nil && s.jobs.Export != nil {
		if _, err := s.cron.AddFunc(s.cfg.TrendExportCron, s.runTrendExport); err != nil {
			return fmt.Errorf("schedule trend export %q: %w", s.cfg.TrendExportCron, err)
		}
		s.logger.Info("trend export scheduled", zap.String("schedule", s.cfg.TrendExportCron))
	} else {
		s.logger.Info("trend export disabled, no exporter configured")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runAlertSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if err := s.AlertSweep(ctx); err != nil {
		s.logger.Error("alert sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) runTrendExport() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if err := s.TrendExport(ctx); err != nil {
		s.logger.Error("trend export failed", zap.Error(err))
	}
}

// AlertSweep evaluates today's alerts and sends the digest.
func (s *Scheduler) AlertSweep(ctx context.Context) error {
	s.logger.Info("running alert sweep")

	alerts, err := s.jobs.Alerts.HomesWithAlerts(ctx)
	if err != nil {
		return fmt.Errorf("evaluate alerts: %w", err)
	}

	if err := s.jobs.Digest.SendDigest(ctx, models.Today(s.now(), s.location), alerts); err != nil {
		return err
	}

	s.logger.Info("alert sweep finished", zap.Int("alerts", len(alerts)))
	return nil
}

// TrendExport computes the configured trend window and exports it.
func (s *Scheduler) TrendExport(ctx context.Context) error {
	s.logger.Info("running trend export", zap.Int("windowDays", s.window))

	points, err := s.jobs.Trends.SystemTrends(ctx, s.window)
	if err != nil {
		return fmt.Errorf("compute trends: %w", err)
	}

	return s.jobs.Export.ExportTrends(ctx, points)
}
