package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/cashrecon/internal/config"
	"github.com/mamadbah2/cashrecon/internal/domain/models"
	"github.com/mamadbah2/cashrecon/internal/service/sales"
	"github.com/mamadbah2/cashrecon/internal/service/whatsapp"
)

// Reconciler runs and records a reconciliation over a period.
type Reconciler interface {
	RunReconciliation(ctx context.Context, period sales.Period, override models.RulesOverride) (models.ReconciliationResult, error)
}

// Summarizer renders a result for the manager.
type Summarizer interface {
	DailySummary(result models.ReconciliationResult, start, end time.Time) string
}

// Scheduler runs the daily reconciliation on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	summarizer Summarizer
	notifier   whatsapp.Notifier
	cfg        config.ReportingConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a new scheduler instance bound to the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reconciler Reconciler, summarizer Summarizer, notifier whatsapp.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		reconciler: reconciler,
		summarizer: summarizer,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyReconciliation); err != nil {
		return fmt.Errorf("schedule daily reconciliation: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReconciliation() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("daily reconciliation failed", zap.Error(err))
	}
}

// RunOnce reconciles the lookback window ending today and notifies the manager.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	end := s.now()
	start := end.AddDate(0, 0, -(s.cfg.LookbackDays - 1))
	period := sales.Period{From: start, To: end}

	s.logger.Info("running daily reconciliation",
		zap.String("from", start.Format(models.DateLayout)),
		zap.String("to", end.Format(models.DateLayout)))

	result, err := s.reconciler.RunReconciliation(ctx, period, models.RulesOverride{})
	if err != nil {
		if !errors.Is(err, sales.ErrHistoryNotRecorded) {
			return err
		}
		s.logger.Warn("reconciliation not recorded in history", zap.Error(err))
	}

	message := s.summarizer.DailySummary(result, start, end)
	if err := s.notifier.NotifyManager(ctx, message); err != nil {
		if errors.Is(err, whatsapp.ErrNotificationsDisabled) {
			s.logger.Info("reconciliation summary not sent", zap.String("status", string(result.Overall.Status)))
			return nil
		}
		return fmt.Errorf("send reconciliation summary: %w", err)
	}

	s.logger.Info("daily reconciliation sent", zap.String("status", string(result.Overall.Status)))
	return nil
}
