package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/usecase/view"
)

// TaskLister is the read-only slice of the store the reporter needs.
type TaskLister interface {
	Data(ctx context.Context) ([]domain.Task, []string, error)
}

// ReporterConfig controls how often the counts are logged.
type ReporterConfig struct {
	Interval time.Duration
}

// StatsReporter periodically logs status counts over the full collection.
// It only reads; the store itself owns no timers.
type StatsReporter struct {
	store  TaskLister
	logger *zap.Logger
	cron   *cron.Cron
	cfg    ReporterConfig
}

func NewStatsReporter(store TaskLister, logger *zap.Logger, cfg ReporterConfig) *StatsReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}

	sr := &StatsReporter{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
		cfg:    cfg,
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := sr.cron.AddFunc(schedule, sr.report); err != nil {
		logger.Error("stats schedule rejected", zap.String("schedule", schedule), zap.Error(err))
	}

	return sr
}

// Start launches the cron scheduler.
func (sr *StatsReporter) Start() {
	if sr == nil || sr.cron == nil {
		return
	}
	sr.cron.Start()
}

// Stop halts the scheduler, waiting for an in-flight report to finish.
func (sr *StatsReporter) Stop(ctx context.Context) {
	if sr == nil || sr.cron == nil {
		return
	}
	stopCtx := sr.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (sr *StatsReporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tasks, assignees, err := sr.store.Data(ctx)
	if err != nil {
		sr.logger.Warn("stats report skipped", zap.Error(err))
		return
	}

	stats := view.ComputeStats(tasks)
	sr.logger.Info("task stats",
		zap.Int("total", stats.Total),
		zap.Int("new", stats.New),
		zap.Int("in_progress", stats.InProgress),
		zap.Int("done", stats.Done),
		zap.Int("assignees", len(assignees)),
	)
}
