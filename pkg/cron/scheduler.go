// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/batch"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	runner   *batch.Runner
	watchDir string
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler watching dir on the given cron
// schedule.
func NewScheduler(runner *batch.Runner, dir, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		runner:   runner,
		watchDir: dir,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.ingestWatchDir)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("watch_dir", s.watchDir),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the watch directory sweep (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.ingestWatchDir()
}

// ingestWatchDir sweeps the watch directory for weekly exports. Re-ingesting
// files already processed is harmless, inserts are idempotent per week.
func (s *Scheduler) ingestWatchDir() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("starting watch directory sweep", slog.String("dir", s.watchDir))

	runs, err := s.runner.IngestDir(ctx, s.watchDir)
	if err != nil {
		s.logger.Error("watch directory sweep failed", slog.Any("error", err))
		return
	}

	ingested := 0
	failed := 0
	for _, run := range runs {
		if run.Error != "" {
			failed++
			continue
		}
		ingested += run.Result.Inserted
	}

	s.logger.Info("watch directory sweep completed",
		slog.Int("weeks", len(runs)),
		slog.Int("facts_inserted", ingested),
		slog.Int("weeks_failed", failed),
	)
}
