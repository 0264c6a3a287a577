// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/queuetrace/queuetrace/internal/store"
)

// Scheduler runs the periodic autosave job. The dataset is already persisted
// after every mutation; the autosave is crash protection for long-lived
// sessions.
type Scheduler struct {
	cron     *cron.Cron
	store    *store.Store
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler saving on the given cron schedule.
func NewScheduler(st *store.Store, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		store:    st,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.autosave)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("autosave_schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.SaveNow(ctx); err != nil {
		s.logger.Error("autosave failed", slog.Any("error", err))
		return
	}
	s.logger.Debug("autosave completed")
}
