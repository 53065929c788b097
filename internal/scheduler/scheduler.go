package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/pmelhus/homequest/internal/leaderboard"
	"github.com/pmelhus/homequest/internal/task"
)

// Config holds the cron expressions for the two maintenance jobs: the
// recurring-task sweep nightly at 22:00 and the leaderboard rollover
// Saturday at 19:00, server time.
type Config struct {
	TaskResetSchedule        string
	LeaderboardResetSchedule string
}

const (
	DefaultTaskResetSchedule        = "0 22 * * *"
	DefaultLeaderboardResetSchedule = "0 19 * * 6"
)

// Scheduler drives the two scheduled maintenance entry points: the nightly
// recurring-task sweep and the weekly leaderboard period rollover.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(cfg Config, tasks *task.Engine, board *leaderboard.Service, logger *slog.Logger) (*Scheduler, error) {
	if cfg.TaskResetSchedule == "" {
		cfg.TaskResetSchedule = DefaultTaskResetSchedule
	}
	if cfg.LeaderboardResetSchedule == "" {
		cfg.LeaderboardResetSchedule = DefaultLeaderboardResetSchedule
	}

	c := cron.New()

	if _, err := c.AddFunc(cfg.TaskResetSchedule, func() {
		if _, err := tasks.ResetRecurring(); err != nil {
			logger.Error("nightly task reset", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.LeaderboardResetSchedule, func() {
		if _, err := board.ResetPeriod(); err != nil {
			logger.Error("leaderboard period reset", "error", err)
		}
	}); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started")
	s.cron.Start()
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
