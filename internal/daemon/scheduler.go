package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Scheduler wraps gocron scheduler for managing periodic runs. Jobs run in
// singleton mode: a tick that fires while the previous run is still busy is
// rescheduled, so runs never overlap.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(gocron.WithSingletonMode(gocron.LimitModeReschedule)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(_ context.Context) {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop waits for running jobs and shuts the scheduler down.
func (s *Scheduler) Stop(_ context.Context) error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs task every interval, starting immediately.
// Returns the job ID for later management.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", errors.ValidationError("schedule interval must be positive").
			WithContext("interval", interval.String()).
			Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job: %w", err)
	}
	return job.ID().String(), nil
}

// ScheduleCron runs task on a standard five-field cron expression.
func (s *Scheduler) ScheduleCron(name, expr string, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", errors.ValidationError("invalid cron expression").
			WithCause(err).
			WithContext("expression", expr).
			Build()
	}
	return job.ID().String(), nil
}
