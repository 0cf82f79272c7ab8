// Package cron runs a job on a cron schedule.
//
// The server uses it to re-check CRM reference data periodically:
//
//	trigger, err := cron.NewCronTrigger("*/15 * * * *", probe.Run, logger)
//	if err != nil {
//	    return err
//	}
//	trigger.Start(ctx) // returns immediately, runs until ctx is cancelled
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// Job is the work run on each tick.
type Job func(ctx context.Context) error

// CronTrigger executes a Job according to a cron schedule. Ticks that fire
// while the previous run is still going are not queued.
type CronTrigger struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger
	now      func() time.Time
}

// NewCronTrigger creates a new CronTrigger with the given cron specification.
// The spec follows standard cron format (5 fields: minute, hour, day, month, weekday).
// Returns ErrInvalidCronSpec if the specification cannot be parsed.
func NewCronTrigger(spec string, job Job, logger *slog.Logger) (*CronTrigger, error) {
	if job == nil {
		return nil, errors.New("cron job is required")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CronTrigger{
		spec:     spec,
		schedule: schedule,
		job:      job,
		logger:   logger.With("cron", spec),
		now:      time.Now,
	}, nil
}

// Spec returns the schedule the trigger was created with.
func (ct *CronTrigger) Spec() string {
	return ct.spec
}

// Start launches a goroutine that runs the job according to the cron schedule.
// Returns immediately. The goroutine exits when ctx is cancelled.
func (ct *CronTrigger) Start(ctx context.Context) {
	go ct.loop(ctx)
}

// NextRun returns the next scheduled run time from now.
func (ct *CronTrigger) NextRun() time.Time {
	return ct.schedule.Next(ct.now())
}

func (ct *CronTrigger) loop(ctx context.Context) {
	for {
		next := ct.NextRun()
		wait := next.Sub(ct.now())
		ct.logger.Debug("waiting for next scheduled run", "next_run", next, "wait_duration", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			ct.logger.Info("cron trigger shutting down")
			return
		case <-timer.C:
			ct.execute(ctx)
		}
	}
}

func (ct *CronTrigger) execute(ctx context.Context) {
	ct.logger.Debug("starting scheduled run")
	if err := ct.job(ctx); err != nil {
		ct.logger.Warn("scheduled run completed with error", "error", err)
		return
	}
	ct.logger.Debug("scheduled run completed successfully")
}
