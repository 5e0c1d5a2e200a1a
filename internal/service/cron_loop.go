package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CronLoop runs one job on a cron cadence. Each loop is independent: it
// computes the next trigger from wall-clock time, sleeps until then, runs
// the job, and repeats. A long job makes the next trigger immediately due
// rather than skipped. Resilience lives here, not in the jobs: a job that
// fails is simply retried by the next scheduled tick.
type CronLoop struct {
	name     string
	schedule cron.Schedule
	job      func(context.Context)
	logger   zerolog.Logger
}

// NewCronLoop parses a standard five-field cron expression.
func NewCronLoop(name, spec string, job func(context.Context), logger zerolog.Logger) (*CronLoop, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q for %s: %w", spec, name, err)
	}
	return &CronLoop{name: name, schedule: schedule, job: job, logger: logger}, nil
}

// Start blocks until ctx is cancelled.
func (l *CronLoop) Start(ctx context.Context) {
	l.logger.Info().Str("job", l.name).Msg("cron loop starting")

	next := l.schedule.Next(time.Now())
	for {
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info().Str("job", l.name).Msg("cron loop stopping")
			return
		case <-timer.C:
		}

		start := time.Now()
		l.job(ctx)
		l.logger.Debug().Str("job", l.name).
			Dur("elapsed", time.Since(start).Round(time.Millisecond)).
			Msg("job complete")

		// Advance from the scheduled time, not the wall clock. A job
		// that overran leaves next in the past, so overdue triggers
		// fire back-to-back instead of being skipped.
		next = l.schedule.Next(next)
	}
}
