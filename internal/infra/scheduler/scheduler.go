// Package scheduler drives the engine's periodic jobs: the
// due-notification tick, the hourly experiment-maintenance sweep and the
// daily retention cleanup.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"pulse/config"
	"pulse/internal/delivery"
	"pulse/internal/domain/service"
	"pulse/internal/usecase"

	"go.uber.org/fx"
)

// Job is one named periodic task. Run receives the trigger time from the
// injected clock.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, now time.Time) error
}

type loop struct {
	jobs   []Job
	clock  service.Clock
	logger *slog.Logger
	stop   chan struct{}
}

// Params holds dependencies for the scheduler loop, injected by Fx
type Params struct {
	fx.In

	Lc          fx.Lifecycle
	Config      *config.Config
	Logger      *slog.Logger
	Clock       service.Clock
	Scheduler   usecase.SchedulerUsecase
	Experiments usecase.ExperimentUsecase
	Analytics   usecase.AnalyticsUsecase
}

// New creates the periodic job loop as a Delivery. All jobs run on one
// goroutine, so a job run always completes before the next run of any
// job starts.
func New(params Params) (delivery.Delivery, error) {
	cfg := params.Config.Scheduler
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	jobs := []Job{
		{
			Name:     "process-due-notifications",
			Interval: cfg.TickInterval,
			Run:      params.Scheduler.ProcessDueNotifications,
		},
		{
			Name:     "experiment-maintenance",
			Interval: cfg.MaintenanceInterval,
			Run:      params.Experiments.CompleteFinishedTests,
		},
		{
			Name:     "retention-cleanup",
			Interval: cfg.CleanupInterval,
			Run: func(ctx context.Context, now time.Time) error {
				cutoff := now.Add(-retention)
				if err := params.Analytics.PurgeOlderThan(ctx, cutoff); err != nil {
					return err
				}
				if err := params.Experiments.PurgeResultsOlderThan(ctx, cutoff); err != nil {
					return err
				}

				return params.Scheduler.CleanupDelivered(ctx, cutoff)
			},
		},
	}

	l := &loop{
		jobs:   jobs,
		clock:  params.Clock,
		logger: params.Logger,
		stop:   make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			close(l.stop)

			return nil
		},
	})

	return l, nil
}

// Serve runs the job loop until the context is cancelled or the
// application shuts down. Jobs never overlap: the single goroutine
// finishes one run before selecting the next trigger.
func (l *loop) Serve(ctx context.Context) error {
	tickers := make([]*time.Ticker, len(l.jobs))
	for i, job := range l.jobs {
		tickers[i] = time.NewTicker(job.Interval)
		defer tickers[i].Stop()

		l.logger.Info("Periodic job registered",
			slog.String("job", job.Name),
			slog.Duration("interval", job.Interval),
		)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case <-tickers[0].C:
			l.runJob(ctx, l.jobs[0])
		case <-tickers[1].C:
			l.runJob(ctx, l.jobs[1])
		case <-tickers[2].C:
			l.runJob(ctx, l.jobs[2])
		}
	}
}

// runJob executes one job run. Job errors are logged and absorbed so a
// failing run never stops the loop.
func (l *loop) runJob(ctx context.Context, job Job) {
	now := l.clock.Now()
	if err := job.Run(ctx, now); err != nil {
		l.logger.Error("Periodic job failed",
			slog.String("job", job.Name),
			slog.Any("error", err),
		)
	}
}
