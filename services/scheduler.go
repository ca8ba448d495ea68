package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the periodic club jobs.
type Scheduler struct {
	sched  gocron.Scheduler
	logger *slog.Logger
}

// NewStreakScheduler registers the streak expiry job under cronSpec. The job
// runs in UTC, the same calendar the streaks are counted in.
func NewStreakScheduler(ctx context.Context, streaks StreakService, cronSpec string, logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronSpec, false),
		gocron.NewTask(func() {
			start := time.Now()
			n, err := streaks.ExpireStale(ctx, start)
			if err != nil {
				logger.ErrorContext(ctx, "[Scheduler] streak expiry failed", slog.Int("reset", n), slog.Any("error", err))
				return
			}
			logger.InfoContext(ctx, "[Scheduler] streaks expired",
				slog.Int("reset", n), slog.Duration("took", time.Since(start)))
		}),
		gocron.WithName("streak-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register streak expiry job %q: %w", cronSpec, err)
	}

	return &Scheduler{sched: sched, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.sched.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
