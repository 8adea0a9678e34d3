package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// otpPurger removes reset records created before cutoff.
type otpPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// startCronJobs schedules the hourly reset-code cleanup for stores without a
// native TTL. The caller owns Shutdown.
func startCronJobs(ctx context.Context, purger otpPurger, retention time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			purgeResetCodes(ctx, purger, time.Now().UTC().Add(-retention))
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("purge stale password reset codes"),
	)
	if err != nil {
		return nil, err
	}
	s.Start()
	return s, nil
}

func purgeResetCodes(ctx context.Context, purger otpPurger, cutoff time.Time) {
	n, err := purger.PurgeExpired(ctx, cutoff)
	if err != nil {
		slog.Warn("could not purge stale reset codes", "err", err)
		return
	}
	if n > 0 {
		slog.Info("purged stale reset codes", "count", n)
	}
}
