package leaderboardqueue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// LocalScheduler runs the daily update in process. It serves stores River
// cannot use; runs are not persisted, so a missed tick is not replayed.
type LocalScheduler struct {
	schedule DailySchedule
	updater  DailyUpdater
	logger   *slog.Logger
	now      func() time.Time
	after    func(d time.Duration) <-chan time.Time
}

// NewLocalScheduler creates a scheduler firing at schedule.
func NewLocalScheduler(logger *slog.Logger, updater DailyUpdater, schedule DailySchedule) *LocalScheduler {
	return &LocalScheduler{
		schedule: schedule,
		updater:  updater,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}
}

// Run blocks until ctx is done, scoring the previous day at each tick.
func (s *LocalScheduler) Run(ctx context.Context) error {
	for {
		now := s.now()
		next := s.schedule.Next(now)
		s.logger.InfoContext(ctx, "Next daily update scheduled", slog.Time("at", next))

		select {
		case <-ctx.Done():
			return nil
		case <-s.after(next.Sub(now)):
		}

		s.runOnce(ctx)
	}
}

func (s *LocalScheduler) runOnce(ctx context.Context) {
	day := statisticsdomain.DayStart(s.now()).AddDate(0, 0, -1)
	logger := s.logger.With(slog.String("day", day.Format(statisticsdomain.DateLayout)))

	report, err := s.updater.RunDailyUpdate(ctx, day)
	switch {
	case errors.Is(err, leaderboardservice.ErrDataUnavailable):
		logger.InfoContext(ctx, "No statistics for day")
	case err != nil:
		logger.ErrorContext(ctx, "Scheduled daily update failed", slog.Any("error", err))
	default:
		logger.InfoContext(ctx, "Scheduled daily update finished",
			slog.Int("rooms", len(report.Rooms)),
			slog.Int("failed_rooms", len(report.Failed())),
			slog.Int("points", report.TotalPoints()),
		)
	}
}
