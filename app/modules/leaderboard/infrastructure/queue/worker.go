package leaderboardqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// DailyUpdater is the slice of the leaderboard service the worker drives.
type DailyUpdater interface {
	RunDailyUpdate(ctx context.Context, day time.Time, opts ...leaderboardservice.RunOption) (*leaderboardservice.Report, error)
}

// DailyUpdateWorker runs RunDailyUpdate for a queued day.
//
// A day without statistics cancels the job. Failed rooms fail the attempt so
// River retries it; rooms that already succeeded are skipped on the retry.
type DailyUpdateWorker struct {
	river.WorkerDefaults[DailyUpdateJob]
	updater DailyUpdater
	logger  *slog.Logger
}

// NewDailyUpdateWorker creates the worker.
func NewDailyUpdateWorker(logger *slog.Logger, updater DailyUpdater) *DailyUpdateWorker {
	return &DailyUpdateWorker{updater: updater, logger: logger}
}

// Timeout allows for large days with many rooms.
func (w *DailyUpdateWorker) Timeout(*river.Job[DailyUpdateJob]) time.Duration {
	return 10 * time.Minute
}

func (w *DailyUpdateWorker) Work(ctx context.Context, job *river.Job[DailyUpdateJob]) error {
	logger := w.logger.With(
		slog.Int64("job_id", job.ID),
		slog.String("day", job.Args.Day),
		slog.String("room_code", job.Args.RoomCode),
		slog.Int("attempt", job.Attempt),
	)

	day, err := statisticsdomain.ParseDay(job.Args.Day)
	if err != nil {
		logger.ErrorContext(ctx, "Discarding daily update job with invalid day", slog.Any("error", err))
		return river.JobCancel(err)
	}

	var opts []leaderboardservice.RunOption
	if job.Args.RoomCode != "" {
		opts = append(opts, leaderboardservice.WithRoom(job.Args.RoomCode))
	}

	report, err := w.updater.RunDailyUpdate(ctx, day, opts...)
	if errors.Is(err, leaderboardservice.ErrDataUnavailable) {
		logger.WarnContext(ctx, "No statistics for day, cancelling job")
		return river.JobCancel(err)
	}
	if err != nil {
		return fmt.Errorf("daily update failed: %w", err)
	}

	if failed := report.Failed(); len(failed) > 0 {
		errs := make([]error, len(failed))
		for i, room := range failed {
			errs[i] = room.Err
		}
		logger.WarnContext(ctx, "Daily update finished with failed rooms",
			slog.Int("failed_rooms", len(failed)),
			slog.Int("rooms", len(report.Rooms)),
		)
		return fmt.Errorf("%d of %d rooms failed: %w", len(failed), len(report.Rooms), errors.Join(errs...))
	}

	logger.InfoContext(ctx, "Daily update job completed",
		slog.String("run_id", report.RunID),
		slog.Int("rooms", len(report.Rooms)),
		slog.Int("points_awarded", report.TotalPoints()),
	)
	return nil
}
