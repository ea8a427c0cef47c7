package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
)

// RunDailyUpdate scores the UTC day containing day.
//
// Rooms are processed independently, each in its own transaction. A room that
// fails is rolled back and reported; it never stops its siblings. Re-running a
// day is safe: rooms already scored from the same rows are skipped and rooms
// whose rows changed are rolled back and re-scored.
func (s *LeaderboardService) RunDailyUpdate(ctx context.Context, day time.Time, opts ...RunOption) (*Report, error) {
	options := runOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	day = statisticsdomain.DayStart(day)

	return withTelemetry(s, ctx, "RunDailyUpdate", day.Format(statisticsdomain.DateLayout), func(ctx context.Context) (*Report, error) {
		return s.runDailyUpdate(ctx, day, options)
	})
}

func (s *LeaderboardService) runDailyUpdate(ctx context.Context, day time.Time, options runOptions) (*Report, error) {
	start, end := statisticsdomain.DayWindow(day)
	weekStart := leaderboarddomain.WeekStart(day)

	rows, err := s.stats.ListDailyStatistics(ctx, s.idb(), statisticsdb.Filter{
		Start:    start,
		End:      end,
		RoomCode: options.roomCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load daily statistics: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, day.Format(statisticsdomain.DateLayout))
	}

	groups := groupByRoom(rows)
	roomCodes := make([]string, 0, len(groups))
	for code := range groups {
		roomCodes = append(roomCodes, code)
	}
	slices.Sort(roomCodes)

	report := &Report{
		RunID:     uuid.NewString(),
		Day:       day.Format(statisticsdomain.DateLayout),
		WeekStart: weekStart.Format(statisticsdomain.DateLayout),
		RoomCode:  options.roomCode,
		StartedAt: s.now().UTC(),
		Rooms:     make([]RoomReport, len(roomCodes)),
	}

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.RoomConcurrency)
	for i, code := range roomCodes {
		g.Go(func() error {
			report.Rooms[i] = s.processRoom(ctx, day, weekStart, code, groups[code])
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now().UTC()

	for _, room := range report.Rooms {
		if s.metrics != nil {
			s.metrics.RecordRoomProcessed(ctx, room.RoomCode, string(room.Status))
			if room.PointsAwarded > 0 {
				s.metrics.RecordPointsAwarded(ctx, room.RoomCode, room.PointsAwarded)
			}
		}
	}

	s.logger.InfoContext(ctx, "Daily update finished",
		slog.String("run_id", report.RunID),
		slog.String("day", report.Day),
		slog.Int("rooms", len(report.Rooms)),
		slog.Int("failed_rooms", len(report.Failed())),
		slog.Int("points_awarded", report.TotalPoints()),
	)

	s.publishReport(ctx, report)
	return report, nil
}

// processRoom runs one room's transaction and turns any error or panic into a failed room report.
func (s *LeaderboardService) processRoom(ctx context.Context, day, weekStart time.Time, roomCode string, rows []leaderboarddomain.StatRow) (rr RoomReport) {
	rr = RoomReport{RoomCode: roomCode, Players: len(rows)}

	fail := func(err error) {
		failure := &StoreWriteFailure{RoomCode: roomCode, Err: err}
		rr = RoomReport{
			RoomCode: roomCode,
			Players:  len(rows),
			Status:   RoomStatusFailed,
			Error:    failure.Error(),
			Err:      failure,
		}
		s.logger.ErrorContext(ctx, "Room update failed",
			slog.String("room_code", roomCode),
			slog.String("day", day.Format(statisticsdomain.DateLayout)),
			slog.Any("error", err),
		)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
	}()

	outcome, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (RoomReport, error) {
		return s.processRoomInTx(ctx, db, day, weekStart, roomCode, rows)
	})
	if err != nil {
		fail(err)
		return rr
	}
	return outcome
}

// processRoomInTx scores, merges and tracks bests for one room, then marks the day processed.
func (s *LeaderboardService) processRoomInTx(ctx context.Context, db bun.IDB, day, weekStart time.Time, roomCode string, rows []leaderboarddomain.StatRow) (RoomReport, error) {
	rr := RoomReport{RoomCode: roomCode, Players: len(rows), Status: RoomStatusApplied}

	if err := s.repo.AcquireRoomDayLock(ctx, db, roomCode, day); err != nil {
		return rr, err
	}

	hash := leaderboarddomain.ComputeProcessingHash(rows)
	existing, err := s.repo.GetDayOutcome(ctx, db, roomCode, day)
	if err != nil {
		return rr, fmt.Errorf("failed to check processed marker: %w", err)
	}
	if existing != nil {
		if existing.ProcessingHash == hash {
			s.logger.InfoContext(ctx, "Room already processed for day, skipping",
				slog.String("room_code", roomCode),
				slog.String("day", day.Format(statisticsdomain.DateLayout)),
			)
			rr.Status = RoomStatusSkipped
			return rr, nil
		}
		if _, err := s.rollbackDay(ctx, db, roomCode, day); err != nil {
			return rr, err
		}
		rr.Status = RoomStatusRecalculated
	}

	score := leaderboarddomain.ScoreRoom(rows, s.points)
	for _, w := range score.Warnings {
		s.logger.WarnContext(ctx, "Excluded invalid metric value",
			slog.String("room_code", roomCode),
			slog.String("player_id", w.PlayerID),
			slog.String("metric", string(w.Metric)),
			slog.String("raw", w.Raw),
		)
	}

	if err := s.applyAwardsInTx(ctx, db, weekStart, roomCode, score.Awards); err != nil {
		return rr, err
	}
	if err := s.recordDailyAwards(ctx, db, roomCode, day, weekStart, score); err != nil {
		return rr, err
	}
	if err := s.writebackInTx(ctx, db, roomCode, day, score.Awards); err != nil {
		return rr, err
	}
	changes, err := s.updateBestsInTx(ctx, db, weekStart, roomCode, rows)
	if err != nil {
		return rr, err
	}

	if err := s.repo.UpsertDayOutcome(ctx, db, &leaderboarddb.DayOutcome{
		RoomCode:       roomCode,
		Day:            day,
		ProcessingHash: hash,
		Players:        len(rows),
		Points:         score.TotalPoints(),
		ProcessedAt:    s.now().UTC(),
	}); err != nil {
		return rr, fmt.Errorf("failed to mark day processed: %w", err)
	}

	rr.PointsAwarded = score.TotalPoints()
	rr.Awards = leaderboarddomain.SortedAwards(score.Awards)
	rr.Winners = score.Winners
	rr.BestChanges = changes
	rr.Warnings = score.Warnings
	return rr, nil
}

func (s *LeaderboardService) publishReport(ctx context.Context, report *Report) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.cfg.ReportTopic, report); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish daily update report",
			slog.String("run_id", report.RunID),
			slog.String("topic", s.cfg.ReportTopic),
			slog.Any("error", err),
		)
	}
}

func groupByRoom(rows []statisticsdb.DailyStatistics) map[string][]leaderboarddomain.StatRow {
	groups := make(map[string][]leaderboarddomain.StatRow)
	for _, r := range rows {
		groups[r.RoomCode] = append(groups[r.RoomCode], leaderboarddomain.StatRow{
			PlayerID:   r.PlayerID,
			BestSingle: r.BestSingle,
			MeanOf5:    r.MeanOf5,
			MeanOf12:   r.MeanOf12,
		})
	}
	return groups
}
