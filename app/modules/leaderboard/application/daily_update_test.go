package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	sd "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
)

// ab12cdRows is a Wednesday in room AB12CD: carol has the best single, bob the best mean of five.
func ab12cdRows() []statisticsdb.DailyStatistics {
	return []statisticsdb.DailyStatistics{
		statRow("AB12CD", "alice", testDay, sd.Time(8.11), sd.Time(11.00), sd.Absent()),
		statRow("AB12CD", "bob", testDay, sd.Time(9.02), sd.Time(10.50), sd.Absent()),
		statRow("AB12CD", "carol", testDay, sd.Time(7.55), sd.Absent(), sd.Absent()),
	}
}

func TestRunDailyUpdateScoresRoom(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeLeaderboardRepo()
	stats := NewFakeStatisticsRepo(ab12cdRows()...)
	publisher := &FakePublisher{}
	service := newTestService(repo, stats, publisher)

	report, err := service.RunDailyUpdate(ctx, testDay.Add(15*time.Hour))
	require.NoError(t, err)

	trace := repo.Trace()
	assert.Equal(t, "AcquireRoomDayLock", trace[0])
	assert.Equal(t, "UpsertDayOutcome", trace[len(trace)-1])

	assert.Equal(t, "2024-03-06", report.Day)
	assert.Equal(t, "2024-03-04", report.WeekStart)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Rooms, 1)

	room := report.Rooms[0]
	assert.Equal(t, RoomStatusApplied, room.Status)
	assert.Equal(t, 3, room.Players)
	assert.Equal(t, 7, room.PointsAwarded)
	assert.Equal(t, []leaderboarddomain.PlayerAward{
		{PlayerID: "carol", Points: 4},
		{PlayerID: "bob", Points: 3},
		{PlayerID: "alice", Points: 0},
	}, room.Awards)

	assert.Equal(t, 4, repo.Points("AB12CD", "carol", testWeek))
	assert.Equal(t, 3, repo.Points("AB12CD", "bob", testWeek))
	assert.Equal(t, 0, repo.Points("AB12CD", "alice", testWeek))

	assert.Equal(t, 4, stats.DailyPoints("AB12CD", "carol"))
	assert.Equal(t, 3, stats.DailyPoints("AB12CD", "bob"))
	assert.Equal(t, 0, stats.DailyPoints("AB12CD", "alice"))

	best, err := service.GetWeeklyBest(ctx, "AB12CD", testDay)
	require.NoError(t, err)
	require.NotNil(t, best.BestSingle)
	assert.Equal(t, leaderboarddomain.MetricBest{Seconds: 7.55, PlayerID: "carol"}, *best.BestSingle)
	require.NotNil(t, best.MeanOf5)
	assert.Equal(t, leaderboarddomain.MetricBest{Seconds: 10.50, PlayerID: "bob"}, *best.MeanOf5)
	assert.Nil(t, best.MeanOf12)

	topics, payloads := publisher.Published()
	require.Equal(t, []string{DefaultReportTopic}, topics)
	assert.Same(t, report, payloads[0])
}

func TestRunDailyUpdateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeLeaderboardRepo()
	service := newTestService(repo, NewFakeStatisticsRepo(ab12cdRows()...), nil)

	first, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusApplied, first.Rooms[0].Status)

	second, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusSkipped, second.Rooms[0].Status)
	assert.Zero(t, second.Rooms[0].PointsAwarded)

	assert.Equal(t, 4, repo.Points("AB12CD", "carol", testWeek))
	assert.Equal(t, 3, repo.Points("AB12CD", "bob", testWeek))
}

func TestRunDailyUpdateRecalculatesChangedDay(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeLeaderboardRepo()
	stats := NewFakeStatisticsRepo(ab12cdRows()...)
	service := newTestService(repo, stats, nil)

	_, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)

	// A late correction hands the mean of five to alice.
	require.NoError(t, stats.UpsertDailyStatistics(ctx, nil, &statisticsdb.DailyStatistics{
		RoomCode: "AB12CD", PlayerID: "bob", Day: testDay,
		BestSingle: sd.Time(9.02), MeanOf5: sd.Time(12.00),
	}))

	report, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusRecalculated, report.Rooms[0].Status)
	assert.Equal(t, 7, report.Rooms[0].PointsAwarded)

	assert.Equal(t, 4, repo.Points("AB12CD", "carol", testWeek))
	assert.Equal(t, 3, repo.Points("AB12CD", "alice", testWeek))
	assert.Equal(t, 0, repo.Points("AB12CD", "bob", testWeek))
	assert.Equal(t, 0, stats.DailyPoints("AB12CD", "bob"))
	assert.Equal(t, 3, stats.DailyPoints("AB12CD", "alice"))

	// Bests never regress: bob's earlier 10.50 stays the week's mean of five.
	best, err := service.GetWeeklyBest(ctx, "AB12CD", testWeek)
	require.NoError(t, err)
	assert.Equal(t, 10.50, best.MeanOf5.Seconds)
}

func TestRunDailyUpdateIsolatesRoomFailures(t *testing.T) {
	ctx := context.Background()
	var rows []statisticsdb.DailyStatistics
	for _, room := range []string{"R1", "R2", "R3"} {
		rows = append(rows,
			statRow(room, "p1", testDay, sd.Time(9), sd.Absent(), sd.Absent()),
			statRow(room, "p2", testDay, sd.Time(10), sd.Absent(), sd.Absent()),
		)
	}
	storeErr := errors.New("connection reset")
	repo := NewFakeLeaderboardRepo()
	repo.IncrementEntriesFunc = func(ctx context.Context, db bun.IDB, entries []*leaderboarddb.Entry) error {
		if entries[0].RoomCode == "R2" {
			return storeErr
		}
		return nil
	}
	service := newTestService(repo, NewFakeStatisticsRepo(rows...), nil)
	service.cfg.RoomConcurrency = 3

	report, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)
	require.Len(t, report.Rooms, 3)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "R2", failed[0].RoomCode)
	assert.Contains(t, failed[0].Error, "connection reset")

	var failure *StoreWriteFailure
	require.True(t, errors.As(failed[0].Err, &failure))
	assert.Equal(t, "R2", failure.RoomCode)
	assert.ErrorIs(t, failed[0].Err, storeErr)

	for _, code := range []string{"R1", "R3"} {
		room, ok := report.Room(code)
		require.True(t, ok)
		assert.Equal(t, RoomStatusApplied, room.Status)
		assert.Equal(t, 4, repo.Points(code, "p1", testWeek))
	}
	assert.Equal(t, 0, repo.Points("R2", "p1", testWeek))
	assert.Equal(t, 8, report.TotalPoints())
}

func TestRunDailyUpdateRecoversRoomPanic(t *testing.T) {
	repo := NewFakeLeaderboardRepo()
	repo.AcquireRoomDayLockFunc = func(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error {
		if roomCode == "R2" {
			panic("lock table corrupted")
		}
		return nil
	}
	service := newTestService(repo, NewFakeStatisticsRepo(
		statRow("R1", "p1", testDay, sd.Time(9), sd.Absent(), sd.Absent()),
		statRow("R2", "p1", testDay, sd.Time(9), sd.Absent(), sd.Absent()),
	), nil)

	report, err := service.RunDailyUpdate(context.Background(), testDay)
	require.NoError(t, err)

	r1, _ := report.Room("R1")
	r2, _ := report.Room("R2")
	assert.Equal(t, RoomStatusApplied, r1.Status)
	assert.Equal(t, RoomStatusFailed, r2.Status)
	assert.Contains(t, r2.Error, "lock table corrupted")
}

func TestRunDailyUpdateDataUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		stats *FakeStatisticsRepo
		opts  []RunOption
	}{
		{
			name:  "no rows at all",
			stats: NewFakeStatisticsRepo(),
		},
		{
			name:  "rows only on another day",
			stats: NewFakeStatisticsRepo(statRow("AB12CD", "alice", testDay.AddDate(0, 0, -1), sd.Time(8), sd.Absent(), sd.Absent())),
		},
		{
			name:  "rows only in another room",
			stats: NewFakeStatisticsRepo(ab12cdRows()...),
			opts:  []RunOption{WithRoom("ZZ99ZZ")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeLeaderboardRepo()
			publisher := &FakePublisher{}
			service := newTestService(repo, tt.stats, publisher)

			report, err := service.RunDailyUpdate(context.Background(), testDay, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataUnavailable)
			assert.Nil(t, report)
			assert.Empty(t, repo.Trace())

			topics, _ := publisher.Published()
			assert.Empty(t, topics)
		})
	}
}

func TestRunDailyUpdateLoadFailure(t *testing.T) {
	stats := NewFakeStatisticsRepo()
	stats.ListDailyStatisticsFunc = func(ctx context.Context, db bun.IDB, filter statisticsdb.Filter) ([]statisticsdb.DailyStatistics, error) {
		return nil, errors.New("database is locked")
	}
	service := newTestService(NewFakeLeaderboardRepo(), stats, nil)

	_, err := service.RunDailyUpdate(context.Background(), testDay)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestRunDailyUpdateWithRoom(t *testing.T) {
	repo := NewFakeLeaderboardRepo()
	rows := append(ab12cdRows(), statRow("QQ11QQ", "zed", testDay, sd.Time(5), sd.Absent(), sd.Absent()))
	service := newTestService(repo, NewFakeStatisticsRepo(rows...), nil)

	report, err := service.RunDailyUpdate(context.Background(), testDay, WithRoom(" ab12cd "))
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", report.RoomCode)
	require.Len(t, report.Rooms, 1)
	assert.Equal(t, "AB12CD", report.Rooms[0].RoomCode)
	assert.Equal(t, 0, repo.Points("QQ11QQ", "zed", testWeek))
}

func TestRunDailyUpdatePublishFailureDoesNotFailRun(t *testing.T) {
	publisher := &FakePublisher{
		PublishFn: func(ctx context.Context, topic string, payload any) error {
			return errors.New("nats: no responders")
		},
	}
	service := newTestService(NewFakeLeaderboardRepo(), NewFakeStatisticsRepo(ab12cdRows()...), publisher)

	report, err := service.RunDailyUpdate(context.Background(), testDay)
	require.NoError(t, err)
	assert.Empty(t, report.Failed())
}

func TestRunDailyUpdateManyRoomsConcurrently(t *testing.T) {
	var rows []statisticsdb.DailyStatistics
	for i := range 20 {
		room := fmt.Sprintf("RM%04d", i)
		rows = append(rows,
			statRow(room, "a", testDay, sd.Time(9), sd.Time(11), sd.Time(12)),
			statRow(room, "b", testDay, sd.Time(8), sd.Time(12), sd.Time(13)),
		)
	}
	repo := NewFakeLeaderboardRepo()
	service := newTestService(repo, NewFakeStatisticsRepo(rows...), nil)
	service.cfg.RoomConcurrency = 8

	report, err := service.RunDailyUpdate(context.Background(), testDay)
	require.NoError(t, err)
	require.Len(t, report.Rooms, 20)
	assert.Equal(t, "RM0000", report.Rooms[0].RoomCode)
	assert.Equal(t, "RM0019", report.Rooms[19].RoomCode)
	for _, room := range report.Rooms {
		assert.Equal(t, RoomStatusApplied, room.Status, room.RoomCode)
		assert.Equal(t, 6, repo.Points(room.RoomCode, "a", testWeek))
		assert.Equal(t, 4, repo.Points(room.RoomCode, "b", testWeek))
	}
}

func TestRunDailyUpdateAccumulatesWeekAndKeepsBests(t *testing.T) {
	ctx := context.Background()
	thursday := testDay.AddDate(0, 0, 1)
	nextMonday := testWeek.AddDate(0, 0, 7)

	repo := NewFakeLeaderboardRepo()
	stats := NewFakeStatisticsRepo(append(ab12cdRows(),
		statRow("AB12CD", "alice", thursday, sd.Time(8.00), sd.Time(10.00), sd.Absent()),
		statRow("AB12CD", "bob", thursday, sd.Time(7.10), sd.Time(10.20), sd.Absent()),
		statRow("AB12CD", "alice", nextMonday, sd.Time(9.00), sd.Absent(), sd.Absent()),
	)...)
	service := newTestService(repo, stats, nil)

	_, err := service.RunDailyUpdate(ctx, testDay)
	require.NoError(t, err)
	report, err := service.RunDailyUpdate(ctx, thursday)
	require.NoError(t, err)

	// bob takes best single (4), alice mean of five (3).
	assert.Equal(t, 7, repo.Points("AB12CD", "bob", testWeek))
	assert.Equal(t, 3, repo.Points("AB12CD", "alice", testWeek))
	assert.Equal(t, 4, repo.Points("AB12CD", "carol", testWeek))

	changes := report.Rooms[0].BestChanges
	require.Len(t, changes, 2)
	assert.Equal(t, leaderboarddomain.MetricBestSingle, changes[0].Metric)
	assert.Equal(t, 7.10, changes[0].Current.Seconds)
	assert.Equal(t, 7.55, changes[0].Previous.Seconds)

	_, err = service.RunDailyUpdate(ctx, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.Points("AB12CD", "alice", nextMonday))
	assert.Equal(t, 3, repo.Points("AB12CD", "alice", testWeek))

	nextBest, err := service.GetWeeklyBest(ctx, "AB12CD", nextMonday)
	require.NoError(t, err)
	assert.Equal(t, 9.00, nextBest.BestSingle.Seconds)
}
