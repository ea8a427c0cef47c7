package leaderboardhandlers

import (
	"context"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
)

// FakeLeaderboardService implements leaderboardservice.Service with overridable hooks.
type FakeLeaderboardService struct {
	RunDailyUpdateFunc           func(ctx context.Context, day time.Time, opts ...leaderboardservice.RunOption) (*leaderboardservice.Report, error)
	GetWeeklyLeaderboardFunc     func(ctx context.Context, roomCode string, week time.Time) ([]leaderboardservice.RankedEntry, error)
	GetDailyLeaderboardFunc      func(ctx context.Context, roomCode string, day time.Time) ([]leaderboardservice.DailyStanding, error)
	GetWeeklyBestFunc            func(ctx context.Context, roomCode string, week time.Time) (*leaderboardservice.WeeklyBestView, error)
	GetWeeklyPlayerSummariesFunc func(ctx context.Context, roomCode string, week time.Time) ([]leaderboardservice.PlayerWeekSummary, error)
	GetWeeklyOverviewFunc        func(ctx context.Context, roomCode string, week time.Time) (*leaderboardservice.WeeklyOverview, error)
	RenderWeeklyChartFunc        func(ctx context.Context, roomCode string, week time.Time) ([]byte, error)
	ExportWeeklyFunc             func(ctx context.Context, roomCode string, week time.Time) ([]byte, error)

	runCalls int
}

func (f *FakeLeaderboardService) RunDailyUpdate(ctx context.Context, day time.Time, opts ...leaderboardservice.RunOption) (*leaderboardservice.Report, error) {
	f.runCalls++
	if f.RunDailyUpdateFunc != nil {
		return f.RunDailyUpdateFunc(ctx, day, opts...)
	}
	return &leaderboardservice.Report{Day: day.Format("2006-01-02")}, nil
}

func (f *FakeLeaderboardService) ApplyAwards(ctx context.Context, weekStart time.Time, roomCode string, awards map[string]int) error {
	return nil
}

func (f *FakeLeaderboardService) WritebackDailyPoints(ctx context.Context, roomCode string, day time.Time, awards map[string]int) error {
	return nil
}

func (f *FakeLeaderboardService) UpdateBests(ctx context.Context, weekStart time.Time, roomCode string, candidates []leaderboarddomain.StatRow) ([]leaderboarddomain.BestChange, error) {
	return nil, nil
}

func (f *FakeLeaderboardService) GetWeeklyLeaderboard(ctx context.Context, roomCode string, week time.Time) ([]leaderboardservice.RankedEntry, error) {
	if f.GetWeeklyLeaderboardFunc != nil {
		return f.GetWeeklyLeaderboardFunc(ctx, roomCode, week)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) GetDailyLeaderboard(ctx context.Context, roomCode string, day time.Time) ([]leaderboardservice.DailyStanding, error) {
	if f.GetDailyLeaderboardFunc != nil {
		return f.GetDailyLeaderboardFunc(ctx, roomCode, day)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) GetWeeklyBest(ctx context.Context, roomCode string, week time.Time) (*leaderboardservice.WeeklyBestView, error) {
	if f.GetWeeklyBestFunc != nil {
		return f.GetWeeklyBestFunc(ctx, roomCode, week)
	}
	return &leaderboardservice.WeeklyBestView{RoomCode: roomCode}, nil
}

func (f *FakeLeaderboardService) GetWeeklyPlayerSummaries(ctx context.Context, roomCode string, week time.Time) ([]leaderboardservice.PlayerWeekSummary, error) {
	if f.GetWeeklyPlayerSummariesFunc != nil {
		return f.GetWeeklyPlayerSummariesFunc(ctx, roomCode, week)
	}
	return nil, nil
}

func (f *FakeLeaderboardService) GetWeeklyOverview(ctx context.Context, roomCode string, week time.Time) (*leaderboardservice.WeeklyOverview, error) {
	if f.GetWeeklyOverviewFunc != nil {
		return f.GetWeeklyOverviewFunc(ctx, roomCode, week)
	}
	return &leaderboardservice.WeeklyOverview{RoomCode: roomCode, WeekStart: week}, nil
}

func (f *FakeLeaderboardService) RenderWeeklyChart(ctx context.Context, roomCode string, week time.Time) ([]byte, error) {
	if f.RenderWeeklyChartFunc != nil {
		return f.RenderWeeklyChartFunc(ctx, roomCode, week)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeLeaderboardService) ExportWeekly(ctx context.Context, roomCode string, week time.Time) ([]byte, error) {
	if f.ExportWeeklyFunc != nil {
		return f.ExportWeeklyFunc(ctx, roomCode, week)
	}
	return []byte("PK"), nil
}

var _ leaderboardservice.Service = (*FakeLeaderboardService)(nil)

// FakeEnqueuer records enqueued daily updates.
type FakeEnqueuer struct {
	EnqueueFunc func(ctx context.Context, day time.Time, roomCode string) (int64, error)
}

func (f *FakeEnqueuer) EnqueueDailyUpdate(ctx context.Context, day time.Time, roomCode string) (int64, error) {
	if f.EnqueueFunc != nil {
		return f.EnqueueFunc(ctx, day, roomCode)
	}
	return 1, nil
}

var _ Enqueuer = (*FakeEnqueuer)(nil)
