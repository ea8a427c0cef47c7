package leaderboardservice

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
)

// Service defines the leaderboard engine and its read side.
type Service interface {
	// RunDailyUpdate scores every room's statistics for the UTC day containing day
	// and merges the awards into the weekly ledger and weekly bests.
	RunDailyUpdate(ctx context.Context, day time.Time, opts ...RunOption) (*Report, error)

	// ApplyAwards adds points to the weekly ledger of a room.
	ApplyAwards(ctx context.Context, weekStart time.Time, roomCode string, awards map[string]int) error
	// WritebackDailyPoints stores each player's award on their statistics row for day.
	WritebackDailyPoints(ctx context.Context, roomCode string, day time.Time, awards map[string]int) error
	// UpdateBests merges candidate values into a room's weekly best.
	UpdateBests(ctx context.Context, weekStart time.Time, roomCode string, candidates []leaderboarddomain.StatRow) ([]leaderboarddomain.BestChange, error)

	GetWeeklyLeaderboard(ctx context.Context, roomCode string, week time.Time) ([]RankedEntry, error)
	GetDailyLeaderboard(ctx context.Context, roomCode string, day time.Time) ([]DailyStanding, error)
	GetWeeklyBest(ctx context.Context, roomCode string, week time.Time) (*WeeklyBestView, error)
	GetWeeklyPlayerSummaries(ctx context.Context, roomCode string, week time.Time) ([]PlayerWeekSummary, error)
	GetWeeklyOverview(ctx context.Context, roomCode string, week time.Time) (*WeeklyOverview, error)

	// RenderWeeklyChart renders the week's points as a PNG bar chart.
	RenderWeeklyChart(ctx context.Context, roomCode string, week time.Time) ([]byte, error)
	// ExportWeekly renders the week's leaderboard, bests and player summaries as an XLSX workbook.
	ExportWeekly(ctx context.Context, roomCode string, week time.Time) ([]byte, error)
}

// EventPublisher publishes JSON payloads on a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
