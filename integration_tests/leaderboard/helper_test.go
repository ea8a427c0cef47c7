//go:build integration

package leaderboard_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/cube-rooms/app"
	statisticsservice "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/application"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
	"github.com/Black-And-White-Club/cube-rooms/config"
)

var testDay = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.DSN = postgresDSN
	cfg.NATS.URL = natsURL
	cfg.JWT.Secret = "integration-secret"
	cfg.Scheduler.Enabled = false

	obs, err := observability.New(observability.LogConfig{Level: "error"}, nil)
	require.NoError(t, err)
	obs.Logger = slog.New(slog.DiscardHandler)

	a, err := app.NewApp(ctx, cfg, obs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, app.Migrate(ctx, cfg, a.DB, obs.Logger))
	_, err = a.DB.NewRaw(`TRUNCATE daily_statistics, leaderboard_entries, leaderboard_weekly_bests,
		leaderboard_daily_awards, leaderboard_day_outcomes`).Exec(ctx)
	require.NoError(t, err)
	return a
}

func ptr(s string) *string { return &s }

func seedAB12CD(t *testing.T, a *app.App) {
	t.Helper()
	rows := []statisticsservice.UpdateStatisticsCommand{
		{RoomCode: "AB12CD", PlayerID: "alice", Day: testDay, BestSingle: ptr("8.11"), MeanOf5: ptr("11.00")},
		{RoomCode: "AB12CD", PlayerID: "bob", Day: testDay, BestSingle: ptr("9.02"), MeanOf5: ptr("10.50")},
		{RoomCode: "AB12CD", PlayerID: "carol", Day: testDay, BestSingle: ptr("7.55")},
	}
	for _, cmd := range rows {
		_, err := a.StatisticsModule.StatisticsService.UpdateStatistics(context.Background(), cmd)
		require.NoError(t, err)
	}
}
