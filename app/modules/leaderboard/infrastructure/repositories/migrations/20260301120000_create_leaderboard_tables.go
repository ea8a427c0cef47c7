package leaderboardmigrations

import (
	"context"
	"fmt"

	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating leaderboard tables...")

		models := []any{
			(*leaderboarddb.Entry)(nil),
			(*leaderboarddb.WeeklyBestRecord)(nil),
			(*leaderboarddb.DailyAward)(nil),
			(*leaderboarddb.DayOutcome)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		_, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_leaderboard_entries_week ON leaderboard_entries (room_code, week_start, weekly_points DESC)").Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw("CREATE INDEX IF NOT EXISTS idx_leaderboard_daily_awards_day ON leaderboard_daily_awards (room_code, day)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Leaderboard tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping leaderboard tables...")

		models := []any{
			(*leaderboarddb.DayOutcome)(nil),
			(*leaderboarddb.DailyAward)(nil),
			(*leaderboarddb.WeeklyBestRecord)(nil),
			(*leaderboarddb.Entry)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Leaderboard tables dropped successfully!")
		return nil
	})
}
