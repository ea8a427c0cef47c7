package statisticsmigrations

import (
	"context"
	"fmt"

	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating daily_statistics table...")

		if _, err := db.NewCreateTable().Model((*statisticsdb.DailyStatistics)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create daily_statistics table: %w", err)
		}
		_, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_daily_statistics_day_room ON daily_statistics (day, room_code)").Exec(ctx)
		if err != nil {
			return err
		}

		fmt.Println("daily_statistics table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping daily_statistics table...")

		if _, err := db.NewDropTable().Model((*statisticsdb.DailyStatistics)(nil)).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop daily_statistics table: %w", err)
		}

		fmt.Println("daily_statistics table dropped successfully!")
		return nil
	})
}
