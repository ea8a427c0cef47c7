package statisticsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// UpsertDailyStatistics inserts or updates a row keyed by (room, player, day).
func (r *Impl) UpsertDailyStatistics(ctx context.Context, db bun.IDB, stats *DailyStatistics) error {
	if db == nil {
		db = r.db
	}
	now := time.Now().UTC()
	if stats.CreatedAt.IsZero() {
		stats.CreatedAt = now
	}
	stats.UpdatedAt = now

	_, err := db.NewInsert().
		Model(stats).
		On("CONFLICT (room_code, player_id, day) DO UPDATE").
		Set("best_single = EXCLUDED.best_single").
		Set("mean_of5 = EXCLUDED.mean_of5").
		Set("mean_of12 = EXCLUDED.mean_of12").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("statisticsdb.UpsertDailyStatistics: %w", err)
	}
	return nil
}

// GetDailyStatistics retrieves a single row.
func (r *Impl) GetDailyStatistics(ctx context.Context, db bun.IDB, roomCode, playerID string, day time.Time) (*DailyStatistics, error) {
	if db == nil {
		db = r.db
	}
	stats := new(DailyStatistics)
	err := db.NewSelect().
		Model(stats).
		Where("room_code = ?", roomCode).
		Where("player_id = ?", playerID).
		Where("day = ?", day).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("statisticsdb.GetDailyStatistics: %w", err)
	}
	return stats, nil
}

// ListDailyStatistics retrieves rows in a half-open day range.
func (r *Impl) ListDailyStatistics(ctx context.Context, db bun.IDB, filter Filter) ([]DailyStatistics, error) {
	if db == nil {
		db = r.db
	}
	var rows []DailyStatistics
	q := db.NewSelect().
		Model(&rows).
		Where("day >= ?", filter.Start).
		Where("day < ?", filter.End)
	if filter.RoomCode != "" {
		q = q.Where("room_code = ?", filter.RoomCode)
	}
	if filter.PlayerID != "" {
		q = q.Where("player_id = ?", filter.PlayerID)
	}
	err := q.OrderExpr("room_code ASC, day ASC, player_id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("statisticsdb.ListDailyStatistics: %w", err)
	}
	return rows, nil
}

// SetDailyPoints records the points awarded for the day on the source row.
func (r *Impl) SetDailyPoints(ctx context.Context, db bun.IDB, roomCode, playerID string, start, end time.Time, points int) error {
	if db == nil {
		db = r.db
	}
	_, err := db.NewUpdate().
		Model((*DailyStatistics)(nil)).
		Set("daily_points = ?", points).
		Set("updated_at = ?", time.Now().UTC()).
		Where("room_code = ?", roomCode).
		Where("player_id = ?", playerID).
		Where("day >= ?", start).
		Where("day < ?", end).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("statisticsdb.SetDailyPoints: %w", err)
	}
	return nil
}
