package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GetWeeklyBest retrieves the weekly best record for a room.
func (r *Impl) GetWeeklyBest(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) (*WeeklyBestRecord, error) {
	if db == nil {
		db = r.db
	}
	record := new(WeeklyBestRecord)
	err := db.NewSelect().
		Model(record).
		Where("room_code = ?", roomCode).
		Where("week_start = ?", weekStart).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetWeeklyBest: %w", err)
	}
	return record, nil
}

// betterSet builds the SET clauses for one metric. Value and owner move
// together and only when the incoming value is strictly lower.
func betterSet(q *bun.InsertQuery, column string) *bun.InsertQuery {
	cond := fmt.Sprintf("EXCLUDED.%[1]s IS NOT NULL AND (wb.%[1]s IS NULL OR EXCLUDED.%[1]s < wb.%[1]s)", column)
	return q.
		Set(fmt.Sprintf("%[1]s = CASE WHEN %[2]s THEN EXCLUDED.%[1]s ELSE wb.%[1]s END", column, cond)).
		Set(fmt.Sprintf("%[1]s_player = CASE WHEN %[2]s THEN EXCLUDED.%[1]s_player ELSE wb.%[1]s_player END", column, cond))
}

// UpsertWeeklyBest inserts the record or merges it into the stored one per metric.
func (r *Impl) UpsertWeeklyBest(ctx context.Context, db bun.IDB, record *WeeklyBestRecord) error {
	if db == nil {
		db = r.db
	}
	record.UpdatedAt = time.Now().UTC()

	q := db.NewInsert().
		Model(record).
		On("CONFLICT (room_code, week_start) DO UPDATE")
	for _, column := range []string{"best_single", "mean_of5", "mean_of12"} {
		q = betterSet(q, column)
	}
	_, err := q.Set("updated_at = EXCLUDED.updated_at").Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.UpsertWeeklyBest: %w", err)
	}
	return nil
}
