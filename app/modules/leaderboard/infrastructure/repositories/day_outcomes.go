package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BulkInsertDailyAwards records the awards of one room for one day.
func (r *Impl) BulkInsertDailyAwards(ctx context.Context, db bun.IDB, awards []*DailyAward) error {
	if len(awards) == 0 {
		return nil
	}
	if db == nil {
		db = r.db
	}
	now := time.Now().UTC()
	for _, a := range awards {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
	}
	_, err := db.NewInsert().Model(&awards).Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.BulkInsertDailyAwards: %w", err)
	}
	return nil
}

// GetDailyAwards retrieves the awards recorded for a room and day.
func (r *Impl) GetDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) ([]DailyAward, error) {
	if db == nil {
		db = r.db
	}
	var awards []DailyAward
	err := db.NewSelect().
		Model(&awards).
		Where("room_code = ?", roomCode).
		Where("day = ?", day).
		Order("player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.GetDailyAwards: %w", err)
	}
	return awards, nil
}

// DeleteDailyAwards deletes the awards recorded for a room and day.
func (r *Impl) DeleteDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error {
	if db == nil {
		db = r.db
	}
	_, err := db.NewDelete().
		Model((*DailyAward)(nil)).
		Where("room_code = ?", roomCode).
		Where("day = ?", day).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.DeleteDailyAwards: %w", err)
	}
	return nil
}

// GetDayOutcome retrieves the processed marker for a room and day.
func (r *Impl) GetDayOutcome(ctx context.Context, db bun.IDB, roomCode string, day time.Time) (*DayOutcome, error) {
	if db == nil {
		db = r.db
	}
	outcome := new(DayOutcome)
	err := db.NewSelect().
		Model(outcome).
		Where("room_code = ?", roomCode).
		Where("day = ?", day).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leaderboarddb.GetDayOutcome: %w", err)
	}
	return outcome, nil
}

// UpsertDayOutcome creates or updates the processed marker.
func (r *Impl) UpsertDayOutcome(ctx context.Context, db bun.IDB, outcome *DayOutcome) error {
	if db == nil {
		db = r.db
	}
	if outcome.ProcessedAt.IsZero() {
		outcome.ProcessedAt = time.Now().UTC()
	}
	_, err := db.NewInsert().
		Model(outcome).
		On("CONFLICT (room_code, day) DO UPDATE").
		Set("processing_hash = EXCLUDED.processing_hash").
		Set("players = EXCLUDED.players").
		Set("points = EXCLUDED.points").
		Set("processed_at = EXCLUDED.processed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.UpsertDayOutcome: %w", err)
	}
	return nil
}

// AcquireRoomDayLock takes a pg_advisory_xact_lock keyed by room and day.
// SQLite serialises writers itself so the call is skipped there.
func (r *Impl) AcquireRoomDayLock(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error {
	if db == nil {
		db = r.db
	}
	if db.Dialect().Name() != dialect.PG {
		return nil
	}
	key := "leaderboard:" + roomCode + ":" + day.UTC().Format("2006-01-02")
	_, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.AcquireRoomDayLock: %w", err)
	}
	return nil
}
