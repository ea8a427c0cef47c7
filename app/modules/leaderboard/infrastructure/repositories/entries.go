package leaderboarddb

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// IncrementEntries upserts ledger rows, adding to weekly_points on conflict.
func (r *Impl) IncrementEntries(ctx context.Context, db bun.IDB, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if db == nil {
		db = r.db
	}
	now := time.Now().UTC()
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
	}
	_, err := db.NewInsert().
		Model(&entries).
		On("CONFLICT (room_code, player_id, week_start) DO UPDATE").
		Set("weekly_points = le.weekly_points + EXCLUDED.weekly_points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.IncrementEntries: %w", err)
	}
	return nil
}

// DecrementEntry removes points from a ledger row without going below zero.
func (r *Impl) DecrementEntry(ctx context.Context, db bun.IDB, roomCode, playerID string, weekStart time.Time, points int) error {
	if db == nil {
		db = r.db
	}
	_, err := db.NewUpdate().
		Model((*Entry)(nil)).
		Set("weekly_points = CASE WHEN weekly_points > ? THEN weekly_points - ? ELSE 0 END", points, points).
		Set("updated_at = ?", time.Now().UTC()).
		Where("room_code = ?", roomCode).
		Where("player_id = ?", playerID).
		Where("week_start = ?", weekStart).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.DecrementEntry: %w", err)
	}
	return nil
}

// GetWeekEntries returns the ledger rows of a room for a week.
func (r *Impl) GetWeekEntries(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) ([]Entry, error) {
	if db == nil {
		db = r.db
	}
	var entries []Entry
	err := db.NewSelect().
		Model(&entries).
		Where("room_code = ?", roomCode).
		Where("week_start = ?", weekStart).
		OrderExpr("weekly_points DESC, player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.GetWeekEntries: %w", err)
	}
	return entries, nil
}
