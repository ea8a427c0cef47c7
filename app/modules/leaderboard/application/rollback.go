package leaderboardservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

// rollbackDay reverses the ledger effect of a previous scoring of this room and day.
// It subtracts the recorded awards from the weekly ledger and deletes the audit rows,
// so the forward pass that follows starts from a clean slate.
func (s *LeaderboardService) rollbackDay(ctx context.Context, db bun.IDB, roomCode string, day time.Time) (int, error) {
	awards, err := s.repo.GetDailyAwards(ctx, db, roomCode, day)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch daily awards for rollback: %w", err)
	}
	if len(awards) == 0 {
		return 0, nil
	}

	s.logger.InfoContext(ctx, "Rolling back points for day",
		slog.String("room_code", roomCode),
		slog.String("day", day.Format(time.DateOnly)),
		slog.Int("entries", len(awards)),
	)

	removed := 0
	for _, a := range awards {
		if a.Points == 0 {
			continue
		}
		if err := s.repo.DecrementEntry(ctx, db, roomCode, a.PlayerID, a.WeekStart, a.Points); err != nil {
			return 0, fmt.Errorf("failed to roll back ledger for player %s: %w", a.PlayerID, err)
		}
		removed += a.Points
	}

	if err := s.repo.DeleteDailyAwards(ctx, db, roomCode, day); err != nil {
		return 0, fmt.Errorf("failed to delete daily awards: %w", err)
	}
	return removed, nil
}
