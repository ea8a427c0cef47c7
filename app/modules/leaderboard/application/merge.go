package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/uptrace/bun"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// ApplyAwards adds awards to the room's weekly ledger in one transaction.
func (s *LeaderboardService) ApplyAwards(ctx context.Context, weekStart time.Time, roomCode string, awards map[string]int) error {
	_, err := withTelemetry(s, ctx, "ApplyAwards", roomCode, func(ctx context.Context) (struct{}, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.applyAwardsInTx(ctx, db, leaderboarddomain.WeekStart(weekStart), roomCode, awards)
		})
	})
	return err
}

// WritebackDailyPoints stores the day's awards on the statistics rows.
func (s *LeaderboardService) WritebackDailyPoints(ctx context.Context, roomCode string, day time.Time, awards map[string]int) error {
	_, err := withTelemetry(s, ctx, "WritebackDailyPoints", roomCode, func(ctx context.Context) (struct{}, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.writebackInTx(ctx, db, roomCode, day, awards)
		})
	})
	return err
}

// UpdateBests merges candidates into the room's weekly best.
func (s *LeaderboardService) UpdateBests(ctx context.Context, weekStart time.Time, roomCode string, candidates []leaderboarddomain.StatRow) ([]leaderboarddomain.BestChange, error) {
	return withTelemetry(s, ctx, "UpdateBests", roomCode, func(ctx context.Context) ([]leaderboarddomain.BestChange, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]leaderboarddomain.BestChange, error) {
			return s.updateBestsInTx(ctx, db, leaderboarddomain.WeekStart(weekStart), roomCode, candidates)
		})
	})
}

func (s *LeaderboardService) applyAwardsInTx(ctx context.Context, db bun.IDB, weekStart time.Time, roomCode string, awards map[string]int) error {
	if len(awards) == 0 {
		return nil
	}
	players := sortedPlayers(awards)
	// Stable key order keeps concurrent upserts from deadlocking on row locks.
	entries := make([]*leaderboarddb.Entry, 0, len(players))
	for _, player := range players {
		entries = append(entries, &leaderboarddb.Entry{
			RoomCode:     roomCode,
			PlayerID:     player,
			WeekStart:    weekStart,
			WeeklyPoints: awards[player],
		})
	}
	if err := s.repo.IncrementEntries(ctx, db, entries); err != nil {
		return fmt.Errorf("failed to apply awards: %w", err)
	}
	return nil
}

func (s *LeaderboardService) writebackInTx(ctx context.Context, db bun.IDB, roomCode string, day time.Time, awards map[string]int) error {
	start, end := statisticsdomain.DayWindow(day)
	for _, player := range sortedPlayers(awards) {
		if err := s.stats.SetDailyPoints(ctx, db, roomCode, player, start, end, awards[player]); err != nil {
			return fmt.Errorf("failed to write back daily points for %s: %w", player, err)
		}
	}
	return nil
}

func (s *LeaderboardService) updateBestsInTx(ctx context.Context, db bun.IDB, weekStart time.Time, roomCode string, candidates []leaderboarddomain.StatRow) ([]leaderboarddomain.BestChange, error) {
	current := leaderboarddomain.WeeklyBest{}
	record, err := s.repo.GetWeeklyBest(ctx, db, roomCode, weekStart)
	switch {
	case errors.Is(err, leaderboarddb.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load weekly best: %w", err)
	default:
		current = fromRecord(record)
	}

	merged, changes := leaderboarddomain.MergeWeeklyBest(current, candidates)
	if len(changes) == 0 {
		return nil, nil
	}
	if err := s.repo.UpsertWeeklyBest(ctx, db, toRecord(roomCode, weekStart, merged)); err != nil {
		return nil, fmt.Errorf("failed to store weekly best: %w", err)
	}
	return changes, nil
}

// recordDailyAwards stores the per-player audit rows used by a later rollback.
func (s *LeaderboardService) recordDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day, weekStart time.Time, score leaderboarddomain.ScoreResult) error {
	categories := make(map[string][]string)
	for _, w := range score.Winners {
		categories[w.PlayerID] = append(categories[w.PlayerID], string(w.Metric))
	}
	awards := make([]*leaderboarddb.DailyAward, 0, len(score.Awards))
	for _, player := range sortedPlayers(score.Awards) {
		awards = append(awards, &leaderboarddb.DailyAward{
			RoomCode:   roomCode,
			PlayerID:   player,
			Day:        day,
			WeekStart:  weekStart,
			Points:     score.Awards[player],
			Categories: strings.Join(categories[player], ","),
		})
	}
	if err := s.repo.BulkInsertDailyAwards(ctx, db, awards); err != nil {
		return fmt.Errorf("failed to record daily awards: %w", err)
	}
	return nil
}

func sortedPlayers(awards map[string]int) []string {
	players := make([]string, 0, len(awards))
	for p := range awards {
		players = append(players, p)
	}
	slices.Sort(players)
	return players
}

func fromRecord(r *leaderboarddb.WeeklyBestRecord) leaderboarddomain.WeeklyBest {
	pick := func(v *float64, p *string) *leaderboarddomain.MetricBest {
		if v == nil {
			return nil
		}
		best := &leaderboarddomain.MetricBest{Seconds: *v}
		if p != nil {
			best.PlayerID = *p
		}
		return best
	}
	return leaderboarddomain.WeeklyBest{
		BestSingle: pick(r.BestSingle, r.BestSinglePlayer),
		MeanOf5:    pick(r.MeanOf5, r.MeanOf5Player),
		MeanOf12:   pick(r.MeanOf12, r.MeanOf12Player),
	}
}

func toRecord(roomCode string, weekStart time.Time, w leaderboarddomain.WeeklyBest) *leaderboarddb.WeeklyBestRecord {
	rec := &leaderboarddb.WeeklyBestRecord{RoomCode: roomCode, WeekStart: weekStart}
	split := func(b *leaderboarddomain.MetricBest) (*float64, *string) {
		if b == nil {
			return nil, nil
		}
		v, p := b.Seconds, b.PlayerID
		return &v, &p
	}
	rec.BestSingle, rec.BestSinglePlayer = split(w.BestSingle)
	rec.MeanOf5, rec.MeanOf5Player = split(w.MeanOf5)
	rec.MeanOf12, rec.MeanOf12Player = split(w.MeanOf12)
	return rec
}
