package leaderboardservice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
)

// GetWeeklyLeaderboard returns the room's ledger for the week containing week, ranked by points.
func (s *LeaderboardService) GetWeeklyLeaderboard(ctx context.Context, roomCode string, week time.Time) ([]RankedEntry, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "GetWeeklyLeaderboard", roomCode, func(ctx context.Context) ([]RankedEntry, error) {
		return s.weeklyLeaderboard(ctx, roomCode, leaderboarddomain.WeekStart(week))
	})
}

func (s *LeaderboardService) weeklyLeaderboard(ctx context.Context, roomCode string, weekStart time.Time) ([]RankedEntry, error) {
	entries, err := s.repo.GetWeekEntries(ctx, s.idb(), roomCode, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly entries: %w", err)
	}
	slices.SortFunc(entries, func(a, b leaderboarddb.Entry) int {
		if c := cmp.Compare(b.WeeklyPoints, a.WeeklyPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	scores := make([]int, len(entries))
	for i, e := range entries {
		scores[i] = e.WeeklyPoints
	}
	ranks := leaderboarddomain.CompetitionRanks(scores)

	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{Rank: ranks[i], PlayerID: e.PlayerID, WeeklyPoints: e.WeeklyPoints}
	}
	return out, nil
}

// GetDailyLeaderboard returns the room's statistics for a day ranked by awarded points.
func (s *LeaderboardService) GetDailyLeaderboard(ctx context.Context, roomCode string, day time.Time) ([]DailyStanding, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "GetDailyLeaderboard", roomCode, func(ctx context.Context) ([]DailyStanding, error) {
		start, end := statisticsdomain.DayWindow(day)
		rows, err := s.stats.ListDailyStatistics(ctx, s.idb(), statisticsdb.Filter{Start: start, End: end, RoomCode: roomCode})
		if err != nil {
			return nil, fmt.Errorf("failed to load daily statistics: %w", err)
		}
		slices.SortFunc(rows, func(a, b statisticsdb.DailyStatistics) int {
			if c := cmp.Compare(b.DailyPoints, a.DailyPoints); c != 0 {
				return c
			}
			return cmp.Compare(a.PlayerID, b.PlayerID)
		})

		scores := make([]int, len(rows))
		for i, r := range rows {
			scores[i] = r.DailyPoints
		}
		ranks := leaderboarddomain.CompetitionRanks(scores)

		out := make([]DailyStanding, len(rows))
		for i, r := range rows {
			out[i] = DailyStanding{
				Rank:        ranks[i],
				PlayerID:    r.PlayerID,
				DailyPoints: r.DailyPoints,
				BestSingle:  r.BestSingle,
				MeanOf5:     r.MeanOf5,
				MeanOf12:    r.MeanOf12,
			}
		}
		return out, nil
	})
}

// GetWeeklyBest returns the room-wide best per metric. It wraps leaderboarddb.ErrNotFound
// when nothing was recorded for the week.
func (s *LeaderboardService) GetWeeklyBest(ctx context.Context, roomCode string, week time.Time) (*WeeklyBestView, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "GetWeeklyBest", roomCode, func(ctx context.Context) (*WeeklyBestView, error) {
		return s.weeklyBest(ctx, roomCode, leaderboarddomain.WeekStart(week))
	})
}

func (s *LeaderboardService) weeklyBest(ctx context.Context, roomCode string, weekStart time.Time) (*WeeklyBestView, error) {
	record, err := s.repo.GetWeeklyBest(ctx, s.idb(), roomCode, weekStart)
	if err != nil {
		return nil, err
	}
	return &WeeklyBestView{
		RoomCode:   roomCode,
		WeekStart:  weekStart.Format(statisticsdomain.DateLayout),
		WeeklyBest: fromRecord(record),
	}, nil
}

// GetWeeklyPlayerSummaries returns each player's personal bests over the week with their points.
func (s *LeaderboardService) GetWeeklyPlayerSummaries(ctx context.Context, roomCode string, week time.Time) ([]PlayerWeekSummary, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "GetWeeklyPlayerSummaries", roomCode, func(ctx context.Context) ([]PlayerWeekSummary, error) {
		return s.playerSummaries(ctx, roomCode, leaderboarddomain.WeekStart(week))
	})
}

func (s *LeaderboardService) playerSummaries(ctx context.Context, roomCode string, weekStart time.Time) ([]PlayerWeekSummary, error) {
	rows, err := s.stats.ListDailyStatistics(ctx, s.idb(), statisticsdb.Filter{
		Start:    weekStart,
		End:      weekStart.AddDate(0, 0, 7),
		RoomCode: roomCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly statistics: %w", err)
	}
	entries, err := s.repo.GetWeekEntries(ctx, s.idb(), roomCode, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly entries: %w", err)
	}

	byPlayer := make(map[string]*PlayerWeekSummary)
	summary := func(player string) *PlayerWeekSummary {
		if ps, ok := byPlayer[player]; ok {
			return ps
		}
		ps := &PlayerWeekSummary{PlayerID: player}
		byPlayer[player] = ps
		return ps
	}
	for _, r := range rows {
		ps := summary(r.PlayerID)
		ps.DaysPlayed++
		ps.BestSingle = better(ps.BestSingle, r.BestSingle)
		ps.MeanOf5 = better(ps.MeanOf5, r.MeanOf5)
		ps.MeanOf12 = better(ps.MeanOf12, r.MeanOf12)
	}
	for _, e := range entries {
		summary(e.PlayerID).WeeklyPoints = e.WeeklyPoints
	}

	out := make([]PlayerWeekSummary, 0, len(byPlayer))
	for _, ps := range byPlayer {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(a, b PlayerWeekSummary) int {
		if c := cmp.Compare(b.WeeklyPoints, a.WeeklyPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out, nil
}

// GetWeeklyOverview gathers the ledger, weekly best and player summaries of a week.
func (s *LeaderboardService) GetWeeklyOverview(ctx context.Context, roomCode string, week time.Time) (*WeeklyOverview, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "GetWeeklyOverview", roomCode, func(ctx context.Context) (*WeeklyOverview, error) {
		return s.weeklyOverview(ctx, roomCode, leaderboarddomain.WeekStart(week))
	})
}

func (s *LeaderboardService) weeklyOverview(ctx context.Context, roomCode string, weekStart time.Time) (*WeeklyOverview, error) {
	entries, err := s.weeklyLeaderboard(ctx, roomCode, weekStart)
	if err != nil {
		return nil, err
	}
	best, err := s.weeklyBest(ctx, roomCode, weekStart)
	if err != nil && !errors.Is(err, leaderboarddb.ErrNotFound) {
		return nil, fmt.Errorf("failed to load weekly best: %w", err)
	}
	players, err := s.playerSummaries(ctx, roomCode, weekStart)
	if err != nil {
		return nil, err
	}
	return &WeeklyOverview{
		RoomCode:  roomCode,
		WeekStart: weekStart,
		Entries:   entries,
		Best:      best,
		Players:   players,
	}, nil
}

// better keeps the better of two reported values. Invalid values are ignored.
func better(current, candidate statisticsdomain.Result) statisticsdomain.Result {
	if candidate.IsInvalid() || candidate.IsAbsent() {
		return current
	}
	if statisticsdomain.Compare(candidate, current) < 0 {
		return candidate
	}
	return current
}
