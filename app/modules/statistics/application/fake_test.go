package statisticsservice

import (
	"context"
	"time"

	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Statistics Repo
// ------------------------

type FakeStatisticsRepo struct {
	trace []string
	rows  map[string]*statisticsdb.DailyStatistics

	UpsertDailyStatisticsFunc func(ctx context.Context, db bun.IDB, stats *statisticsdb.DailyStatistics) error
}

func NewFakeStatisticsRepo() *FakeStatisticsRepo {
	return &FakeStatisticsRepo{
		trace: []string{},
		rows:  map[string]*statisticsdb.DailyStatistics{},
	}
}

func (f *FakeStatisticsRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func rowKey(roomCode, playerID string, day time.Time) string {
	return roomCode + "|" + playerID + "|" + day.UTC().Format(time.DateOnly)
}

// --- Repository Interface Implementation ---

func (f *FakeStatisticsRepo) UpsertDailyStatistics(ctx context.Context, db bun.IDB, stats *statisticsdb.DailyStatistics) error {
	f.record("UpsertDailyStatistics")
	if f.UpsertDailyStatisticsFunc != nil {
		return f.UpsertDailyStatisticsFunc(ctx, db, stats)
	}
	key := rowKey(stats.RoomCode, stats.PlayerID, stats.Day)
	stored := *stats
	if existing, ok := f.rows[key]; ok {
		stored.DailyPoints = existing.DailyPoints
	}
	f.rows[key] = &stored
	return nil
}

func (f *FakeStatisticsRepo) GetDailyStatistics(ctx context.Context, db bun.IDB, roomCode, playerID string, day time.Time) (*statisticsdb.DailyStatistics, error) {
	f.record("GetDailyStatistics")
	row, ok := f.rows[rowKey(roomCode, playerID, day)]
	if !ok {
		return nil, statisticsdb.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (f *FakeStatisticsRepo) ListDailyStatistics(ctx context.Context, db bun.IDB, filter statisticsdb.Filter) ([]statisticsdb.DailyStatistics, error) {
	f.record("ListDailyStatistics")
	var out []statisticsdb.DailyStatistics
	for _, row := range f.rows {
		if row.Day.Before(filter.Start) || !row.Day.Before(filter.End) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *FakeStatisticsRepo) SetDailyPoints(ctx context.Context, db bun.IDB, roomCode, playerID string, start, end time.Time, points int) error {
	f.record("SetDailyPoints")
	return nil
}

// --- Accessors for assertions ---

func (f *FakeStatisticsRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statisticsdb.Repository = (*FakeStatisticsRepo)(nil)
