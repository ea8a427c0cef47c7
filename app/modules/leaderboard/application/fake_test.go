package leaderboardservice

import (
	"context"
	"slices"
	"sync"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

type FakeLeaderboardRepo struct {
	mu    sync.Mutex
	trace []string

	entries  map[string]*leaderboarddb.Entry
	bests    map[string]*leaderboarddb.WeeklyBestRecord
	awards   map[string][]leaderboarddb.DailyAward
	outcomes map[string]*leaderboarddb.DayOutcome

	IncrementEntriesFunc      func(ctx context.Context, db bun.IDB, entries []*leaderboarddb.Entry) error
	UpsertWeeklyBestFunc      func(ctx context.Context, db bun.IDB, record *leaderboarddb.WeeklyBestRecord) error
	BulkInsertDailyAwardsFunc func(ctx context.Context, db bun.IDB, awards []*leaderboarddb.DailyAward) error
	UpsertDayOutcomeFunc      func(ctx context.Context, db bun.IDB, outcome *leaderboarddb.DayOutcome) error
	AcquireRoomDayLockFunc    func(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{
		trace:    []string{},
		entries:  map[string]*leaderboarddb.Entry{},
		bests:    map[string]*leaderboarddb.WeeklyBestRecord{},
		awards:   map[string][]leaderboarddb.DailyAward{},
		outcomes: map[string]*leaderboarddb.DayOutcome{},
	}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func dateKey(parts ...any) string {
	key := ""
	for _, p := range parts {
		switch v := p.(type) {
		case time.Time:
			key += v.UTC().Format(time.DateOnly) + "|"
		case string:
			key += v + "|"
		}
	}
	return key
}

// --- Repository Interface Implementation ---

func (f *FakeLeaderboardRepo) IncrementEntries(ctx context.Context, db bun.IDB, entries []*leaderboarddb.Entry) error {
	f.record("IncrementEntries")
	if f.IncrementEntriesFunc != nil {
		if err := f.IncrementEntriesFunc(ctx, db, entries); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		key := dateKey(e.RoomCode, e.PlayerID, e.WeekStart)
		if existing, ok := f.entries[key]; ok {
			existing.WeeklyPoints += e.WeeklyPoints
			continue
		}
		stored := *e
		f.entries[key] = &stored
	}
	return nil
}

func (f *FakeLeaderboardRepo) DecrementEntry(ctx context.Context, db bun.IDB, roomCode, playerID string, weekStart time.Time, points int) error {
	f.record("DecrementEntry")
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[dateKey(roomCode, playerID, weekStart)]; ok {
		e.WeeklyPoints = max(e.WeeklyPoints-points, 0)
	}
	return nil
}

func (f *FakeLeaderboardRepo) GetWeekEntries(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) ([]leaderboarddb.Entry, error) {
	f.record("GetWeekEntries")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []leaderboarddb.Entry
	for _, e := range f.entries {
		if e.RoomCode == roomCode && e.WeekStart.Equal(weekStart) {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b leaderboarddb.Entry) int {
		if a.WeeklyPoints != b.WeeklyPoints {
			return b.WeeklyPoints - a.WeeklyPoints
		}
		if a.PlayerID < b.PlayerID {
			return -1
		}
		return 1
	})
	return out, nil
}

func (f *FakeLeaderboardRepo) GetWeeklyBest(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) (*leaderboarddb.WeeklyBestRecord, error) {
	f.record("GetWeeklyBest")
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.bests[dateKey(roomCode, weekStart)]
	if !ok {
		return nil, leaderboarddb.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (f *FakeLeaderboardRepo) UpsertWeeklyBest(ctx context.Context, db bun.IDB, record *leaderboarddb.WeeklyBestRecord) error {
	f.record("UpsertWeeklyBest")
	if f.UpsertWeeklyBestFunc != nil {
		return f.UpsertWeeklyBestFunc(ctx, db, record)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *record
	f.bests[dateKey(record.RoomCode, record.WeekStart)] = &stored
	return nil
}

func (f *FakeLeaderboardRepo) BulkInsertDailyAwards(ctx context.Context, db bun.IDB, awards []*leaderboarddb.DailyAward) error {
	f.record("BulkInsertDailyAwards")
	if f.BulkInsertDailyAwardsFunc != nil {
		return f.BulkInsertDailyAwardsFunc(ctx, db, awards)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range awards {
		key := dateKey(a.RoomCode, a.Day)
		f.awards[key] = append(f.awards[key], *a)
	}
	return nil
}

func (f *FakeLeaderboardRepo) GetDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) ([]leaderboarddb.DailyAward, error) {
	f.record("GetDailyAwards")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.awards[dateKey(roomCode, day)]), nil
}

func (f *FakeLeaderboardRepo) DeleteDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error {
	f.record("DeleteDailyAwards")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.awards, dateKey(roomCode, day))
	return nil
}

func (f *FakeLeaderboardRepo) GetDayOutcome(ctx context.Context, db bun.IDB, roomCode string, day time.Time) (*leaderboarddb.DayOutcome, error) {
	f.record("GetDayOutcome")
	f.mu.Lock()
	defer f.mu.Unlock()
	outcome, ok := f.outcomes[dateKey(roomCode, day)]
	if !ok {
		return nil, nil
	}
	out := *outcome
	return &out, nil
}

func (f *FakeLeaderboardRepo) UpsertDayOutcome(ctx context.Context, db bun.IDB, outcome *leaderboarddb.DayOutcome) error {
	f.record("UpsertDayOutcome")
	if f.UpsertDayOutcomeFunc != nil {
		return f.UpsertDayOutcomeFunc(ctx, db, outcome)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *outcome
	f.outcomes[dateKey(outcome.RoomCode, outcome.Day)] = &stored
	return nil
}

func (f *FakeLeaderboardRepo) AcquireRoomDayLock(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error {
	f.record("AcquireRoomDayLock")
	if f.AcquireRoomDayLockFunc != nil {
		return f.AcquireRoomDayLockFunc(ctx, db, roomCode, day)
	}
	return nil
}

// --- Accessors for assertions ---

func (f *FakeLeaderboardRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Points returns the ledger value of a player for a week.
func (f *FakeLeaderboardRepo) Points(roomCode, playerID string, weekStart time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[dateKey(roomCode, playerID, weekStart)]; ok {
		return e.WeeklyPoints
	}
	return 0
}

// Ensure the fake actually satisfies the interface
var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)

// ------------------------
// Fake Statistics Repo
// ------------------------

type FakeStatisticsRepo struct {
	mu    sync.Mutex
	trace []string
	rows  []statisticsdb.DailyStatistics

	ListDailyStatisticsFunc func(ctx context.Context, db bun.IDB, filter statisticsdb.Filter) ([]statisticsdb.DailyStatistics, error)
	SetDailyPointsFunc      func(ctx context.Context, db bun.IDB, roomCode, playerID string, start, end time.Time, points int) error
}

func NewFakeStatisticsRepo(rows ...statisticsdb.DailyStatistics) *FakeStatisticsRepo {
	return &FakeStatisticsRepo{trace: []string{}, rows: rows}
}

func (f *FakeStatisticsRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStatisticsRepo) UpsertDailyStatistics(ctx context.Context, db bun.IDB, stats *statisticsdb.DailyStatistics) error {
	f.record("UpsertDailyStatistics")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		r := &f.rows[i]
		if r.RoomCode == stats.RoomCode && r.PlayerID == stats.PlayerID && r.Day.Equal(stats.Day) {
			points := r.DailyPoints
			*r = *stats
			r.DailyPoints = points
			return nil
		}
	}
	f.rows = append(f.rows, *stats)
	return nil
}

func (f *FakeStatisticsRepo) GetDailyStatistics(ctx context.Context, db bun.IDB, roomCode, playerID string, day time.Time) (*statisticsdb.DailyStatistics, error) {
	f.record("GetDailyStatistics")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.RoomCode == roomCode && r.PlayerID == playerID && r.Day.Equal(day) {
			out := r
			return &out, nil
		}
	}
	return nil, statisticsdb.ErrNotFound
}

func (f *FakeStatisticsRepo) ListDailyStatistics(ctx context.Context, db bun.IDB, filter statisticsdb.Filter) ([]statisticsdb.DailyStatistics, error) {
	f.record("ListDailyStatistics")
	if f.ListDailyStatisticsFunc != nil {
		return f.ListDailyStatisticsFunc(ctx, db, filter)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []statisticsdb.DailyStatistics
	for _, r := range f.rows {
		if r.Day.Before(filter.Start) || !r.Day.Before(filter.End) {
			continue
		}
		if filter.RoomCode != "" && r.RoomCode != filter.RoomCode {
			continue
		}
		if filter.PlayerID != "" && r.PlayerID != filter.PlayerID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *FakeStatisticsRepo) SetDailyPoints(ctx context.Context, db bun.IDB, roomCode, playerID string, start, end time.Time, points int) error {
	f.record("SetDailyPoints")
	if f.SetDailyPointsFunc != nil {
		return f.SetDailyPointsFunc(ctx, db, roomCode, playerID, start, end, points)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		r := &f.rows[i]
		if r.RoomCode == roomCode && r.PlayerID == playerID && !r.Day.Before(start) && r.Day.Before(end) {
			r.DailyPoints = points
		}
	}
	return nil
}

// DailyPoints returns the written back points of a row.
func (f *FakeStatisticsRepo) DailyPoints(roomCode, playerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.RoomCode == roomCode && r.PlayerID == playerID {
			return r.DailyPoints
		}
	}
	return 0
}

func (f *FakeStatisticsRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statisticsdb.Repository = (*FakeStatisticsRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	topics    []string
	payloads  []any
	PublishFn func(ctx context.Context, topic string, payload any) error
}

func (p *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	p.mu.Unlock()
	if p.PublishFn != nil {
		return p.PublishFn(ctx, topic, payload)
	}
	return nil
}

func (p *FakePublisher) Published() ([]string, []any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.topics), slices.Clone(p.payloads)
}

var _ EventPublisher = (*FakePublisher)(nil)
