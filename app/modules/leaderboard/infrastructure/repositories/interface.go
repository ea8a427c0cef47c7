package leaderboarddb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for leaderboard persistence.
// Every method accepts an optional bun.IDB so callers can run it inside a
// transaction; a nil db falls back to the repository's connection.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// IncrementEntries adds each entry's WeeklyPoints to the stored ledger row,
	// creating the row when it does not exist. Atomic per key.
	IncrementEntries(ctx context.Context, db bun.IDB, entries []*Entry) error

	// DecrementEntry subtracts points from a ledger row, flooring at zero.
	DecrementEntry(ctx context.Context, db bun.IDB, roomCode, playerID string, weekStart time.Time, points int) error

	// GetWeekEntries returns a room's ledger for a week ordered by points descending, then player id.
	GetWeekEntries(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) ([]Entry, error)

	// GetWeeklyBest returns ErrNotFound when no best has been recorded for the week.
	GetWeeklyBest(ctx context.Context, db bun.IDB, roomCode string, weekStart time.Time) (*WeeklyBestRecord, error)

	// UpsertWeeklyBest writes a weekly best. Stored values are only replaced by strictly lower ones.
	UpsertWeeklyBest(ctx context.Context, db bun.IDB, record *WeeklyBestRecord) error

	// BulkInsertDailyAwards records a day's awards.
	BulkInsertDailyAwards(ctx context.Context, db bun.IDB, awards []*DailyAward) error

	// GetDailyAwards returns the awards recorded for a room and day.
	GetDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) ([]DailyAward, error)

	// DeleteDailyAwards removes the awards recorded for a room and day.
	DeleteDailyAwards(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error

	// GetDayOutcome returns nil, nil when the day has not been processed for the room.
	GetDayOutcome(ctx context.Context, db bun.IDB, roomCode string, day time.Time) (*DayOutcome, error)

	// UpsertDayOutcome creates or replaces the processed marker.
	UpsertDayOutcome(ctx context.Context, db bun.IDB, outcome *DayOutcome) error

	// AcquireRoomDayLock serialises processing of one room and day for the
	// rest of the transaction. It is a no-op on dialects without advisory locks.
	AcquireRoomDayLock(ctx context.Context, db bun.IDB, roomCode string, day time.Time) error
}

// Impl implements Repository on bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}
