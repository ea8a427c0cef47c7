package statisticsdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines persistence for daily statistics rows.
type Repository interface {
	// UpsertDailyStatistics creates the row or replaces its metrics.
	// daily_points is never touched by this call.
	UpsertDailyStatistics(ctx context.Context, db bun.IDB, stats *DailyStatistics) error

	// GetDailyStatistics returns ErrNotFound when the row does not exist.
	GetDailyStatistics(ctx context.Context, db bun.IDB, roomCode, playerID string, day time.Time) (*DailyStatistics, error)

	// ListDailyStatistics returns the rows matching filter ordered by room, day, then player.
	ListDailyStatistics(ctx context.Context, db bun.IDB, filter Filter) ([]DailyStatistics, error)

	// SetDailyPoints writes points onto the row of (room, player) whose day is in [start, end).
	SetDailyPoints(ctx context.Context, db bun.IDB, roomCode, playerID string, start, end time.Time, points int) error
}

// Impl implements Repository on bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new statistics repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}
