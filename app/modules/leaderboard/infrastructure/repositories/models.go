package leaderboarddb

import (
	"time"

	"github.com/uptrace/bun"
)

// Entry is one row of the weekly ledger, keyed by (room, player, week start).
type Entry struct {
	bun.BaseModel `bun:"table:leaderboard_entries,alias:le"`

	RoomCode     string    `bun:"room_code,pk"`
	PlayerID     string    `bun:"player_id,pk"`
	WeekStart    time.Time `bun:"week_start,pk"`
	WeeklyPoints int       `bun:"weekly_points,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// WeeklyBestRecord holds the room-wide best of each metric for a week.
// A NULL value means no time has been recorded for that metric.
type WeeklyBestRecord struct {
	bun.BaseModel `bun:"table:leaderboard_weekly_bests,alias:wb"`

	RoomCode  string    `bun:"room_code,pk"`
	WeekStart time.Time `bun:"week_start,pk"`

	BestSingle       *float64 `bun:"best_single"`
	BestSinglePlayer *string  `bun:"best_single_player"`
	MeanOf5          *float64 `bun:"mean_of5"`
	MeanOf5Player    *string  `bun:"mean_of5_player"`
	MeanOf12         *float64 `bun:"mean_of12"`
	MeanOf12Player   *string  `bun:"mean_of12_player"`

	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// DailyAward records the points a player earned for a room on a day.
// Rows are the audit trail used to roll back a day before it is recalculated.
type DailyAward struct {
	bun.BaseModel `bun:"table:leaderboard_daily_awards,alias:da"`

	RoomCode   string    `bun:"room_code,pk"`
	PlayerID   string    `bun:"player_id,pk"`
	Day        time.Time `bun:"day,pk"`
	WeekStart  time.Time `bun:"week_start,notnull"`
	Points     int       `bun:"points,notnull"`
	Categories string    `bun:"categories,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// DayOutcome marks a (room, day) as processed. ProcessingHash identifies the
// statistics rows the day was scored from.
type DayOutcome struct {
	bun.BaseModel `bun:"table:leaderboard_day_outcomes,alias:dout"`

	RoomCode       string    `bun:"room_code,pk"`
	Day            time.Time `bun:"day,pk"`
	ProcessingHash string    `bun:"processing_hash,notnull"`
	Players        int       `bun:"players,notnull"`
	Points         int       `bun:"points,notnull"`
	ProcessedAt    time.Time `bun:"processed_at,nullzero,notnull,default:current_timestamp"`
}
