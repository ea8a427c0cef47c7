package statisticsdb

import (
	"time"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	"github.com/uptrace/bun"
)

// DailyStatistics is one player's session summary for a room on a UTC day.
// Metric columns hold a number, "DNF", or NULL.
type DailyStatistics struct {
	bun.BaseModel `bun:"table:daily_statistics,alias:ds"`

	RoomCode string    `bun:"room_code,pk"`
	PlayerID string    `bun:"player_id,pk"`
	Day      time.Time `bun:"day,pk"`

	BestSingle  statisticsdomain.Result `bun:"best_single,type:varchar(32)"`
	MeanOf5     statisticsdomain.Result `bun:"mean_of5,type:varchar(32)"`
	MeanOf12    statisticsdomain.Result `bun:"mean_of12,type:varchar(32)"`
	DailyPoints int                     `bun:"daily_points,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Filter selects rows whose day falls in [Start, End), optionally for one room or player.
type Filter struct {
	Start    time.Time
	End      time.Time
	RoomCode string
	PlayerID string
}
