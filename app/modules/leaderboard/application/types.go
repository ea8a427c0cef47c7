package leaderboardservice

import (
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// RoomStatus is the outcome of one room in a daily update.
type RoomStatus string

const (
	// RoomStatusApplied means the day was scored for the first time.
	RoomStatusApplied RoomStatus = "applied"
	// RoomStatusSkipped means the day was already scored from the same rows.
	RoomStatusSkipped RoomStatus = "skipped"
	// RoomStatusRecalculated means rows changed since the last run and the day was re-scored.
	RoomStatusRecalculated RoomStatus = "recalculated"
	// RoomStatusFailed means the room's transaction was rolled back.
	RoomStatusFailed RoomStatus = "failed"
)

// RoomReport summarises one room's daily update.
type RoomReport struct {
	RoomCode      string                                 `json:"room_code"`
	Status        RoomStatus                             `json:"status"`
	Players       int                                    `json:"players"`
	PointsAwarded int                                    `json:"points_awarded"`
	Awards        []leaderboarddomain.PlayerAward        `json:"awards,omitempty"`
	Winners       []leaderboarddomain.MetricWinner       `json:"winners,omitempty"`
	BestChanges   []leaderboarddomain.BestChange         `json:"best_changes,omitempty"`
	Warnings      []leaderboarddomain.InvalidMetricValue `json:"warnings,omitempty"`
	Error         string                                 `json:"error,omitempty"`

	// Err holds the *StoreWriteFailure of a failed room.
	Err error `json:"-"`
}

// Report is the structured result of RunDailyUpdate.
type Report struct {
	RunID      string       `json:"run_id"`
	Day        string       `json:"day"`
	WeekStart  string       `json:"week_start"`
	RoomCode   string       `json:"room_code,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Rooms      []RoomReport `json:"rooms"`
}

// Failed returns the rooms whose update was rolled back.
func (r *Report) Failed() []RoomReport {
	var out []RoomReport
	for _, room := range r.Rooms {
		if room.Status == RoomStatusFailed {
			out = append(out, room)
		}
	}
	return out
}

// TotalPoints sums the points awarded across rooms in this run.
func (r *Report) TotalPoints() int {
	total := 0
	for _, room := range r.Rooms {
		total += room.PointsAwarded
	}
	return total
}

// Room returns the report of one room.
func (r *Report) Room(code string) (RoomReport, bool) {
	for _, room := range r.Rooms {
		if room.RoomCode == code {
			return room, true
		}
	}
	return RoomReport{}, false
}

// RankedEntry is one row of the weekly leaderboard.
type RankedEntry struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"player_id"`
	WeeklyPoints int    `json:"weekly_points"`
}

// DailyStanding is one row of the daily leaderboard.
type DailyStanding struct {
	Rank        int                     `json:"rank"`
	PlayerID    string                  `json:"player_id"`
	DailyPoints int                     `json:"daily_points"`
	BestSingle  statisticsdomain.Result `json:"best_single"`
	MeanOf5     statisticsdomain.Result `json:"mean_of5"`
	MeanOf12    statisticsdomain.Result `json:"mean_of12"`
}

// WeeklyBestView is the weekly best of a room.
type WeeklyBestView struct {
	RoomCode  string `json:"room_code"`
	WeekStart string `json:"week_start"`
	leaderboarddomain.WeeklyBest
}

// PlayerWeekSummary is one player's personal best per metric over a week.
type PlayerWeekSummary struct {
	PlayerID     string                  `json:"player_id"`
	DaysPlayed   int                     `json:"days_played"`
	WeeklyPoints int                     `json:"weekly_points"`
	BestSingle   statisticsdomain.Result `json:"best_single"`
	MeanOf5      statisticsdomain.Result `json:"mean_of5"`
	MeanOf12     statisticsdomain.Result `json:"mean_of12"`
}

// WeeklyOverview bundles everything shown for a room's week.
type WeeklyOverview struct {
	RoomCode  string              `json:"room_code"`
	WeekStart time.Time           `json:"week_start"`
	Entries   []RankedEntry       `json:"entries"`
	Best      *WeeklyBestView     `json:"best,omitempty"`
	Players   []PlayerWeekSummary `json:"players"`
}

type runOptions struct {
	roomCode string
}

// RunOption customises RunDailyUpdate.
type RunOption func(*runOptions)

// WithRoom restricts the update to one room.
func WithRoom(roomCode string) RunOption {
	return func(o *runOptions) {
		o.roomCode = normalizeRoom(roomCode)
	}
}

// normalizeRoom matches the upper-case form room codes are stored in.
func normalizeRoom(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
