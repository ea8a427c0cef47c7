package statisticsservice

import (
	"strings"
	"time"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
)

// RecordSessionCommand carries a session's attempts. Metrics are computed server side.
type RecordSessionCommand struct {
	RoomCode string                     `json:"room_code"`
	PlayerID string                     `json:"player_id"`
	Day      time.Time                  `json:"day"`
	Attempts []statisticsdomain.Attempt `json:"attempts"`
}

// UpdateStatisticsCommand carries client computed metrics. Nil means absent.
type UpdateStatisticsCommand struct {
	RoomCode   string    `json:"room_code"`
	PlayerID   string    `json:"player_id"`
	Day        time.Time `json:"day"`
	BestSingle *string   `json:"best_single"`
	MeanOf5    *string   `json:"mean_of5"`
	MeanOf12   *string   `json:"mean_of12"`
}

// DailyStatisticsView is the read model of a DailyStatistics row.
type DailyStatisticsView struct {
	RoomCode    string                  `json:"room_code"`
	PlayerID    string                  `json:"player_id"`
	Day         string                  `json:"day"`
	BestSingle  statisticsdomain.Result `json:"best_single"`
	MeanOf5     statisticsdomain.Result `json:"mean_of5"`
	MeanOf12    statisticsdomain.Result `json:"mean_of12"`
	DailyPoints int                     `json:"daily_points"`
}

// NormalizeRoomCode trims and upper-cases a room code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func toView(row *statisticsdb.DailyStatistics) *DailyStatisticsView {
	return &DailyStatisticsView{
		RoomCode:    row.RoomCode,
		PlayerID:    row.PlayerID,
		Day:         row.Day.UTC().Format(statisticsdomain.DateLayout),
		BestSingle:  row.BestSingle,
		MeanOf5:     row.MeanOf5,
		MeanOf12:    row.MeanOf12,
		DailyPoints: row.DailyPoints,
	}
}
