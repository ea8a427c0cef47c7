package leaderboarddomain

import (
	"time"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	day := statisticsdomain.DayStart(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		return day.AddDate(0, 0, -6)
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// WeekWindow returns [weekStart, weekStart+7d) for the week containing t.
func WeekWindow(t time.Time) (start, end time.Time) {
	start = WeekStart(t)
	return start, start.AddDate(0, 0, 7)
}
