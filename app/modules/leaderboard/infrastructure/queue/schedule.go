package leaderboardqueue

import (
	"fmt"
	"time"

	"github.com/riverqueue/river"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// DailySchedule fires once a day at a fixed UTC wall clock time.
type DailySchedule struct {
	Hour   int
	Minute int
}

var _ river.PeriodicSchedule = DailySchedule{}

// ParseRunAt parses an "HH:MM" UTC time of day.
func ParseRunAt(s string) (DailySchedule, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return DailySchedule{}, fmt.Errorf("invalid run_at %q, expected HH:MM: %w", s, err)
	}
	return DailySchedule{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Next returns the first run strictly after current.
func (d DailySchedule) Next(current time.Time) time.Time {
	current = current.UTC()
	next := time.Date(current.Year(), current.Month(), current.Day(), d.Hour, d.Minute, 0, 0, time.UTC)
	if !next.After(current) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// previousDay is the UTC day that ended before now.
func previousDay(now time.Time) string {
	return statisticsdomain.DayStart(now).AddDate(0, 0, -1).Format(statisticsdomain.DateLayout)
}

// NewDailyPeriodicJob scores the previous UTC day at every tick of schedule.
func NewDailyPeriodicJob(schedule DailySchedule, now func() time.Time) *river.PeriodicJob {
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return DailyUpdateJob{Day: previousDay(now())}, &river.InsertOpts{
				Queue:      QueueName,
				UniqueOpts: river.UniqueOpts{ByArgs: true},
			}
		},
		nil,
	)
}
