package statisticsservice

import (
	"context"
	"time"
)

// Service ingests per-session statistics.
type Service interface {
	// RecordSession validates attempts, computes best single and trimmed means, and upserts the day's row.
	RecordSession(ctx context.Context, cmd RecordSessionCommand) (*DailyStatisticsView, error)
	// UpdateStatistics upserts client reported metrics after validation.
	UpdateStatistics(ctx context.Context, cmd UpdateStatisticsCommand) (*DailyStatisticsView, error)
	// GetDailyStatistics returns one player's row for a day.
	GetDailyStatistics(ctx context.Context, roomCode, playerID string, day time.Time) (*DailyStatisticsView, error)
}
