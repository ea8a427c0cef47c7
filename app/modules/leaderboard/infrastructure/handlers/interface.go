package leaderboardhandlers

import (
	"context"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
)

// Handlers defines the interface for leaderboard event handlers.
type Handlers interface {
	// HandleDailyUpdateRequested runs a daily update requested over the event bus.
	HandleDailyUpdateRequested(ctx context.Context, payload *DailyUpdateRequestedPayloadV1) (*leaderboardservice.Report, error)
}

// Enqueuer hands a daily update to the job queue.
type Enqueuer interface {
	EnqueueDailyUpdate(ctx context.Context, day time.Time, roomCode string) (int64, error)
}
