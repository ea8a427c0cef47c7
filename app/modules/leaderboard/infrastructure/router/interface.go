package leaderboardrouter

import (
	"context"

	leaderboardhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/handlers"
)

// Router consumes leaderboard events from the event bus.
type Router interface {
	Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error
	Run(ctx context.Context) error
	Close() error
}
