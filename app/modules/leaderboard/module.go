package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/cube-rooms/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/handlers"
	leaderboardqueue "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/queue"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/router"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

// Options configures the leaderboard module.
type Options struct {
	Service leaderboardservice.Config
	Queue   leaderboardqueue.Config
	// QueueDSN is the postgres DSN for River. Empty selects the in-process scheduler.
	QueueDSN string
}

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	Handlers           *leaderboardhandlers.LeaderboardHandlers
	HTTPHandlers       *leaderboardhandlers.LeaderboardHTTPHandlers
	LeaderboardRouter  *leaderboardrouter.LeaderboardRouter
	Queue              leaderboardqueue.QueueService
	scheduler          *leaderboardqueue.LocalScheduler
	cancelFunc         context.CancelFunc
	observability      *observability.Observability
}

// NewLeaderboardModule creates and initializes the leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	stats statisticsdb.Repository,
	eventBus *eventbus.EventBus,
	opts Options,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule initializing")

	// 1. Repository and service
	repo := leaderboarddb.NewRepository(db)
	var publisher leaderboardservice.EventPublisher
	if eventBus != nil {
		publisher = eventBus
	}
	service := leaderboardservice.NewLeaderboardService(repo, stats, logger, obs.Metrics, tracer, db, publisher, opts.Service)

	// 2. Scheduling
	module := &Module{
		LeaderboardService: service,
		observability:      obs,
	}
	var enqueuer leaderboardhandlers.Enqueuer
	if opts.QueueDSN != "" {
		queue, err := leaderboardqueue.NewService(ctx, logger, opts.QueueDSN, obs.Metrics, service, opts.Queue)
		if err != nil {
			return nil, fmt.Errorf("failed to create leaderboard queue: %w", err)
		}
		module.Queue = queue
		enqueuer = queue
	} else if opts.Queue.Enabled {
		schedule, err := leaderboardqueue.ParseRunAt(opts.Queue.RunAt)
		if err != nil {
			return nil, err
		}
		module.scheduler = leaderboardqueue.NewLocalScheduler(logger, service, schedule)
	}

	// 3. Handlers
	module.Handlers = leaderboardhandlers.NewLeaderboardHandlers(service, logger, tracer)
	module.HTTPHandlers = leaderboardhandlers.NewLeaderboardHTTPHandlers(service, enqueuer, logger)

	// 4. Event router
	if eventBus != nil {
		router, err := leaderboardrouter.NewLeaderboardRouter(logger, eventBus, obs.Registry)
		if err != nil {
			return nil, err
		}
		if err := router.Configure(ctx, module.Handlers); err != nil {
			return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
		}
		module.LeaderboardRouter = router
	}

	return module, nil
}

// Run starts the scheduler and event router and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start leaderboard queue", "error", err)
		}
	}
	if m.scheduler != nil {
		go func() {
			_ = m.scheduler.Run(ctx)
		}()
	}
	if m.LeaderboardRouter != nil {
		go func() {
			if err := m.LeaderboardRouter.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "Leaderboard router stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var errs []error
	if m.LeaderboardRouter != nil {
		if err := m.LeaderboardRouter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close leaderboard router: %w", err))
		}
	}
	if m.Queue != nil {
		if err := m.Queue.Stop(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop leaderboard queue: %w", err))
		}
	}

	logger.Info("Leaderboard module stopped")
	return errors.Join(errs...)
}
