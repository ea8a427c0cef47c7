package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/cube-rooms/app/eventbus"
	authjwt "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard"
	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboardqueue "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/queue"
	"github.com/Black-And-White-Club/cube-rooms/app/modules/statistics"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
	"github.com/Black-And-White-Club/cube-rooms/config"
	"github.com/Black-And-White-Club/cube-rooms/internal/db/bundb"
)

// App holds the process-wide dependencies and the modules built on them.
type App struct {
	Config            *config.Config
	Observability     *observability.Observability
	DB                *bun.DB
	EventBus          *eventbus.EventBus
	JWTProvider       authjwt.Provider
	StatisticsModule  *statistics.Module
	LeaderboardModule *leaderboard.Module

	httpServer    *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// NewApp connects the store and event bus and initializes every module.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	db, err := bundb.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		JWTProvider:   authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer),
	}

	bus, err := eventbus.NewEventBus(cfg.NATS.URL, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	policy, err := statisticsdomain.ParseFaultPolicy(cfg.Scoring.FaultPolicy)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.StatisticsModule = statistics.NewStatisticsModule(ctx, obs, db, policy)

	opts := leaderboard.Options{
		Service: leaderboardservice.Config{
			Points: &leaderboarddomain.PointTable{
				BestSingle: cfg.Scoring.BestSinglePoints,
				MeanOf5:    cfg.Scoring.MeanOf5Points,
				MeanOf12:   cfg.Scoring.MeanOf12Points,
			},
			RoomConcurrency: cfg.Scheduler.RoomConcurrency,
			ReportTopic:     cfg.NATS.ReportTopic,
		},
		Queue: leaderboardqueue.Config{
			Enabled:    cfg.Scheduler.Enabled,
			RunAt:      cfg.Scheduler.RunAt,
			MaxWorkers: cfg.Scheduler.MaxWorkers,
		},
	}
	if cfg.UsesPostgres() {
		opts.QueueDSN = cfg.Storage.DSN
	}
	app.LeaderboardModule, err = leaderboard.NewLeaderboardModule(ctx, obs, db, app.StatisticsModule.Repository, bus, opts)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}

	logger.InfoContext(ctx, "Application initialized",
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.Bool("nats", cfg.NATS.URL != ""),
		slog.Bool("scheduler", cfg.Scheduler.Enabled),
	)
	return app, nil
}

// Migrate applies the module migrations, plus River's schema on postgres.
func Migrate(ctx context.Context, cfg *config.Config, db *bun.DB, logger *slog.Logger) error {
	if err := bundb.Migrate(ctx, db, logger); err != nil {
		return err
	}
	if cfg.UsesPostgres() {
		if err := leaderboardqueue.Migrate(ctx, cfg.Storage.DSN, logger); err != nil {
			return err
		}
	}
	return nil
}

// Close releases every resource NewApp acquired.
func (app *App) Close() error {
	var errs []error
	if app.LeaderboardModule != nil {
		if err := app.LeaderboardModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
