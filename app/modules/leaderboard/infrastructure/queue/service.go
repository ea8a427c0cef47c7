package leaderboardqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

const metricsService = "river"

// QueueService defines the contract for daily update scheduling.
type QueueService interface {
	// EnqueueDailyUpdate queues a run for day. Duplicate requests for the same
	// day and room collapse into one job.
	EnqueueDailyUpdate(ctx context.Context, day time.Time, roomCode string) (int64, error)
	// HealthCheck verifies the queue database is reachable.
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config controls the periodic daily job.
type Config struct {
	Enabled    bool
	RunAt      string
	MaxWorkers int
}

// Service runs leaderboard jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.ServiceMetrics
}

// NewService creates a River client on its own pgx pool. River requires pgx, not database/sql.
func NewService(ctx context.Context, logger *slog.Logger, dsn string, metrics observability.ServiceMetrics, updater DailyUpdater, cfg Config) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("operation", "new_leaderboard_queue_service"),
		slog.String("component", "river_queue"),
	)
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewDailyUpdateWorker(ctxLogger, updater))

	var periodic []*river.PeriodicJob
	if cfg.Enabled {
		schedule, err := ParseRunAt(cfg.RunAt)
		if err != nil {
			pool.Close()
			metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
			return nil, err
		}
		periodic = append(periodic, NewDailyPeriodicJob(schedule, time.Now))
		ctxLogger.Info("Daily leaderboard update scheduled",
			slog.String("run_at_utc", cfg.RunAt),
		)
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
			QueueName:          {MaxWorkers: maxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.Info("Leaderboard queue service initialized successfully")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// Migrate applies River's schema migrations.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.InfoContext(ctx, "Applied river migration", slog.Int("version", v.Version))
	}
	return nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.logger.Info("Leaderboard queue service started successfully")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.logger.Info("Leaderboard queue service stopped successfully")
	return nil
}

// EnqueueDailyUpdate inserts a daily update job to run immediately.
func (s *Service) EnqueueDailyUpdate(ctx context.Context, day time.Time, roomCode string) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_daily_update", metricsService)

	job := DailyUpdateJob{
		Day:      statisticsdomain.DayStart(day).Format(statisticsdomain.DateLayout),
		RoomCode: roomCode,
	}
	res, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue:      QueueName,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_daily_update", metricsService)
		return 0, fmt.Errorf("failed to enqueue daily update: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_daily_update", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_daily_update", metricsService, time.Since(start))
	s.logger.InfoContext(ctx, "Daily update job enqueued",
		slog.Int64("job_id", res.Job.ID),
		slog.String("day", job.Day),
		slog.String("room_code", roomCode),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}

// HealthCheck pings the queue pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
