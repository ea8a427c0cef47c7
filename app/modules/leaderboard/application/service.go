package leaderboardservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

const (
	serviceName = "LeaderboardService"

	// DefaultReportTopic is where daily update reports are published.
	DefaultReportTopic = "leaderboard.daily.processed"
)

// Config holds the tunables of the leaderboard engine.
// A nil Points uses the default 4/3/3 table; an explicit table is used as is,
// including one that awards nothing.
type Config struct {
	Points          *leaderboarddomain.PointTable
	RoomConcurrency int
	ReportTopic     string
}

// LeaderboardService implements the Service interface.
type LeaderboardService struct {
	repo      leaderboarddb.Repository
	stats     statisticsdb.Repository
	logger    *slog.Logger
	metrics   observability.LeaderboardMetrics
	tracer    trace.Tracer
	db        *bun.DB
	publisher EventPublisher
	cfg       Config
	points    leaderboarddomain.PointTable
	now       func() time.Time
}

// NewLeaderboardService creates a new LeaderboardService. publisher may be nil.
func NewLeaderboardService(
	repo leaderboarddb.Repository,
	stats statisticsdb.Repository,
	logger *slog.Logger,
	metrics observability.LeaderboardMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	publisher EventPublisher,
	cfg Config,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	points := leaderboarddomain.DefaultPointTable()
	if cfg.Points != nil {
		points = *cfg.Points
	}
	if cfg.RoomConcurrency <= 0 {
		cfg.RoomConcurrency = 1
	}
	if cfg.ReportTopic == "" {
		cfg.ReportTopic = DefaultReportTopic
	}
	return &LeaderboardService{
		repo:      repo,
		stats:     stats,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		publisher: publisher,
		cfg:       cfg,
		points:    points,
		now:       time.Now,
	}
}

// idb returns the service connection, or nil so repositories use their own.
func (s *LeaderboardService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *LeaderboardService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *LeaderboardService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
