package statisticsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

const serviceName = "StatisticsService"

// StatisticsService implements the Service interface.
type StatisticsService struct {
	repo    statisticsdb.Repository
	logger  *slog.Logger
	metrics observability.ServiceMetrics
	tracer  trace.Tracer
	db      *bun.DB
	policy  statisticsdomain.FaultPolicy
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(
	repo statisticsdb.Repository,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	policy statisticsdomain.FaultPolicy,
) *StatisticsService {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = statisticsdomain.FaultPolicyLenient
	}
	return &StatisticsService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		policy:  policy,
	}
}

// RecordSession summarises a session's attempts into the day's row.
func (s *StatisticsService) RecordSession(ctx context.Context, cmd RecordSessionCommand) (*DailyStatisticsView, error) {
	cmd.RoomCode = NormalizeRoomCode(cmd.RoomCode)
	cmd.PlayerID = strings.TrimSpace(cmd.PlayerID)

	return withTelemetry(s, ctx, "RecordSession", cmd.RoomCode+"/"+cmd.PlayerID, func(ctx context.Context) (*DailyStatisticsView, error) {
		if cmd.RoomCode == "" || cmd.PlayerID == "" {
			return nil, ErrMissingIdentity
		}
		if err := statisticsdomain.ValidateAttempts(cmd.Attempts); err != nil {
			return nil, err
		}

		summary := statisticsdomain.Summarize(cmd.Attempts, s.policy)
		row := &statisticsdb.DailyStatistics{
			RoomCode:   cmd.RoomCode,
			PlayerID:   cmd.PlayerID,
			Day:        sessionDay(cmd.Day, cmd.Attempts),
			BestSingle: summary.BestSingle,
			MeanOf5:    summary.MeanOf5,
			MeanOf12:   summary.MeanOf12,
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*DailyStatisticsView, error) {
			return s.upsertLogic(ctx, db, row)
		})
	})
}

// UpdateStatistics stores client reported metrics for the day.
func (s *StatisticsService) UpdateStatistics(ctx context.Context, cmd UpdateStatisticsCommand) (*DailyStatisticsView, error) {
	cmd.RoomCode = NormalizeRoomCode(cmd.RoomCode)
	cmd.PlayerID = strings.TrimSpace(cmd.PlayerID)

	return withTelemetry(s, ctx, "UpdateStatistics", cmd.RoomCode+"/"+cmd.PlayerID, func(ctx context.Context) (*DailyStatisticsView, error) {
		if cmd.RoomCode == "" || cmd.PlayerID == "" {
			return nil, ErrMissingIdentity
		}

		best, err := parseMetric("best_single", cmd.BestSingle, false)
		if err != nil {
			return nil, err
		}
		mo5, err := parseMetric("mean_of5", cmd.MeanOf5, true)
		if err != nil {
			return nil, err
		}
		mo12, err := parseMetric("mean_of12", cmd.MeanOf12, true)
		if err != nil {
			return nil, err
		}

		day := cmd.Day
		if day.IsZero() {
			day = time.Now()
		}
		row := &statisticsdb.DailyStatistics{
			RoomCode:   cmd.RoomCode,
			PlayerID:   cmd.PlayerID,
			Day:        statisticsdomain.DayStart(day),
			BestSingle: best.Round(),
			MeanOf5:    mo5.Round(),
			MeanOf12:   mo12.Round(),
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (*DailyStatisticsView, error) {
			return s.upsertLogic(ctx, db, row)
		})
	})
}

// GetDailyStatistics retrieves one row.
func (s *StatisticsService) GetDailyStatistics(ctx context.Context, roomCode, playerID string, day time.Time) (*DailyStatisticsView, error) {
	roomCode = NormalizeRoomCode(roomCode)
	return withTelemetry(s, ctx, "GetDailyStatistics", roomCode+"/"+playerID, func(ctx context.Context) (*DailyStatisticsView, error) {
		row, err := s.repo.GetDailyStatistics(ctx, s.idb(), roomCode, playerID, statisticsdomain.DayStart(day))
		if err != nil {
			return nil, err
		}
		return toView(row), nil
	})
}

func (s *StatisticsService) upsertLogic(ctx context.Context, db bun.IDB, row *statisticsdb.DailyStatistics) (*DailyStatisticsView, error) {
	if err := s.repo.UpsertDailyStatistics(ctx, db, row); err != nil {
		return nil, fmt.Errorf("failed to upsert daily statistics: %w", err)
	}
	stored, err := s.repo.GetDailyStatistics(ctx, db, row.RoomCode, row.PlayerID, row.Day)
	if err != nil {
		return nil, fmt.Errorf("failed to reload daily statistics: %w", err)
	}
	return toView(stored), nil
}

// sessionDay uses the explicit day when given, otherwise the day of the latest attempt.
func sessionDay(day time.Time, attempts []statisticsdomain.Attempt) time.Time {
	if !day.IsZero() {
		return statisticsdomain.DayStart(day)
	}
	var latest time.Time
	for _, a := range attempts {
		if a.Timestamp.After(latest) {
			latest = a.Timestamp
		}
	}
	if latest.IsZero() {
		latest = time.Now()
	}
	return statisticsdomain.DayStart(latest)
}

func parseMetric(name string, raw *string, allowFault bool) (statisticsdomain.Result, error) {
	if raw == nil {
		return statisticsdomain.Absent(), nil
	}
	r, err := statisticsdomain.ParseResult(*raw)
	if err != nil {
		return r, fmt.Errorf("%w: %s: %v", ErrInvalidStatistics, name, err)
	}
	if r.IsFault() && !allowFault {
		return r, fmt.Errorf("%w: %s cannot be %s", ErrInvalidStatistics, name, statisticsdomain.FaultToken)
	}
	return r, nil
}

func (s *StatisticsService) idb() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *StatisticsService,
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
		s.logger.WarnContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(err)
		return result, fmt.Errorf("%s: %w", operationName, err)
	}

	s.logger.DebugContext(ctx, "Operation completed successfully",
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
	s *StatisticsService,
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
