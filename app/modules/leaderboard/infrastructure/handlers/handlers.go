package leaderboardhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// LeaderboardHandlers handles leaderboard-related events.
type LeaderboardHandlers struct {
	leaderboardService leaderboardservice.Service
	logger             *slog.Logger
	tracer             trace.Tracer
	now                func() time.Time
}

// NewLeaderboardHandlers creates a new instance of LeaderboardHandlers.
func NewLeaderboardHandlers(leaderboardService leaderboardservice.Service, logger *slog.Logger, tracer trace.Tracer) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		leaderboardService: leaderboardService,
		logger:             logger,
		tracer:             tracer,
		now:                time.Now,
	}
}

var _ Handlers = (*LeaderboardHandlers)(nil)

// HandleDailyUpdateRequested runs the requested day. A day without statistics
// is logged and acknowledged; redelivery would not change the outcome.
func (h *LeaderboardHandlers) HandleDailyUpdateRequested(ctx context.Context, payload *DailyUpdateRequestedPayloadV1) (*leaderboardservice.Report, error) {
	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.Start(ctx, "HandleDailyUpdateRequested", trace.WithAttributes(
			attribute.String("day", payload.Day),
			attribute.String("room_code", payload.RoomCode),
		))
		defer span.End()
	}

	day := statisticsdomain.DayStart(h.now()).AddDate(0, 0, -1)
	if payload.Day != "" {
		parsed, err := statisticsdomain.ParseDay(payload.Day)
		if err != nil {
			h.logger.WarnContext(ctx, "Dropping daily update request with invalid day",
				slog.String("day", payload.Day),
			)
			return nil, nil
		}
		day = parsed
	}

	var opts []leaderboardservice.RunOption
	if payload.RoomCode != "" {
		opts = append(opts, leaderboardservice.WithRoom(payload.RoomCode))
	}

	report, err := h.leaderboardService.RunDailyUpdate(ctx, day, opts...)
	if errors.Is(err, leaderboardservice.ErrDataUnavailable) {
		h.logger.InfoContext(ctx, "No statistics for requested day",
			slog.String("day", day.Format(statisticsdomain.DateLayout)),
			slog.String("room_code", payload.RoomCode),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("daily update failed: %w", err)
	}
	return report, nil
}
