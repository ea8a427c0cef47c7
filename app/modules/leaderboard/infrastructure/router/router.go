package leaderboardrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	leaderboardhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/handlers"
)

type LeaderboardRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

var _ Router = (*LeaderboardRouter)(nil)

// NewLeaderboardRouter creates the watermill router. Router metrics are
// registered when prometheusRegistry is non-nil.
func NewLeaderboardRouter(
	logger *slog.Logger,
	subscriber message.Subscriber,
	prometheusRegistry *prometheus.Registry,
) (*LeaderboardRouter, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create leaderboard router: %w", err)
	}

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "cube_rooms", "leaderboard")
		metricsBuilder = &builder
	}

	return &LeaderboardRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metricsBuilder: metricsBuilder,
	}, nil
}

// Configure sets up the middlewares and registers the module's event handlers.
func (r *LeaderboardRouter) Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Leaderboard")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	return r.RegisterHandlers(ctx, handlers)
}

// registerHandler decodes the JSON payload of topic into T before calling handler.
func registerHandler[T any, R any](
	r *LeaderboardRouter,
	topic string,
	handler func(context.Context, *T) (R, error),
) {
	handlerName := "leaderboard." + topic
	r.Router.AddNoPublisherHandler(
		handlerName,
		topic,
		r.subscriber,
		func(msg *message.Message) error {
			var payload T
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				// Redelivery cannot fix a malformed payload.
				r.logger.Error("Dropping malformed message",
					slog.String("handler", handlerName),
					slog.String("message_id", msg.UUID),
					slog.Any("error", err),
				)
				return nil
			}
			if _, err := handler(msg.Context(), &payload); err != nil {
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			return nil
		},
	)
}

// RegisterHandlers binds event topics to their handlers.
func (r *LeaderboardRouter) RegisterHandlers(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Leaderboard Event Handlers")

	registerHandler(r, leaderboardhandlers.DailyUpdateRequestedV1, handlers.HandleDailyUpdateRequested)

	return nil
}

// Run blocks until the router stops or ctx is cancelled.
func (r *LeaderboardRouter) Run(ctx context.Context) error {
	return r.Router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (r *LeaderboardRouter) Running() chan struct{} {
	return r.Router.Running()
}

// Close stops the router and cleans up resources.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}
