package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics is recorded by every application service operation.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// LeaderboardMetrics adds the daily update counters.
type LeaderboardMetrics interface {
	ServiceMetrics
	RecordRoomProcessed(ctx context.Context, roomCode, status string)
	RecordPointsAwarded(ctx context.Context, roomCode string, points int)
}

// PrometheusMetrics implements LeaderboardMetrics on a Prometheus registry.
type PrometheusMetrics struct {
	attempts       *prometheus.CounterVec
	successes      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	roomsProcessed *prometheus.CounterVec
	pointsAwarded  *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cube_rooms",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"service", "operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cube_rooms",
			Name:      "operation_success_total",
			Help:      "Service operations that completed without error.",
		}, []string{"service", "operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cube_rooms",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"service", "operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cube_rooms",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		roomsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cube_rooms",
			Name:      "leaderboard_rooms_processed_total",
			Help:      "Rooms handled by the daily update, by outcome.",
		}, []string{"status"}),
		pointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cube_rooms",
			Name:      "leaderboard_points_awarded_total",
			Help:      "Points added to weekly ledgers.",
		}, []string{"room"}),
	}

	collectors := []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.durations, m.roomsProcessed, m.pointsAwarded,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRoomProcessed(_ context.Context, _ string, status string) {
	m.roomsProcessed.WithLabelValues(status).Inc()
}

func (m *PrometheusMetrics) RecordPointsAwarded(_ context.Context, roomCode string, points int) {
	m.pointsAwarded.WithLabelValues(roomCode).Add(float64(points))
}

// NoopMetrics discards everything. Used in tests and when metrics are disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordRoomProcessed(context.Context, string, string)                    {}
func (NoopMetrics) RecordPointsAwarded(context.Context, string, int)                       {}
