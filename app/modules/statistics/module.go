package statistics

import (
	"context"

	"github.com/uptrace/bun"

	statisticsservice "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticshandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/handlers"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

// Module represents the statistics module.
type Module struct {
	StatisticsService statisticsservice.Service
	Repository        statisticsdb.Repository
	HTTPHandlers      *statisticshandlers.StatisticsHTTPHandlers
}

// NewStatisticsModule creates and initializes the statistics module.
func NewStatisticsModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	policy statisticsdomain.FaultPolicy,
) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "statistics.NewStatisticsModule initializing")

	repo := statisticsdb.NewRepository(db)
	service := statisticsservice.NewStatisticsService(repo, logger, obs.Metrics, obs.Tracer, db, policy)

	return &Module{
		StatisticsService: service,
		Repository:        repo,
		HTTPHandlers:      statisticshandlers.NewStatisticsHTTPHandlers(service, logger),
	}
}
