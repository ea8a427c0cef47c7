package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	authdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/domain"
	authhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/infrastructure/handlers"
)

// Router builds the HTTP API.
func (app *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authhandlers.CORSMiddleware(app.Config.HTTP.AllowedOrigins))

	r.Get("/health", app.handleHealth)
	if app.Config.Observability.MetricsAddress == "" {
		r.Handle("/metrics", app.metricsHandler())
	}

	limiter := authhandlers.NewIPRateLimiter(rate.Limit(app.Config.HTTP.RateLimit), app.Config.HTTP.RateBurst)
	admin := []func(http.Handler) http.Handler{
		authhandlers.RateLimitMiddleware(limiter),
		authhandlers.BearerAuthMiddleware(app.JWTProvider, authdomain.RoleAdmin),
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/statistics", app.StatisticsModule.HTTPHandlers.Routes())
		r.Mount("/leaderboard", app.LeaderboardModule.HTTPHandlers.Routes(admin...))
	})
	return r
}

func (app *App) metricsHandler() http.Handler {
	return promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{Registry: app.Observability.Registry})
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok"}
	code := http.StatusOK
	if err := app.DB.PingContext(ctx); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if q := app.LeaderboardModule.Queue; q != nil {
		status["queue"] = "ok"
		if err := q.HealthCheck(ctx); err != nil {
			status["queue"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}
