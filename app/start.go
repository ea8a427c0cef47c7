package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Start serves the API and runs the modules until ctx is cancelled.
func (app *App) Start(ctx context.Context) error {
	logger := app.Observability.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.wg.Add(1)
	go app.LeaderboardModule.Run(ctx, &app.wg)

	app.httpServer = &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 2)
	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if addr := app.Config.Observability.MetricsAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.metricsHandler())
		app.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("Starting metrics server", slog.String("addr", addr))
			if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("Server failed", slog.Any("error", err))
		cancel()
		app.Shutdown()
		return err
	}
	app.Shutdown()
	return nil
}

// Shutdown stops the servers and waits for the modules to exit. The modules
// see the cancelled Start context; Close releases them.
func (app *App) Shutdown() {
	logger := app.Observability.Logger
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, srv := range []*http.Server{app.httpServer, app.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down server", slog.String("addr", srv.Addr), slog.Any("error", err))
		}
	}
	app.wg.Wait()
	logger.Info("Servers stopped")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
