package main

import (
	"fmt"
	"os"

	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/cube-rooms/app"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
	"github.com/Black-And-White-Club/cube-rooms/config"
	"github.com/Black-And-White-Club/cube-rooms/internal/db/bundb"
)

// loadEnv reads the configuration and builds the observability stack.
// Logs go to stderr so commands can print results on stdout.
func loadEnv(c *cli.Context) (*config.Config, *observability.Observability, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs, err := observability.New(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	}, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return cfg, obs, nil
}

// newApp builds the application. With migrate set, pending migrations run first.
func newApp(c *cli.Context, migrate bool) (*app.App, error) {
	cfg, obs, err := loadEnv(c)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(c.Context, cfg, obs)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := app.Migrate(c.Context, cfg, a.DB, obs.Logger); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return a, nil
}

func openDB(c *cli.Context) (*config.Config, *observability.Observability, *bun.DB, error) {
	cfg, obs, err := loadEnv(c)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := bundb.Open(c.Context, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, obs, db, nil
}
