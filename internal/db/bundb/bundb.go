package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	_ "modernc.org/sqlite"

	leaderboardmigrations "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/repositories/migrations"
	statisticsmigrations "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories/migrations"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*bun.DB, error) {
	var db *bun.DB
	switch strings.ToLower(driver) {
	case "", DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite allows a single writer; an in-memory database also lives
		// only as long as its one connection.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Module pairs a module name with its migrations.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists every module's migrations in the order they must run.
func Modules() []Module {
	return []Module{
		{Name: "statistics", Migrations: statisticsmigrations.Migrations},
		{Name: "leaderboard", Migrations: leaderboardmigrations.Migrations},
	}
}

// Migrators builds one migrator per module.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	migrators := make(map[string]*migrate.Migrator)
	for _, mod := range Modules() {
		migrators[mod.Name] = migrate.NewMigrator(db, mod.Migrations)
	}
	return migrators
}

// Migrate initialises the migration tables and applies every pending module migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, mod := range Modules() {
		migrator := migrate.NewMigrator(db, mod.Migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize migrations for %s: %w", mod.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run migrations for %s: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", mod.Name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module",
			slog.String("module", mod.Name),
			slog.String("group", group.String()),
		)
	}
	return nil
}

// Rollback rolls back the last migration group of every module, newest module first.
func Rollback(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	modules := Modules()
	for i := len(modules) - 1; i >= 0; i-- {
		mod := modules[i]
		migrator := migrate.NewMigrator(db, mod.Migrations)
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("failed to roll back %s: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "Nothing to roll back", slog.String("module", mod.Name))
			continue
		}
		logger.InfoContext(ctx, "Rolled back module",
			slog.String("module", mod.Name),
			slog.String("group", group.String()),
		)
	}
	return nil
}

// NewTestDB opens a migrated in-memory SQLite database for package tests.
func NewTestDB(ctx context.Context) (*bun.DB, error) {
	db, err := Open(ctx, DriverSQLite, "file::memory:")
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, slog.New(slog.DiscardHandler)); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
