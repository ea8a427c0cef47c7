package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/cube-rooms/app"
	"github.com/Black-And-White-Club/cube-rooms/internal/db/bundb"
)

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					_, _, db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range bundb.Migrators(db) {
						fmt.Printf("Initializing migrations for module: %s\n", moduleName)
						if err := migrator.Init(c.Context); err != nil {
							return fmt.Errorf("failed to initialize migrations for %s: %w", moduleName, err)
						}
					}
					return nil
				},
			},
			{
				Name:    "up",
				Aliases: []string{"migrate"},
				Usage:   "apply pending migrations, including the job queue schema on postgres",
				Action: func(c *cli.Context) error {
					cfg, obs, db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					return app.Migrate(c.Context, cfg, db, obs.Logger)
				},
			},
			{
				Name:    "down",
				Aliases: []string{"rollback"},
				Usage:   "roll back the last migration group of every module",
				Action: func(c *cli.Context) error {
					_, obs, db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					return bundb.Rollback(c.Context, db, obs.Logger)
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					_, _, db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range bundb.Migrators(db) {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", moduleName)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
