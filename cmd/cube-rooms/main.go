package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cliApp := &cli.App{
		Name:  "cube-rooms",
		Usage: "daily solve statistics and weekly room leaderboards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
			newRunDailyCommand(),
			newRequestDailyCommand(),
			newSeedCommand(),
			newExportCommand(),
			newTokenCommand(),
			newWatchCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
