package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/cube-rooms/internal/daytext"
	"github.com/Black-And-White-Club/cube-rooms/internal/seed"
)

func newSeedCommand() *cli.Command {
	defaults := seed.DefaultOptions(time.Now())
	return &cli.Command{
		Name:  "seed",
		Usage: "record generated solve sessions for local development",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "rooms", Value: defaults.Rooms},
			&cli.IntFlag{Name: "players", Value: defaults.Players, Usage: "players per room"},
			&cli.IntFlag{Name: "days", Value: defaults.Days},
			&cli.IntFlag{Name: "attempts", Value: defaults.Attempts, Usage: "solves per session"},
			&cli.Float64Flag{Name: "fault-rate", Value: defaults.FaultRate},
			&cli.StringFlag{Name: "start", Value: defaults.Start.Format(time.DateOnly), Usage: "first day"},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed, 0 for a time based seed"},
		},
		Action: func(c *cli.Context) (err error) {
			opts := defaults
			opts.Rooms = c.Int("rooms")
			opts.Players = c.Int("players")
			opts.Days = c.Int("days")
			opts.Attempts = c.Int("attempts")
			opts.FaultRate = c.Float64("fault-rate")
			if s := c.Uint64("seed"); s != 0 {
				opts.Seed = s
			}
			if opts.Start, err = daytext.Parse(c.String("start"), time.Now()); err != nil {
				return err
			}

			a, err := newApp(c, true)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, a.Close())
			}()

			sessions := seed.NewGenerator(opts).Sessions()
			n, err := seed.Load(c.Context, a.StatisticsModule.StatisticsService, sessions)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %d sessions across %d rooms (seed %d)\n", n, opts.Rooms, opts.Seed)
			return nil
		},
	}
}
