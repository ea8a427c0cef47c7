package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/cube-rooms/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/infrastructure/handlers"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	"github.com/Black-And-White-Club/cube-rooms/internal/daytext"
)

var dayFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "day",
		Value: "yesterday",
		Usage: `UTC day to score, as YYYY-MM-DD or a phrase like "last monday"`,
	},
	&cli.StringFlag{
		Name:  "room",
		Usage: "score only this room",
	},
}

func newRunDailyCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-daily",
		Usage: "score a day and merge the awards into the weekly leaderboards",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
		}, dayFlags...),
		Action: func(c *cli.Context) (err error) {
			day, err := daytext.Parse(c.String("day"), time.Now())
			if err != nil {
				return err
			}
			a, err := newApp(c, true)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, a.Close())
			}()

			var opts []leaderboardservice.RunOption
			if room := c.String("room"); room != "" {
				opts = append(opts, leaderboardservice.WithRoom(room))
			}
			report, err := a.LeaderboardModule.LeaderboardService.RunDailyUpdate(c.Context, day, opts...)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(report)
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d rooms failed", len(failed), len(report.Rooms))
			}
			return nil
		},
	}
}

func printReport(report *leaderboardservice.Report) {
	fmt.Printf("Day %s (week of %s), run %s\n", report.Day, report.WeekStart, report.RunID)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tSTATUS\tPLAYERS\tPOINTS\tERROR")
	for _, room := range report.Rooms {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", room.RoomCode, room.Status, room.Players, room.PointsAwarded, room.Error)
	}
	_ = tw.Flush()
}

func newRequestDailyCommand() *cli.Command {
	return &cli.Command{
		Name:  "request-daily",
		Usage: "ask running servers to score a day over NATS",
		Flags: dayFlags,
		Action: func(c *cli.Context) error {
			day, err := daytext.Parse(c.String("day"), time.Now())
			if err != nil {
				return err
			}
			cfg, obs, err := loadEnv(c)
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return errors.New("request-daily needs nats.url")
			}
			bus, err := eventbus.NewEventBus(cfg.NATS.URL, obs.Logger)
			if err != nil {
				return err
			}
			defer bus.Close()

			payload := leaderboardhandlers.DailyUpdateRequestedPayloadV1{
				Day:      day.Format(statisticsdomain.DateLayout),
				RoomCode: c.String("room"),
			}
			if err := bus.Publish(c.Context, leaderboardhandlers.DailyUpdateRequestedV1, payload); err != nil {
				return err
			}
			fmt.Printf("Requested daily update for %s\n", payload.Day)
			return nil
		},
	}
}
