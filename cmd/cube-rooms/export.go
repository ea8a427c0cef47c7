package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	"github.com/Black-And-White-Club/cube-rooms/internal/daytext"
)

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a room's weekly workbook and chart",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "room", Required: true},
			&cli.StringFlag{Name: "week", Value: "today", Usage: "any day of the week to export"},
			&cli.StringFlag{Name: "out", Usage: "workbook path, default <room>-<week>.xlsx"},
			&cli.StringFlag{Name: "chart", Usage: "also write the points chart PNG to this path"},
		},
		Action: func(c *cli.Context) (err error) {
			week, err := daytext.Parse(c.String("week"), time.Now())
			if err != nil {
				return err
			}
			room := c.String("room")

			a, err := newApp(c, false)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, a.Close())
			}()
			svc := a.LeaderboardModule.LeaderboardService

			data, err := svc.ExportWeekly(c.Context, room, week)
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = fmt.Sprintf("%s-%s.xlsx", room, leaderboarddomain.WeekStart(week).Format(statisticsdomain.DateLayout))
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			fmt.Printf("Wrote %s\n", out)

			if path := c.String("chart"); path != "" {
				png, err := svc.RenderWeeklyChart(c.Context, room, week)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, png, 0o644); err != nil {
					return fmt.Errorf("failed to write chart: %w", err)
				}
				fmt.Printf("Wrote %s\n", path)
			}
			return nil
		},
	}
}
