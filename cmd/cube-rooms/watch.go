package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/cube-rooms/app/eventbus"
)

func newWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "print daily update reports as they are published",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Usage: "topic to follow, default nats.report_topic"},
		},
		Action: func(c *cli.Context) error {
			cfg, obs, err := loadEnv(c)
			if err != nil {
				return err
			}
			if cfg.NATS.URL == "" {
				return errors.New("watch needs nats.url")
			}
			topic := c.String("topic")
			if topic == "" {
				topic = cfg.NATS.ReportTopic
			}

			bus, err := eventbus.NewEventBus(cfg.NATS.URL, obs.Logger)
			if err != nil {
				return err
			}
			defer bus.Close()

			messages, err := bus.Subscribe(c.Context, topic)
			if err != nil {
				return err
			}
			for msg := range messages {
				fmt.Println(string(msg.Payload))
				msg.Ack()
			}
			return nil
		},
	}
}
