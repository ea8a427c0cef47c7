package main

import (
	"errors"

	"github.com/urfave/cli/v2"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the API and run the daily scheduler",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Value: true,
				Usage: "apply pending migrations before serving",
			},
		},
		Action: func(c *cli.Context) (err error) {
			a, err := newApp(c, c.Bool("migrate"))
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, a.Close())
			}()
			return a.Start(c.Context)
		},
	}
}
