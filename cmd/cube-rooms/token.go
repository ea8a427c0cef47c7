package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	authdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/cube-rooms/app/modules/auth/infrastructure/jwt"
)

func newTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an operator bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "who the token is for"},
			&cli.StringFlag{Name: "role", Value: string(authdomain.RoleAdmin), Usage: "admin or viewer"},
			&cli.DurationFlag{Name: "ttl", Usage: "lifetime, default jwt.default_ttl"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadEnv(c)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret is not configured")
			}
			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = cfg.JWT.DefaultTTL
			}

			provider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
			token, err := provider.GenerateToken(c.String("subject"), authdomain.Role(c.String("role")), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
