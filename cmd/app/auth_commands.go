package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NotSilaev/MrStone/cmd/app/commands"
	"github.com/NotSilaev/MrStone/internal/app"
	"github.com/NotSilaev/MrStone/internal/config"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   commands.FormatText,
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a user that bearer tokens can be issued to",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique user name",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container, container.Logger())

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "issue-token",
			Usage: "Issue a bearer token to a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Name of the user receiving the token",
				},
				&cli.DurationFlag{
					Name:    "expires-in",
					Aliases: []string{"e"},
					Usage:   "Token lifetime (e.g. 720h); 0 never expires; defaults to AUTH_TOKEN_EXPIRATION_SECONDS",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container, container.Logger())

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}
				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				var expiresIn *time.Duration
				if cmd.IsSet("expires-in") {
					d := cmd.Duration("expires-in")
					expiresIn = &d
				}

				return commands.RunIssueToken(
					ctx,
					userUseCase,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user"),
					expiresIn,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-token",
			Usage: "Permanently revoke a bearer token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Token ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container, container.Logger())

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
				)
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete tokens expired or revoked more than the given number of days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete tokens expired or revoked more than this many days ago",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many tokens would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container, container.Logger())

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanExpiredTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("days")),
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
