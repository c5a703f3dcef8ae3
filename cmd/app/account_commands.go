package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phrsdk"
	"github.com/allisson/phrsdk/cmd/app/commands"
)

func getAccountCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register",
			Usage: "Register a new account and log in with it",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
					return commands.RunRegister(ctx, client, logger, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "login",
			Usage: "Log in with the credentials of a registered account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID returned by register",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Client secret (omit to be prompted)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
					return commands.RunLogin(
						ctx,
						client,
						logger,
						cmd.String("user-id"),
						cmd.String("secret"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				})
			},
		},
		{
			Name:  "logout",
			Usage: "Forget the session and remove the local keys",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
					return commands.RunLogout(ctx, client, logger, commands.DefaultIO().Writer)
				})
			},
		},
	}
}
