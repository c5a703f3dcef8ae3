package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phrsdk/cmd/app/commands"
	"github.com/allisson/phrsdk/internal/app"
	"github.com/allisson/phrsdk/internal/config"
	"github.com/allisson/phrsdk/internal/database"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sandbox",
			Usage: "Start the sandbox backend",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunSandbox(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run sandbox database migrations",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "migrations",
					Value: "migrations",
					Usage: "Directory holding the postgresql and mysql migration folders",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(ctx, container.Logger(), database.Config{
					Driver:             cfg.DBDriver,
					ConnectionString:   cfg.DBConnectionString,
					MaxOpenConnections: cfg.DBMaxOpenConnections,
					MaxIdleConnections: cfg.DBMaxIdleConnections,
					ConnMaxLifetime:    cfg.DBConnMaxLifetime,
				}, cmd.String("migrations"))
			},
		},
	}
}
