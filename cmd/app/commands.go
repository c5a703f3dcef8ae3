package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phrsdk"
	"github.com/allisson/phrsdk/internal/app"
	"github.com/allisson/phrsdk/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getAccountCommands()...)
	cmds = append(cmds, getRecordCommands()...)
	return cmds
}

// withClient runs fn with an SDK client configured from the environment and closes the
// client afterwards.
func withClient(ctx context.Context, fn func(client *phrsdk.Client, logger *slog.Logger) error) error {
	logger := app.NewContainer(config.Load()).Logger()

	client, err := phrsdk.New(phrsdk.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(ctx); err != nil {
			logger.Error("failed to close client", slog.Any("error", err))
		}
	}()

	return fn(client, logger)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text', 'json' or 'yaml'",
	}
}
