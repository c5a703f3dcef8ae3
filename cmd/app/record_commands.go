package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/phrsdk"
	"github.com/allisson/phrsdk/cmd/app/commands"
)

// recordIDs collects ids given with --id and as positional arguments.
func recordIDs(cmd *cli.Command) []string {
	return append(cmd.StringSlice("id"), cmd.Args().Slice()...)
}

func resourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "Resource file, or '-' for standard input",
		},
		&cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Value:   "fhir4",
			Usage:   "Resource kind: 'fhir3', 'fhir4' or 'data'",
		},
		&cli.StringSliceFlag{
			Name:    "annotation",
			Aliases: []string{"a"},
			Usage:   "Custom annotation (repeatable)",
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Usage:   "Only records of this kind: 'fhir3', 'fhir4' or 'data'",
		},
		&cli.StringFlag{
			Name:    "resource-type",
			Aliases: []string{"r"},
			Usage:   "Only FHIR resources of this type (e.g. DocumentReference)",
		},
		&cli.StringSliceFlag{
			Name:    "annotation",
			Aliases: []string{"a"},
			Usage:   "Only records carrying this annotation (repeatable)",
		},
		&cli.StringFlag{
			Name:  "start-date",
			Usage: "Earliest creation date, YYYY-MM-DD",
		},
		&cli.StringFlag{
			Name:  "end-date",
			Usage: "Latest creation date, YYYY-MM-DD",
		},
	}
}

func searchOptions(cmd *cli.Command) commands.SearchOptions {
	return commands.SearchOptions{
		Kind:         cmd.String("kind"),
		ResourceType: cmd.String("resource-type"),
		Annotations:  cmd.StringSlice("annotation"),
		StartDate:    cmd.String("start-date"),
		EndDate:      cmd.String("end-date"),
		Limit:        int(cmd.Int("limit")),
		Offset:       int(cmd.Int("offset")),
	}
}

func idsFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "id",
		Usage: "Record ID (repeatable, also accepted as arguments)",
	}
}

func downloadTypeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Value:   "full",
		Usage:   "Attachment size: 'full', 'medium' or 'small'",
	}
}

func getRecordCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "record",
			Usage: "Manage encrypted records",
			Commands: []*cli.Command{
				{
					Name:  "create",
					Usage: "Encrypt a resource and store it as a new record",
					Flags: append(resourceFlags(),
						&cli.StringFlag{
							Name:    "date",
							Aliases: []string{"d"},
							Usage:   "Custom creation date, YYYY-MM-DD (defaults to today)",
						},
						formatFlag(),
					),
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunCreateRecord(
								ctx,
								client,
								logger,
								commands.ResourceInput{Path: cmd.String("file"), Kind: cmd.String("kind")},
								cmd.StringSlice("annotation"),
								cmd.String("date"),
								cmd.String("format"),
								commands.DefaultIO(),
							)
						})
					},
				},
				{
					Name:  "update",
					Usage: "Replace the resource and annotations of a record",
					Flags: append(resourceFlags(),
						&cli.StringFlag{
							Name:     "id",
							Required: true,
							Usage:    "Record ID",
						},
						formatFlag(),
					),
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunUpdateRecord(
								ctx,
								client,
								logger,
								cmd.String("id"),
								commands.ResourceInput{Path: cmd.String("file"), Kind: cmd.String("kind")},
								cmd.StringSlice("annotation"),
								cmd.String("format"),
								commands.DefaultIO(),
							)
						})
					},
				},
				{
					Name:      "fetch",
					Usage:     "Fetch and decrypt records without attachment payloads",
					ArgsUsage: "[RECORD_ID...]",
					Flags:     []cli.Flag{idsFlag(), formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunFetchRecords(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								recordIDs(cmd),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:  "search",
					Usage: "Search records by kind, annotations and creation date",
					Flags: append(searchFlags(),
						&cli.IntFlag{
							Name:    "limit",
							Aliases: []string{"l"},
							Value:   20,
							Usage:   "Page size (1-100)",
						},
						&cli.IntFlag{
							Name:    "offset",
							Aliases: []string{"o"},
							Usage:   "Number of records to skip",
						},
						formatFlag(),
					),
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunSearchRecords(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								searchOptions(cmd),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:  "count",
					Usage: "Count records matching the filters",
					Flags: append(searchFlags(), formatFlag()),
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunCountRecords(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								searchOptions(cmd),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:      "delete",
					Usage:     "Delete records",
					ArgsUsage: "[RECORD_ID...]",
					Flags:     []cli.Flag{idsFlag(), formatFlag()},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunDeleteRecords(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								recordIDs(cmd),
								cmd.String("format"),
							)
						})
					},
				},
				{
					Name:      "download",
					Usage:     "Download records with their attachments",
					ArgsUsage: "[RECORD_ID...]",
					Flags: []cli.Flag{
						idsFlag(),
						downloadTypeFlag(),
						&cli.StringFlag{
							Name:    "output",
							Aliases: []string{"o"},
							Usage:   "Directory the attachments are written to",
						},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunDownloadRecords(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								recordIDs(cmd),
								cmd.String("type"),
								cmd.String("output"),
								cmd.String("format"),
							)
						})
					},
				},
			},
		},
		{
			Name:  "attachment",
			Usage: "Manage record attachments",
			Commands: []*cli.Command{
				{
					Name:      "download",
					Usage:     "Download attachments of a record to a directory",
					ArgsUsage: "[ATTACHMENT_ID...]",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "record-id",
							Required: true,
							Usage:    "Record ID",
						},
						downloadTypeFlag(),
						&cli.StringFlag{
							Name:    "output",
							Aliases: []string{"o"},
							Value:   ".",
							Usage:   "Directory the attachments are written to",
						},
						formatFlag(),
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						return withClient(ctx, func(client *phrsdk.Client, logger *slog.Logger) error {
							return commands.RunDownloadAttachments(
								ctx,
								client,
								logger,
								commands.DefaultIO().Writer,
								cmd.String("record-id"),
								cmd.Args().Slice(),
								cmd.String("type"),
								cmd.String("output"),
								cmd.String("format"),
							)
						})
					},
				},
			},
		},
	}
}
