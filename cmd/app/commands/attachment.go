package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/phrsdk"
)

// RunDownloadAttachments downloads attachments of one record and writes each payload to
// outputDir. Without attachment ids every attachment of the record is downloaded.
func RunDownloadAttachments(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	recordID string,
	attachmentIDs []string,
	downloadType string,
	outputDir string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if recordID == "" {
		return errors.New("record id is required")
	}
	if outputDir == "" {
		return errors.New("output directory is required")
	}
	dt, err := phrsdk.ParseDownloadType(downloadType)
	if err != nil {
		return err
	}

	if len(attachmentIDs) == 0 {
		record, err := client.FetchRecord(ctx, recordID)
		if err != nil {
			return fmt.Errorf("failed to fetch record: %w", err)
		}
		for _, att := range record.Resource.Attachments() {
			attachmentIDs = append(attachmentIDs, att.ID)
		}
		if len(attachmentIDs) == 0 {
			return fmt.Errorf("record %s has no attachments", recordID)
		}
	}

	attachments, err := client.DownloadAttachments(ctx, recordID, attachmentIDs, dt)
	if err != nil {
		return fmt.Errorf("failed to download attachments: %w", err)
	}

	views := make([]attachmentView, 0, len(attachments))
	for _, att := range attachments {
		path, err := saveAttachment(outputDir, att)
		if err != nil {
			return err
		}
		view := newAttachmentView(att)
		view.Path = path
		views = append(views, view)
	}

	logger.Info("attachments downloaded",
		slog.String("record_id", recordID),
		slog.String("download_type", dt.String()),
		slog.Int("count", len(views)),
	)

	return writeResult(w, format, views, func(w io.Writer) {
		for _, view := range views {
			_, _ = fmt.Fprintf(w, "Saved %s (%d bytes) to %s\n", view.ID, view.Size, view.Path)
		}
	})
}
