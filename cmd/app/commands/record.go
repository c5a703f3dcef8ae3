package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/allisson/phrsdk"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

// RecordClient is the part of the SDK client the record commands use.
type RecordClient interface {
	CreateRecord(
		ctx context.Context,
		resource phrsdk.Resource,
		annotations []string,
		creationDate *time.Time,
	) (*phrsdk.Record, error)
	UpdateRecord(
		ctx context.Context,
		recordID string,
		resource phrsdk.Resource,
		annotations []string,
	) (*phrsdk.Record, error)
	FetchRecord(ctx context.Context, recordID string) (*phrsdk.Record, error)
	FetchRecords(ctx context.Context, recordIDs []string) *phrsdk.BatchResult[*phrsdk.Record]
	SearchRecords(ctx context.Context, criteria phrsdk.SearchCriteria) (*phrsdk.SearchResult, error)
	CountRecords(ctx context.Context, criteria phrsdk.SearchCriteria) (int, error)
	DeleteRecords(ctx context.Context, recordIDs []string) *phrsdk.BatchResult[string]
	DownloadRecords(
		ctx context.Context,
		recordIDs []string,
		downloadType phrsdk.DownloadType,
	) *phrsdk.BatchResult[*phrsdk.Record]
	DownloadAttachments(
		ctx context.Context,
		recordID string,
		attachmentIDs []string,
		downloadType phrsdk.DownloadType,
	) ([]*phrsdk.Attachment, error)
}

// ResourceInput names the file holding a resource and how to parse it.
type ResourceInput struct {
	// Path is a file path, or "-" for standard input.
	Path string
	// Kind is "fhir3", "fhir4" or "data".
	Kind string
}

// SearchOptions are the filters shared by search and count.
type SearchOptions struct {
	Kind         string
	ResourceType string
	Annotations  []string
	StartDate    string
	EndDate      string
	Limit        int
	Offset       int
}

type searchView struct {
	TotalCount int          `json:"total_count" yaml:"total_count"`
	Records    []recordView `json:"records" yaml:"records"`
}

type batchView struct {
	Records  []recordView  `json:"records,omitempty" yaml:"records,omitempty"`
	Deleted  []string      `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Failures []failureView `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// errBatchFailures is returned after the output of a batch command with failed ids.
var errBatchFailures = errors.New("some records failed")

// RunCreateRecord encrypts the resource in input and stores it as a new record.
func RunCreateRecord(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	input ResourceInput,
	annotations []string,
	date string,
	format string,
	in IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	resource, err := loadResource(input, in)
	if err != nil {
		return err
	}

	var creationDate *time.Time
	if date != "" {
		parsed, err := parseDate(date)
		if err != nil {
			return err
		}
		creationDate = &parsed
	}

	record, err := client.CreateRecord(ctx, resource, annotations, creationDate)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}

	logger.Info("record created", slog.String("record_id", record.ID))
	return writeRecord(in.Writer, format, record)
}

// RunUpdateRecord replaces the resource and annotations of recordID.
func RunUpdateRecord(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	recordID string,
	input ResourceInput,
	annotations []string,
	format string,
	in IOTuple,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	resource, err := loadResource(input, in)
	if err != nil {
		return err
	}

	record, err := client.UpdateRecord(ctx, recordID, resource, annotations)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	logger.Info("record updated", slog.String("record_id", record.ID))
	return writeRecord(in.Writer, format, record)
}

// RunFetchRecords prints the listed records without attachment payloads. More than one id
// is fetched as a batch: the records that could be read are printed and the failures
// listed after them.
func RunFetchRecords(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	recordIDs []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if len(recordIDs) == 0 {
		return errors.New("at least one record id is required")
	}

	if len(recordIDs) == 1 {
		record, err := client.FetchRecord(ctx, recordIDs[0])
		if err != nil {
			return fmt.Errorf("failed to fetch record: %w", err)
		}
		return writeRecord(w, format, record)
	}

	result := client.FetchRecords(ctx, recordIDs)
	logger.Info("records fetched",
		slog.Int("succeeded", len(result.Successes)),
		slog.Int("failed", len(result.Failures)),
	)
	return writeRecordBatch(w, format, result, nil)
}

// RunSearchRecords prints one page of matching records.
func RunSearchRecords(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	options SearchOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	criteria, err := options.criteria()
	if err != nil {
		return err
	}

	result, err := client.SearchRecords(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to search records: %w", err)
	}

	views, err := newRecordViews(result.Records)
	if err != nil {
		return err
	}

	logger.Info("records searched",
		slog.Int("returned", len(result.Records)),
		slog.Int("total", result.TotalCount),
	)

	view := searchView{TotalCount: result.TotalCount, Records: views}
	return writeResult(w, format, view, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "Found %d record(s), showing %d\n", view.TotalCount, len(view.Records))
		for _, record := range view.Records {
			_, _ = fmt.Fprintln(w)
			writeRecordText(w, record)
		}
	})
}

// RunCountRecords prints the number of matching records.
func RunCountRecords(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	options SearchOptions,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	criteria, err := options.criteria()
	if err != nil {
		return err
	}

	count, err := client.CountRecords(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	logger.Info("records counted", slog.Int("count", count))

	return writeResult(w, format, map[string]int{"count": count}, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, "%d record(s)\n", count)
	})
}

// RunDeleteRecords deletes every listed record independently.
func RunDeleteRecords(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	recordIDs []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if len(recordIDs) == 0 {
		return errors.New("at least one record id is required")
	}

	result := client.DeleteRecords(ctx, recordIDs)
	logger.Info("records deleted",
		slog.Int("succeeded", len(result.Successes)),
		slog.Int("failed", len(result.Failures)),
	)

	view := batchView{Deleted: result.Successes, Failures: newFailureViews(result.Failures)}
	if err := writeResult(w, format, view, func(w io.Writer) {
		for _, id := range view.Deleted {
			_, _ = fmt.Fprintf(w, "Deleted %s\n", id)
		}
		writeFailuresText(w, view.Failures)
	}); err != nil {
		return err
	}
	return batchError(len(result.Failures), len(recordIDs))
}

// RunDownloadRecords downloads the listed records with their attachments. With an
// output directory the payloads are written below <outputDir>/<recordID>.
func RunDownloadRecords(
	ctx context.Context,
	client RecordClient,
	logger *slog.Logger,
	w io.Writer,
	recordIDs []string,
	downloadType string,
	outputDir string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if len(recordIDs) == 0 {
		return errors.New("at least one record id is required")
	}
	dt, err := phrsdk.ParseDownloadType(downloadType)
	if err != nil {
		return err
	}

	result := client.DownloadRecords(ctx, recordIDs, dt)
	logger.Info("records downloaded",
		slog.String("download_type", dt.String()),
		slog.Int("succeeded", len(result.Successes)),
		slog.Int("failed", len(result.Failures)),
	)

	return writeRecordBatch(w, format, result, func(record *phrsdk.Record, view *recordView) error {
		if outputDir == "" {
			return nil
		}
		for i, att := range record.Resource.Attachments() {
			path, err := saveAttachment(filepath.Join(outputDir, record.ID), att)
			if err != nil {
				return err
			}
			view.Attachments[i].Path = path
		}
		return nil
	})
}

func (o SearchOptions) criteria() (phrsdk.SearchCriteria, error) {
	criteria := phrsdk.SearchCriteria{
		ResourceType: o.ResourceType,
		Annotations:  o.Annotations,
		Limit:        o.Limit,
		Offset:       o.Offset,
	}

	switch o.Kind {
	case "":
	case "fhir3":
		criteria.Kind = phrsdk.KindFhir3
	case "fhir4":
		criteria.Kind = phrsdk.KindFhir4
	case "data":
		criteria.Kind = phrsdk.KindData
	default:
		return criteria, fmt.Errorf("invalid kind: %s (valid options: fhir3, fhir4, data)", o.Kind)
	}

	if o.StartDate != "" {
		start, err := parseDate(o.StartDate)
		if err != nil {
			return criteria, err
		}
		criteria.StartDate = &start
	}
	if o.EndDate != "" {
		end, err := parseDate(o.EndDate)
		if err != nil {
			return criteria, err
		}
		criteria.EndDate = &end
	}
	return criteria, nil
}

func loadResource(input ResourceInput, in IOTuple) (phrsdk.Resource, error) {
	if input.Path == "" {
		return phrsdk.Resource{}, errors.New("a resource file is required")
	}

	data, err := readInput(input.Path, in)
	if err != nil {
		return phrsdk.Resource{}, err
	}

	switch input.Kind {
	case "fhir3":
		resource, err := phrsdk.DecodeFhir3(data)
		if err != nil {
			return phrsdk.Resource{}, fmt.Errorf("failed to parse FHIR STU3 resource: %w", err)
		}
		return phrsdk.NewFhir3Resource(resource), nil
	case "fhir4", "":
		resource, err := phrsdk.DecodeFhir4(data)
		if err != nil {
			return phrsdk.Resource{}, fmt.Errorf("failed to parse FHIR R4 resource: %w", err)
		}
		return phrsdk.NewFhir4Resource(resource), nil
	case "data":
		return phrsdk.NewDataResource(data), nil
	default:
		return phrsdk.Resource{}, fmt.Errorf("invalid kind: %s (valid options: fhir3, fhir4, data)", input.Kind)
	}
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(recordDomain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

func writeRecord(w io.Writer, format string, record *phrsdk.Record) error {
	view, err := newRecordView(record)
	if err != nil {
		return err
	}
	return writeResult(w, format, view, func(w io.Writer) {
		writeRecordText(w, view)
	})
}

// writeRecordBatch prints the records and failures of result. decorate may amend the
// view of each record before it is printed.
func writeRecordBatch(
	w io.Writer,
	format string,
	result *phrsdk.BatchResult[*phrsdk.Record],
	decorate func(*phrsdk.Record, *recordView) error,
) error {
	view := batchView{Failures: newFailureViews(result.Failures)}
	for _, record := range result.Successes {
		rv, err := newRecordView(record)
		if err != nil {
			return err
		}
		if decorate != nil {
			if err := decorate(record, &rv); err != nil {
				return err
			}
		}
		view.Records = append(view.Records, rv)
	}

	if err := writeResult(w, format, view, func(w io.Writer) {
		for i, record := range view.Records {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			writeRecordText(w, record)
		}
		writeFailuresText(w, view.Failures)
	}); err != nil {
		return err
	}
	return batchError(len(result.Failures), len(result.Successes)+len(result.Failures))
}

func batchError(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", errBatchFailures, failed, total)
}
