package usecase

import (
	"context"
	"time"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/metrics"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

const metricsDomain = "record"

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	r.recordStatus(ctx, operation, start, metrics.StatusOf(err))
}

func (r *recordUseCaseWithMetrics) recordStatus(ctx context.Context, operation string, start time.Time, status string) {
	r.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	r.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// batchStatus is "partial" when some but not all ids failed.
func batchStatus(succeeded, failed int) string {
	switch {
	case failed == 0:
		return metrics.StatusSuccess
	case succeeded == 0:
		return metrics.StatusError
	default:
		return metrics.StatusPartial
	}
}

// Create records metrics for record creation.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	resource recordDomain.Resource,
	annotations []string,
	creationDate *time.Time,
) (*recordDomain.Record, error) {
	start := time.Now()
	rec, err := r.next.Create(ctx, resource, annotations, creationDate)
	r.record(ctx, "record_create", start, err)
	return rec, err
}

// Update records metrics for record updates.
func (r *recordUseCaseWithMetrics) Update(
	ctx context.Context,
	recordID string,
	resource recordDomain.Resource,
	annotations []string,
) (*recordDomain.Record, error) {
	start := time.Now()
	rec, err := r.next.Update(ctx, recordID, resource, annotations)
	r.record(ctx, "record_update", start, err)
	return rec, err
}

// Fetch records metrics for record retrieval.
func (r *recordUseCaseWithMetrics) Fetch(ctx context.Context, recordID string) (*recordDomain.Record, error) {
	start := time.Now()
	rec, err := r.next.Fetch(ctx, recordID)
	r.record(ctx, "record_fetch", start, err)
	return rec, err
}

// Search records metrics for record searches.
func (r *recordUseCaseWithMetrics) Search(
	ctx context.Context,
	criteria recordDomain.SearchCriteria,
) (*recordDomain.SearchResult, error) {
	start := time.Now()
	result, err := r.next.Search(ctx, criteria)
	r.record(ctx, "record_search", start, err)
	return result, err
}

// Count records metrics for record counts.
func (r *recordUseCaseWithMetrics) Count(ctx context.Context, criteria recordDomain.SearchCriteria) (int, error) {
	start := time.Now()
	count, err := r.next.Count(ctx, criteria)
	r.record(ctx, "record_count", start, err)
	return count, err
}

// Delete records metrics for record deletion.
func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, recordID string) error {
	start := time.Now()
	err := r.next.Delete(ctx, recordID)
	r.record(ctx, "record_delete", start, err)
	return err
}

// Download records metrics for record downloads.
func (r *recordUseCaseWithMetrics) Download(
	ctx context.Context,
	recordID string,
	downloadType attachmentDomain.DownloadType,
) (*recordDomain.Record, error) {
	start := time.Now()
	rec, err := r.next.Download(ctx, recordID, downloadType)
	r.record(ctx, "record_download", start, err)
	return rec, err
}

// DownloadAttachment records metrics for single attachment downloads.
func (r *recordUseCaseWithMetrics) DownloadAttachment(
	ctx context.Context,
	recordID, attachmentID string,
	downloadType attachmentDomain.DownloadType,
) (*fhir.Attachment, error) {
	start := time.Now()
	att, err := r.next.DownloadAttachment(ctx, recordID, attachmentID, downloadType)
	r.record(ctx, "attachment_download", start, err)
	return att, err
}

// DownloadAttachments records metrics for attachment downloads.
func (r *recordUseCaseWithMetrics) DownloadAttachments(
	ctx context.Context,
	recordID string,
	attachmentIDs []string,
	downloadType attachmentDomain.DownloadType,
) ([]*fhir.Attachment, error) {
	start := time.Now()
	atts, err := r.next.DownloadAttachments(ctx, recordID, attachmentIDs, downloadType)
	r.record(ctx, "attachments_download", start, err)
	return atts, err
}

// FetchBatch records metrics for batch fetches.
func (r *recordUseCaseWithMetrics) FetchBatch(
	ctx context.Context,
	recordIDs []string,
) *recordDomain.BatchResult[*recordDomain.Record] {
	start := time.Now()
	result := r.next.FetchBatch(ctx, recordIDs)
	r.recordStatus(ctx, "record_fetch_batch", start, batchStatus(len(result.Successes), len(result.Failures)))
	return result
}

// DeleteBatch records metrics for batch deletions.
func (r *recordUseCaseWithMetrics) DeleteBatch(
	ctx context.Context,
	recordIDs []string,
) *recordDomain.BatchResult[string] {
	start := time.Now()
	result := r.next.DeleteBatch(ctx, recordIDs)
	r.recordStatus(ctx, "record_delete_batch", start, batchStatus(len(result.Successes), len(result.Failures)))
	return result
}

// DownloadBatch records metrics for batch downloads.
func (r *recordUseCaseWithMetrics) DownloadBatch(
	ctx context.Context,
	recordIDs []string,
	downloadType attachmentDomain.DownloadType,
) *recordDomain.BatchResult[*recordDomain.Record] {
	start := time.Now()
	result := r.next.DownloadBatch(ctx, recordIDs, downloadType)
	r.recordStatus(ctx, "record_download_batch", start, batchStatus(len(result.Successes), len(result.Failures)))
	return result
}
