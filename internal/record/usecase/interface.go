// Package usecase implements the record operations of the client.
//
// Every operation is a linear pipeline: default tags, key resolution, attachment
// upload, envelope encryption and the backend call, or the reverse for reads. Batch
// operations run the single-record pipeline per id and never abort on one failure.
package usecase

import (
	"context"
	"time"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	"github.com/allisson/phrsdk/internal/fhir"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

// RecordRepository exchanges encrypted envelopes with the backend.
type RecordRepository interface {
	Create(ctx context.Context, record *recordDomain.EncryptedRecord) (*recordDomain.EncryptedRecord, error)
	Update(ctx context.Context, record *recordDomain.EncryptedRecord) (*recordDomain.EncryptedRecord, error)
	Get(ctx context.Context, recordID string) (*recordDomain.EncryptedRecord, error)
	Search(ctx context.Context, query recordDomain.SearchQuery) ([]*recordDomain.EncryptedRecord, int, error)
	Count(ctx context.Context, query recordDomain.SearchQuery) (int, error)
	Delete(ctx context.Context, recordID string) error
}

// RecordUseCase defines the record operations.
type RecordUseCase interface {
	// Create stores a new record. creationDate defaults to today.
	Create(
		ctx context.Context,
		resource recordDomain.Resource,
		annotations []string,
		creationDate *time.Time,
	) (*recordDomain.Record, error)

	// Update replaces the resource and annotations of an existing record. Attachments that
	// keep their id and carry no data are left in place.
	Update(
		ctx context.Context,
		recordID string,
		resource recordDomain.Resource,
		annotations []string,
	) (*recordDomain.Record, error)

	// Fetch returns a record without attachment payloads.
	Fetch(ctx context.Context, recordID string) (*recordDomain.Record, error)

	// Search returns the records matching criteria.
	Search(ctx context.Context, criteria recordDomain.SearchCriteria) (*recordDomain.SearchResult, error)

	// Count returns the number of records matching criteria. Paging fields are ignored.
	Count(ctx context.Context, criteria recordDomain.SearchCriteria) (int, error)

	// Delete removes a record.
	Delete(ctx context.Context, recordID string) error

	// Download returns a record with every attachment payload inline.
	Download(
		ctx context.Context,
		recordID string,
		downloadType attachmentDomain.DownloadType,
	) (*recordDomain.Record, error)

	// DownloadAttachment returns one attachment of a record with its payload.
	DownloadAttachment(
		ctx context.Context,
		recordID, attachmentID string,
		downloadType attachmentDomain.DownloadType,
	) (*fhir.Attachment, error)

	// DownloadAttachments returns the listed attachments of a record with their payloads.
	DownloadAttachments(
		ctx context.Context,
		recordID string,
		attachmentIDs []string,
		downloadType attachmentDomain.DownloadType,
	) ([]*fhir.Attachment, error)

	// FetchBatch fetches every id independently.
	FetchBatch(ctx context.Context, recordIDs []string) *recordDomain.BatchResult[*recordDomain.Record]

	// DeleteBatch deletes every id independently. Successes holds the deleted ids.
	DeleteBatch(ctx context.Context, recordIDs []string) *recordDomain.BatchResult[string]

	// DownloadBatch downloads every id independently.
	DownloadBatch(
		ctx context.Context,
		recordIDs []string,
		downloadType attachmentDomain.DownloadType,
	) *recordDomain.BatchResult[*recordDomain.Record]
}
