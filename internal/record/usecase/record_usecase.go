package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	attachmentUsecase "github.com/allisson/phrsdk/internal/attachment/usecase"
	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoUsecase "github.com/allisson/phrsdk/internal/crypto/usecase"
	"github.com/allisson/phrsdk/internal/fhir"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
	recordService "github.com/allisson/phrsdk/internal/record/service"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
	tagService "github.com/allisson/phrsdk/internal/tag/service"
)

// recordUseCase implements RecordUseCase.
type recordUseCase struct {
	records          RecordRepository
	keys             cryptoUsecase.KeyUseCase
	crypto           *recordService.CryptoService
	tagging          *tagService.TaggingService
	tagEncryption    *tagService.EncryptionService
	attachments      attachmentUsecase.AttachmentUseCase
	batchConcurrency int
	logger           *slog.Logger
}

// NewRecordUseCase creates a RecordUseCase. batchConcurrency bounds the ids processed at
// once by the batch operations; values below 1 mean unbounded.
func NewRecordUseCase(
	records RecordRepository,
	keys cryptoUsecase.KeyUseCase,
	crypto *recordService.CryptoService,
	tagging *tagService.TaggingService,
	tagEncryption *tagService.EncryptionService,
	attachments attachmentUsecase.AttachmentUseCase,
	batchConcurrency int,
	logger *slog.Logger,
) RecordUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordUseCase{
		records:          records,
		keys:             keys,
		crypto:           crypto,
		tagging:          tagging,
		tagEncryption:    tagEncryption,
		attachments:      attachments,
		batchConcurrency: batchConcurrency,
		logger:           logger,
	}
}

func (r *recordUseCase) Create(
	ctx context.Context,
	resource recordDomain.Resource,
	annotations []string,
	creationDate *time.Time,
) (*recordDomain.Record, error) {
	if err := validateResource(resource); err != nil {
		return nil, err
	}

	tags := r.tagging.AppendDefaultTags(resource.Descriptor(), nil)
	if err := validateTags(tags, annotations); err != nil {
		return nil, err
	}

	dataKey, err := r.keys.GenerateDataKey()
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if creationDate != nil {
		date = *creationDate
	}
	date = truncateToDay(date)

	rec := &recordDomain.DecryptedRecord{
		Resource:           resource,
		Tags:               tags,
		Annotations:        annotations,
		CustomCreationDate: date,
		DataKey:            dataKey,
		ModelVersion:       recordDomain.CurrentModelVersion,
		Status:             recordDomain.StatusActive,
	}
	defer rec.Destroy()

	if err := r.uploadAttachments(ctx, rec, nil); err != nil {
		return nil, err
	}

	encrypted, err := r.crypto.Encrypt(ctx, rec)
	if err != nil {
		return nil, err
	}

	created, err := r.records.Create(ctx, encrypted)
	if err != nil {
		return nil, err
	}

	return completed(rec, created)
}

func (r *recordUseCase) Update(
	ctx context.Context,
	recordID string,
	resource recordDomain.Resource,
	annotations []string,
) (*recordDomain.Record, error) {
	if recordID == "" {
		return nil, recordDomain.ErrRecordIDRequired
	}
	if err := validateResource(resource); err != nil {
		return nil, err
	}

	old, err := r.fetchDecrypted(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if old.Resource.Kind != resource.Kind {
		old.Destroy()
		return nil, fmt.Errorf("%w: %s record updated with %s", recordDomain.ErrResourceKindMismatch,
			old.Resource.Kind, resource.Kind)
	}

	tags := r.tagging.AppendDefaultTags(resource.Descriptor(), old.Tags)
	if err := validateTags(tags, annotations); err != nil {
		old.Destroy()
		return nil, err
	}

	resource.SetID(recordID)
	rec := &recordDomain.DecryptedRecord{
		ID:                 recordID,
		Resource:           resource,
		Tags:               tags,
		Annotations:        annotations,
		CustomCreationDate: old.CustomCreationDate,
		DataKey:            old.DataKey,
		ModelVersion:       recordDomain.CurrentModelVersion,
		Status:             old.Status,
	}
	defer func() {
		old.Destroy()
		rec.Destroy()
	}()

	if err := r.uploadAttachments(ctx, rec, old.AttachmentKey); err != nil {
		return nil, err
	}

	encrypted, err := r.crypto.Encrypt(ctx, rec)
	if err != nil {
		return nil, err
	}

	updated, err := r.records.Update(ctx, encrypted)
	if err != nil {
		return nil, err
	}

	return completed(rec, updated)
}

func (r *recordUseCase) Fetch(ctx context.Context, recordID string) (*recordDomain.Record, error) {
	rec, err := r.fetchDecrypted(ctx, recordID)
	if err != nil {
		return nil, err
	}
	defer rec.Destroy()
	return rec.ToRecord(), nil
}

func (r *recordUseCase) Search(
	ctx context.Context,
	criteria recordDomain.SearchCriteria,
) (*recordDomain.SearchResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	query, err := r.buildQuery(ctx, criteria)
	if err != nil {
		return nil, err
	}
	query.Limit = criteria.PageLimit()
	query.Offset = criteria.Offset

	encrypted, total, err := r.records.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	records := make([]*recordDomain.Record, 0, len(encrypted))
	for _, enc := range encrypted {
		rec, err := r.crypto.Decrypt(ctx, enc)
		if err != nil {
			r.logger.Debug("failed to decrypt search result",
				slog.String("record_id", enc.ID),
				slog.Any("error", err),
			)
			return nil, err
		}
		records = append(records, rec.ToRecord())
		rec.Destroy()
	}

	return &recordDomain.SearchResult{Records: records, TotalCount: total}, nil
}

func (r *recordUseCase) Count(ctx context.Context, criteria recordDomain.SearchCriteria) (int, error) {
	criteria.Limit = 0
	criteria.Offset = 0
	if err := criteria.Validate(); err != nil {
		return 0, err
	}

	query, err := r.buildQuery(ctx, criteria)
	if err != nil {
		return 0, err
	}
	return r.records.Count(ctx, query)
}

func (r *recordUseCase) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return recordDomain.ErrRecordIDRequired
	}
	return r.records.Delete(ctx, recordID)
}

func (r *recordUseCase) Download(
	ctx context.Context,
	recordID string,
	downloadType attachmentDomain.DownloadType,
) (*recordDomain.Record, error) {
	rec, err := r.fetchDecrypted(ctx, recordID)
	if err != nil {
		return nil, err
	}
	defer rec.Destroy()

	key, err := r.attachmentKeyFor(rec)
	if err != nil {
		return nil, err
	}
	if key != nil {
		if err := r.attachments.Download(ctx, rec.Resource.Fhir, key, downloadType); err != nil {
			return nil, err
		}
	}
	return rec.ToRecord(), nil
}

func (r *recordUseCase) DownloadAttachment(
	ctx context.Context,
	recordID, attachmentID string,
	downloadType attachmentDomain.DownloadType,
) (*fhir.Attachment, error) {
	attachments, err := r.DownloadAttachments(ctx, recordID, []string{attachmentID}, downloadType)
	if err != nil {
		return nil, err
	}
	return attachments[0], nil
}

func (r *recordUseCase) DownloadAttachments(
	ctx context.Context,
	recordID string,
	attachmentIDs []string,
	downloadType attachmentDomain.DownloadType,
) ([]*fhir.Attachment, error) {
	rec, err := r.fetchDecrypted(ctx, recordID)
	if err != nil {
		return nil, err
	}
	defer rec.Destroy()

	if rec.Resource.Kind == recordDomain.KindData {
		return nil, recordDomain.ErrNotAFhirRecord
	}

	key, err := r.attachmentKeyFor(rec)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, attachmentDomain.ErrInvalidAttachmentIDs
	}
	return r.attachments.DownloadAttachments(ctx, rec.Resource.Fhir, key, attachmentIDs, downloadType)
}

func (r *recordUseCase) FetchBatch(
	ctx context.Context,
	recordIDs []string,
) *recordDomain.BatchResult[*recordDomain.Record] {
	return runBatch(ctx, recordIDs, r.batchConcurrency, r.logger, "fetch", r.Fetch)
}

func (r *recordUseCase) DeleteBatch(ctx context.Context, recordIDs []string) *recordDomain.BatchResult[string] {
	return runBatch(ctx, recordIDs, r.batchConcurrency, r.logger, "delete",
		func(ctx context.Context, id string) (string, error) {
			if err := r.Delete(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		})
}

func (r *recordUseCase) DownloadBatch(
	ctx context.Context,
	recordIDs []string,
	downloadType attachmentDomain.DownloadType,
) *recordDomain.BatchResult[*recordDomain.Record] {
	return runBatch(ctx, recordIDs, r.batchConcurrency, r.logger, "download",
		func(ctx context.Context, id string) (*recordDomain.Record, error) {
			return r.Download(ctx, id, downloadType)
		})
}

func (r *recordUseCase) fetchDecrypted(ctx context.Context, recordID string) (*recordDomain.DecryptedRecord, error) {
	if recordID == "" {
		return nil, recordDomain.ErrRecordIDRequired
	}
	encrypted, err := r.records.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return r.crypto.Decrypt(ctx, encrypted)
}

// uploadAttachments stores the new attachments of a FHIR record and sets its attachment
// key. existing is the key the record already had, if any.
func (r *recordUseCase) uploadAttachments(
	ctx context.Context,
	rec *recordDomain.DecryptedRecord,
	existing *cryptoDomain.Key,
) error {
	if rec.Resource.Kind == recordDomain.KindData {
		return nil
	}

	resolver := r.keys.NewAttachmentKeyResolver(existing)
	if err := r.attachments.Upload(ctx, rec.Resource.Fhir, resolver, r.tagging.PartnerID()); err != nil {
		if resolver.Generated() {
			resolver.Key().Destroy()
		}
		return err
	}
	rec.AttachmentKey = resolver.Key()
	return nil
}

// downloadState tells how the attachment key of a downloaded record is obtained.
type downloadState int

const (
	noAttachments downloadState = iota
	attachmentsWithKnownKey
	attachmentsKeyMissing
)

func stateOf(rec *recordDomain.DecryptedRecord) downloadState {
	switch {
	case !rec.Resource.HasAttachments():
		return noAttachments
	case rec.AttachmentKey != nil:
		return attachmentsWithKnownKey
	default:
		return attachmentsKeyMissing
	}
}

// attachmentKeyFor returns the key to download the attachments of rec with, or nil
// when there is nothing to download. A missing key is generated and set on rec.
func (r *recordUseCase) attachmentKeyFor(rec *recordDomain.DecryptedRecord) (*cryptoDomain.Key, error) {
	switch stateOf(rec) {
	case noAttachments:
		return nil, nil
	case attachmentsWithKnownKey:
		return rec.AttachmentKey, nil
	case attachmentsKeyMissing:
		key, err := r.keys.NewAttachmentKeyResolver(nil).Resolve()
		if err != nil {
			return nil, err
		}
		r.logger.Warn("record has attachments but no attachment key",
			slog.String("record_id", rec.ID),
		)
		rec.AttachmentKey = key
		return key, nil
	default:
		return nil, nil
	}
}

func (r *recordUseCase) buildQuery(
	ctx context.Context,
	criteria recordDomain.SearchCriteria,
) (recordDomain.SearchQuery, error) {
	tags := tagDomain.Tags{}
	if descriptor, ok := criteria.Descriptor(); ok {
		tags = r.tagging.TagsForType(descriptor)
	}

	tagKey, err := r.keys.TagKey(ctx)
	if err != nil {
		return recordDomain.SearchQuery{}, err
	}
	encrypted, err := r.tagEncryption.EncryptSearchTags(tags, criteria.Annotations, tagKey)
	if err != nil {
		return recordDomain.SearchQuery{}, err
	}

	query := recordDomain.SearchQuery{Tags: encrypted}
	if criteria.StartDate != nil {
		query.StartDate = recordDomain.FormatDate(*criteria.StartDate)
	}
	if criteria.EndDate != nil {
		query.EndDate = recordDomain.FormatDate(*criteria.EndDate)
	}
	return query, nil
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func validateResource(resource recordDomain.Resource) error {
	if err := resource.Validate(); err != nil {
		return err
	}
	if resource.Kind == recordDomain.KindData {
		return tagService.CheckDataLimit(resource.Data)
	}
	return nil
}

func validateTags(tags tagDomain.Tags, annotations []string) error {
	if err := tagService.CheckTagsAndAnnotationsLimits(tags, annotations); err != nil {
		return err
	}
	return tagService.ValidateAnnotations(tags, annotations)
}

// completed applies what the backend assigned to rec and returns the caller view.
func completed(
	rec *recordDomain.DecryptedRecord,
	stored *recordDomain.EncryptedRecord,
) (*recordDomain.Record, error) {
	updatedDate, err := recordDomain.ParseUpdatedDate(stored.UpdatedDate)
	if err != nil {
		return nil, err
	}

	rec.ID = stored.ID
	rec.Resource.SetID(stored.ID)
	rec.UpdatedDate = updatedDate
	if stored.Status != "" {
		rec.Status = stored.Status
	}
	return rec.ToRecord(), nil
}

// runBatch applies fn to every id. Failures are collected, never returned early, so one
// failing id does not cancel the others.
func runBatch[T any](
	ctx context.Context,
	ids []string,
	limit int,
	logger *slog.Logger,
	operation string,
	fn func(ctx context.Context, id string) (T, error),
) *recordDomain.BatchResult[T] {
	result := &recordDomain.BatchResult[T]{}
	var mu sync.Mutex

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, id := range ids {
		g.Go(func() error {
			value, err := fn(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Debug("batch item failed",
					slog.String("operation", operation),
					slog.String("record_id", id),
					slog.Any("error", err),
				)
				result.Failures = append(result.Failures, recordDomain.BatchFailure{ID: id, Err: err})
				return nil
			}
			result.Successes = append(result.Successes, value)
			return nil
		})
	}
	_ = g.Wait()

	return result
}
