package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	attachmentService "github.com/allisson/phrsdk/internal/attachment/service"
	attachmentUsecase "github.com/allisson/phrsdk/internal/attachment/usecase"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/fhir"
	"github.com/allisson/phrsdk/internal/fhir/fhir3"
	"github.com/allisson/phrsdk/internal/fhir/fhir4"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
	recordService "github.com/allisson/phrsdk/internal/record/service"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
	tagService "github.com/allisson/phrsdk/internal/tag/service"
	"github.com/allisson/phrsdk/internal/testutil"
)

// memoryRecords is a RecordRepository matching search tags the way the backend does.
type memoryRecords struct {
	mu      sync.Mutex
	records map[string]*recordDomain.EncryptedRecord
	order   []string
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{records: map[string]*recordDomain.EncryptedRecord{}}
}

func (m *memoryRecords) Create(
	_ context.Context,
	rec *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	stored.ID = uuid.NewString()
	stored.UpdatedDate = time.Now().UTC().Format(recordDomain.UpdatedDateLayout)
	m.records[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	out := stored
	return &out, nil
}

func (m *memoryRecords) Update(
	_ context.Context,
	rec *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return nil, recordDomain.ErrRecordNotFound
	}
	stored := *rec
	stored.UpdatedDate = time.Now().UTC().Format(recordDomain.UpdatedDateLayout)
	m.records[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memoryRecords) Get(_ context.Context, id string) (*recordDomain.EncryptedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, recordDomain.ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

func (m *memoryRecords) matching(query recordDomain.SearchQuery) []*recordDomain.EncryptedRecord {
	var out []*recordDomain.EncryptedRecord
	for _, id := range m.order {
		rec, ok := m.records[id]
		if ok && matchesTags(query.Tags, rec.EncryptedTags) {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out
}

func matchesTags(query, stored []string) bool {
	have := map[string]bool{}
	for _, tag := range stored {
		have[tag] = true
	}
	for _, q := range query {
		options := []string{q}
		if strings.HasPrefix(q, "(") {
			options = strings.Split(strings.Trim(q, "()"), ",")
		}
		found := false
		for _, option := range options {
			if have[option] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *memoryRecords) Search(
	_ context.Context,
	query recordDomain.SearchQuery,
) ([]*recordDomain.EncryptedRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(query)
	total := len(all)
	if query.Offset >= len(all) {
		return []*recordDomain.EncryptedRecord{}, total, nil
	}
	all = all[query.Offset:]
	if query.Limit > 0 && len(all) > query.Limit {
		all = all[:query.Limit]
	}
	return all, total, nil
}

func (m *memoryRecords) Count(_ context.Context, query recordDomain.SearchQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(query)), nil
}

func (m *memoryRecords) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return recordDomain.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRecords) raw(id string) *recordDomain.EncryptedRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

// memoryDocuments is a DocumentRepository keeping payloads in a map.
type memoryDocuments struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (m *memoryDocuments) Upload(_ context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.docs[id] = append([]byte(nil), data...)
	return id, nil
}

func (m *memoryDocuments) Download(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return data, nil
}

func (m *memoryDocuments) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

type recordFixture struct {
	records   *memoryRecords
	documents *memoryDocuments
	uc        RecordUseCase
}

func newRecordFixture(t *testing.T) *recordFixture {
	t.Helper()
	keys := testutil.NewKeyFixture(t, nil)
	tagEncryption := tagService.NewEncryptionService(
		cryptoService.NewTagCipher(cryptoService.NewAEADManager()),
		nil,
	)
	f := &recordFixture{
		records:   newMemoryRecords(),
		documents: &memoryDocuments{docs: map[string][]byte{}},
	}
	attachments := attachmentUsecase.NewAttachmentUseCase(
		f.documents,
		keys.KeyManager,
		cryptoService.NewSHA1Hasher(),
		attachmentService.NewDrawResizer(),
		4,
		nil,
	)
	f.uc = NewRecordUseCase(
		f.records,
		keys.Keys,
		recordService.NewCryptoService(keys.Keys, keys.KeyManager, tagEncryption, nil),
		tagService.NewTaggingService("partner#test"),
		tagEncryption,
		attachments,
		4,
		nil,
	)
	return f
}

var pdfPayload = []byte("%PDF-1.4 lab results")

func pdfDocument() *fhir4.DocumentReference {
	return &fhir4.DocumentReference{
		Status: "current",
		Content: []fhir4.DocumentReferenceContent{
			{Attachment: fhir.Attachment{ContentType: "application/pdf", Title: "results", Data: pdfPayload}},
		},
	}
}

func jpegImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		img.Set(y%width, y, color.RGBA{B: 160, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestRecordUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DocumentWithPDFAndAnnotations", func(t *testing.T) {
		f := newRecordFixture(t)
		doc := pdfDocument()

		rec, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(doc), []string{"wow", "it"}, nil)
		require.NoError(t, err)

		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, []string{"wow", "it"}, rec.Annotations)
		assert.Equal(t, recordDomain.StatusActive, rec.Status)
		assert.False(t, rec.Meta.UpdatedDate.IsZero())

		created := rec.Resource.Fhir.(*fhir4.DocumentReference)
		assert.Equal(t, rec.ID, created.ID)
		att := created.Content[0].Attachment
		assert.Nil(t, att.Data)
		assert.NotEmpty(t, att.ID)
		require.Len(t, created.Identifier, 1)
		assert.Equal(t, "d4l_f_p_t#"+att.ID, created.Identifier[0].Value)
		assert.Equal(t, "partner", created.Identifier[0].Assigner.Reference)

		assert.False(t, f.records.raw(rec.ID).EncryptedAttachmentKey.IsEmpty())
	})

	t.Run("Success_NoAttachmentsNoAttachmentKey", func(t *testing.T) {
		f := newRecordFixture(t)
		creation := time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)

		rec, err := f.uc.Create(ctx, recordDomain.NewFhir3Resource(&fhir3.Patient{Gender: "male"}), nil, &creation)
		require.NoError(t, err)

		assert.True(t, f.records.raw(rec.ID).EncryptedAttachmentKey.IsEmpty())
		assert.Equal(t, "2023-01-02", f.records.raw(rec.ID).CustomCreationDate)
		assert.Equal(t, []string{}, rec.Annotations)
	})

	t.Run("Success_AppData", func(t *testing.T) {
		f := newRecordFixture(t)

		rec, err := f.uc.Create(ctx, recordDomain.NewDataResource([]byte("raw bytes")), []string{"note"}, nil)
		require.NoError(t, err)

		fetched, err := f.uc.Fetch(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, recordDomain.KindData, fetched.Resource.Kind)
		assert.Equal(t, []byte("raw bytes"), fetched.Resource.Data)
	})

	t.Run("Error_CustomDataLimit", func(t *testing.T) {
		f := newRecordFixture(t)
		data := make([]byte, tagDomain.MaxCustomDataSize+1)

		_, err := f.uc.Create(ctx, recordDomain.NewDataResource(data), nil, nil)
		assert.ErrorIs(t, err, tagDomain.ErrCustomDataLimitViolation)
	})

	t.Run("Error_TooManyAnnotations", func(t *testing.T) {
		f := newRecordFixture(t)
		annotations := make([]string, tagDomain.MaxTagsAndAnnotations)
		for i := range annotations {
			annotations[i] = "a"
		}

		_, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(&fhir4.Patient{}), annotations, nil)
		assert.ErrorIs(t, err, tagDomain.ErrTagsAndAnnotationsLimitViolation)
	})

	t.Run("Error_UnsupportedAttachment", func(t *testing.T) {
		f := newRecordFixture(t)
		doc := &fhir4.DocumentReference{
			Content: []fhir4.DocumentReferenceContent{{Attachment: fhir.Attachment{Data: []byte("text")}}},
		}

		_, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(doc), nil, nil)
		assert.ErrorIs(t, err, attachmentDomain.ErrUnsupportedFileType)
		assert.Empty(t, f.records.order)
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		f := newRecordFixture(t)

		_, err := f.uc.Create(ctx, recordDomain.Resource{}, nil, nil)
		assert.ErrorIs(t, err, recordDomain.ErrUnknownResourceKind)
	})
}

func TestRecordUseCase_FetchAndDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FetchHasNoPayload", func(t *testing.T) {
		f := newRecordFixture(t)
		created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), []string{"wow", "it"}, nil)
		require.NoError(t, err)

		rec, err := f.uc.Fetch(ctx, created.ID)
		require.NoError(t, err)
		doc := rec.Resource.Fhir.(*fhir4.DocumentReference)
		assert.Nil(t, doc.Content[0].Attachment.Data)
		assert.Equal(t, []string{"wow", "it"}, rec.Annotations)
	})

	t.Run("Success_DownloadFull", func(t *testing.T) {
		f := newRecordFixture(t)
		created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), nil, nil)
		require.NoError(t, err)

		rec, err := f.uc.Download(ctx, created.ID, attachmentDomain.Full)
		require.NoError(t, err)
		doc := rec.Resource.Fhir.(*fhir4.DocumentReference)
		assert.Equal(t, pdfPayload, doc.Content[0].Attachment.Data)
	})

	t.Run("Success_DownloadMediumResolvesPreview", func(t *testing.T) {
		f := newRecordFixture(t)
		patient := &fhir4.Patient{Photo: []fhir.Attachment{{Data: jpegImage(t, 300, 1200)}}}
		created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(patient), nil, nil)
		require.NoError(t, err)
		ids, err := attachmentService.CompoundIDs(created.Resource.Fhir)
		require.NoError(t, err)
		fullID := created.Resource.Fhir.(*fhir4.Patient).Photo[0].ID
		previewID := ids[fullID].PreviewID
		require.NotEmpty(t, previewID)

		rec, err := f.uc.Download(ctx, created.ID, attachmentDomain.Medium)
		require.NoError(t, err)

		photo := rec.Resource.Fhir.(*fhir4.Patient).Photo[0]
		assert.Equal(t, previewID, attachmentDomain.AssetID(photo.ID))
		assert.NotEqual(t, ids[fullID].ThumbnailID, attachmentDomain.AssetID(photo.ID))
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(photo.Data))
		require.NoError(t, err)
		assert.Equal(t, attachmentDomain.PreviewHeight, cfg.Height)
	})

	t.Run("Success_DownloadAttachment", func(t *testing.T) {
		f := newRecordFixture(t)
		created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), nil, nil)
		require.NoError(t, err)
		attachmentID := created.Resource.Fhir.(*fhir4.DocumentReference).Content[0].Attachment.ID

		att, err := f.uc.DownloadAttachment(ctx, created.ID, attachmentID, attachmentDomain.Full)
		require.NoError(t, err)
		assert.Equal(t, pdfPayload, att.Data)
		assert.Equal(t, "results", att.Title)

		_, err = f.uc.DownloadAttachments(ctx, created.ID, []string{"unknown"}, attachmentDomain.Full)
		assert.ErrorIs(t, err, attachmentDomain.ErrInvalidAttachmentIDs)
	})

	t.Run("Error_DownloadAttachmentOfAppData", func(t *testing.T) {
		f := newRecordFixture(t)
		created, err := f.uc.Create(ctx, recordDomain.NewDataResource([]byte("x")), nil, nil)
		require.NoError(t, err)

		_, err = f.uc.DownloadAttachment(ctx, created.ID, "any", attachmentDomain.Full)
		assert.ErrorIs(t, err, recordDomain.ErrNotAFhirRecord)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		f := newRecordFixture(t)

		_, err := f.uc.Fetch(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRecordUseCase_Update(t *testing.T) {
	ctx := context.Background()
	f := newRecordFixture(t)

	created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), []string{"first"}, nil)
	require.NoError(t, err)
	doc := created.Resource.Fhir.(*fhir4.DocumentReference)
	keptID := doc.Content[0].Attachment.ID

	doc.Description = "updated"
	doc.Content = append(doc.Content, fhir4.DocumentReferenceContent{
		Attachment: fhir.Attachment{Title: "second", Data: []byte("%PDF-1.5 second")},
	})

	updated, err := f.uc.Update(ctx, created.ID, recordDomain.NewFhir4Resource(doc), []string{"second"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []string{"second"}, updated.Annotations)

	updatedDoc := updated.Resource.Fhir.(*fhir4.DocumentReference)
	assert.Equal(t, keptID, updatedDoc.Content[0].Attachment.ID)
	assert.NotEmpty(t, updatedDoc.Content[1].Attachment.ID)
	assert.Len(t, updatedDoc.Identifier, 2)
	assert.False(t, f.records.raw(created.ID).EncryptedAttachmentKey.IsEmpty())

	downloaded, err := f.uc.Download(ctx, created.ID, attachmentDomain.Full)
	require.NoError(t, err)
	downloadedDoc := downloaded.Resource.Fhir.(*fhir4.DocumentReference)
	assert.Equal(t, "updated", downloadedDoc.Description)
	assert.Equal(t, pdfPayload, downloadedDoc.Content[0].Attachment.Data)
	assert.Equal(t, []byte("%PDF-1.5 second"), downloadedDoc.Content[1].Attachment.Data)

	t.Run("Error_MissingID", func(t *testing.T) {
		_, err := f.uc.Update(ctx, "", recordDomain.NewFhir4Resource(doc), nil)
		assert.ErrorIs(t, err, recordDomain.ErrRecordIDRequired)
	})
}

func TestRecordUseCase_Update_SizedDownloadKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	f := newRecordFixture(t)
	original := jpegImage(t, 300, 1600)

	created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(&fhir4.Patient{
		Photo: []fhir.Attachment{{Title: "portrait", Data: original}},
	}), nil, nil)
	require.NoError(t, err)

	for _, downloadType := range []attachmentDomain.DownloadType{attachmentDomain.Medium, attachmentDomain.Small} {
		sized, err := f.uc.Download(ctx, created.ID, downloadType)
		require.NoError(t, err)
		photo := sized.Resource.Fhir.(*fhir4.Patient).Photo[0]
		require.True(t, attachmentDomain.IsVariantDownloadID(photo.ID))

		_, err = f.uc.Update(ctx, created.ID, sized.Resource, nil)
		assert.ErrorIs(t, err, attachmentDomain.ErrIDUsageViolation)
	}

	full, err := f.uc.Download(ctx, created.ID, attachmentDomain.Full)
	require.NoError(t, err)
	assert.Equal(t, original, full.Resource.Fhir.(*fhir4.Patient).Photo[0].Data)
}

func TestRecordUseCase_Update_KindChange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		initial recordDomain.Resource
		update  recordDomain.Resource
	}{
		{
			name:    "AppDataToFhir4",
			initial: recordDomain.NewDataResource([]byte("raw bytes")),
			update:  recordDomain.NewFhir4Resource(&fhir4.Patient{Gender: "female"}),
		},
		{
			name:    "Fhir4ToAppData",
			initial: recordDomain.NewFhir4Resource(&fhir4.Patient{Gender: "female"}),
			update:  recordDomain.NewDataResource([]byte("raw bytes")),
		},
		{
			name:    "Fhir3ToFhir4",
			initial: recordDomain.NewFhir3Resource(&fhir3.Patient{Gender: "male"}),
			update:  recordDomain.NewFhir4Resource(&fhir4.Patient{Gender: "male"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRecordFixture(t)
			created, err := f.uc.Create(ctx, tt.initial, []string{"kept"}, nil)
			require.NoError(t, err)

			_, err = f.uc.Update(ctx, created.ID, tt.update, nil)
			assert.ErrorIs(t, err, recordDomain.ErrResourceKindMismatch)
			assert.True(t, apperrors.IsValidation(err))

			fetched, err := f.uc.Fetch(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.initial.Kind, fetched.Resource.Kind)
			assert.Equal(t, []string{"kept"}, fetched.Annotations)
		})
	}
}

func TestRecordUseCase_SearchAndCount(t *testing.T) {
	ctx := context.Background()
	f := newRecordFixture(t)

	_, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), []string{"lab"}, nil)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, recordDomain.NewFhir4Resource(&fhir4.Patient{Gender: "other"}), nil, nil)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, recordDomain.NewFhir3Resource(&fhir3.Patient{}), []string{"lab"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		criteria recordDomain.SearchCriteria
		expected int
	}{
		{name: "any kind", criteria: recordDomain.SearchCriteria{}, expected: 3},
		{name: "fhir4", criteria: recordDomain.SearchCriteria{Kind: recordDomain.KindFhir4}, expected: 2},
		{
			name:     "fhir4 documents",
			criteria: recordDomain.SearchCriteria{Kind: recordDomain.KindFhir4, ResourceType: "DocumentReference"},
			expected: 1,
		},
		{name: "annotation", criteria: recordDomain.SearchCriteria{Annotations: []string{"lab"}}, expected: 2},
		{name: "app data", criteria: recordDomain.SearchCriteria{Kind: recordDomain.KindData}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.uc.Search(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Len(t, result.Records, tt.expected)
			assert.Equal(t, tt.expected, result.TotalCount)

			count, err := f.uc.Count(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)
		})
	}

	t.Run("paging", func(t *testing.T) {
		result, err := f.uc.Search(ctx, recordDomain.SearchCriteria{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, result.Records, 1)
		assert.Equal(t, 3, result.TotalCount)
	})

	t.Run("Error_InvalidCriteria", func(t *testing.T) {
		_, err := f.uc.Search(ctx, recordDomain.SearchCriteria{Limit: -1})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestRecordUseCase_Batch(t *testing.T) {
	ctx := context.Background()
	f := newRecordFixture(t)

	created, err := f.uc.Create(ctx, recordDomain.NewFhir4Resource(pdfDocument()), nil, nil)
	require.NoError(t, err)

	t.Run("FetchBatch_OneFailure", func(t *testing.T) {
		result := f.uc.FetchBatch(ctx, []string{created.ID, "missing"})

		require.Len(t, result.Successes, 1)
		assert.Equal(t, created.ID, result.Successes[0].ID)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "missing", result.Failures[0].ID)
		assert.ErrorIs(t, result.Failures[0].Err, apperrors.ErrNotFound)
		assert.Error(t, result.Err())
	})

	t.Run("DownloadBatch", func(t *testing.T) {
		result := f.uc.DownloadBatch(ctx, []string{created.ID}, attachmentDomain.Full)

		require.Len(t, result.Successes, 1)
		assert.Empty(t, result.Failures)
		assert.NoError(t, result.Err())
	})

	t.Run("DeleteBatch", func(t *testing.T) {
		result := f.uc.DeleteBatch(ctx, []string{created.ID, "missing"})

		assert.Equal(t, []string{created.ID}, result.Successes)
		assert.Equal(t, []string{"missing"}, result.FailedIDs())

		_, err := f.uc.Fetch(ctx, created.ID)
		assert.ErrorIs(t, err, recordDomain.ErrRecordNotFound)
	})
}
