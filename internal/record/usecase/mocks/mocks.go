// Package mocks provides mock implementations of the record use case and its dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	"github.com/allisson/phrsdk/internal/fhir"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRecordRepository) Create(
	ctx context.Context,
	record *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.EncryptedRecord), args.Error(1)
}

// Update mocks the Update method.
func (m *MockRecordRepository) Update(
	ctx context.Context,
	record *recordDomain.EncryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.EncryptedRecord), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRecordRepository) Get(ctx context.Context, recordID string) (*recordDomain.EncryptedRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.EncryptedRecord), args.Error(1)
}

// Search mocks the Search method.
func (m *MockRecordRepository) Search(
	ctx context.Context,
	query recordDomain.SearchQuery,
) ([]*recordDomain.EncryptedRecord, int, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*recordDomain.EncryptedRecord), args.Int(1), args.Error(2)
}

// Count mocks the Count method.
func (m *MockRecordRepository) Count(ctx context.Context, query recordDomain.SearchQuery) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockRecordRepository) Delete(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRecordUseCase) Create(
	ctx context.Context,
	resource recordDomain.Resource,
	annotations []string,
	creationDate *time.Time,
) (*recordDomain.Record, error) {
	args := m.Called(ctx, resource, annotations, creationDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.Record), args.Error(1)
}

// Update mocks the Update method.
func (m *MockRecordUseCase) Update(
	ctx context.Context,
	recordID string,
	resource recordDomain.Resource,
	annotations []string,
) (*recordDomain.Record, error) {
	args := m.Called(ctx, recordID, resource, annotations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.Record), args.Error(1)
}

// Fetch mocks the Fetch method.
func (m *MockRecordUseCase) Fetch(ctx context.Context, recordID string) (*recordDomain.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.Record), args.Error(1)
}

// Search mocks the Search method.
func (m *MockRecordUseCase) Search(
	ctx context.Context,
	criteria recordDomain.SearchCriteria,
) (*recordDomain.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.SearchResult), args.Error(1)
}

// Count mocks the Count method.
func (m *MockRecordUseCase) Count(ctx context.Context, criteria recordDomain.SearchCriteria) (int, error) {
	args := m.Called(ctx, criteria)
	return args.Int(0), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockRecordUseCase) Delete(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// Download mocks the Download method.
func (m *MockRecordUseCase) Download(
	ctx context.Context,
	recordID string,
	downloadType attachmentDomain.DownloadType,
) (*recordDomain.Record, error) {
	args := m.Called(ctx, recordID, downloadType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordDomain.Record), args.Error(1)
}

// DownloadAttachment mocks the DownloadAttachment method.
func (m *MockRecordUseCase) DownloadAttachment(
	ctx context.Context,
	recordID, attachmentID string,
	downloadType attachmentDomain.DownloadType,
) (*fhir.Attachment, error) {
	args := m.Called(ctx, recordID, attachmentID, downloadType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fhir.Attachment), args.Error(1)
}

// DownloadAttachments mocks the DownloadAttachments method.
func (m *MockRecordUseCase) DownloadAttachments(
	ctx context.Context,
	recordID string,
	attachmentIDs []string,
	downloadType attachmentDomain.DownloadType,
) ([]*fhir.Attachment, error) {
	args := m.Called(ctx, recordID, attachmentIDs, downloadType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*fhir.Attachment), args.Error(1)
}

// FetchBatch mocks the FetchBatch method.
func (m *MockRecordUseCase) FetchBatch(
	ctx context.Context,
	recordIDs []string,
) *recordDomain.BatchResult[*recordDomain.Record] {
	args := m.Called(ctx, recordIDs)
	return args.Get(0).(*recordDomain.BatchResult[*recordDomain.Record])
}

// DeleteBatch mocks the DeleteBatch method.
func (m *MockRecordUseCase) DeleteBatch(ctx context.Context, recordIDs []string) *recordDomain.BatchResult[string] {
	args := m.Called(ctx, recordIDs)
	return args.Get(0).(*recordDomain.BatchResult[string])
}

// DownloadBatch mocks the DownloadBatch method.
func (m *MockRecordUseCase) DownloadBatch(
	ctx context.Context,
	recordIDs []string,
	downloadType attachmentDomain.DownloadType,
) *recordDomain.BatchResult[*recordDomain.Record] {
	args := m.Called(ctx, recordIDs, downloadType)
	return args.Get(0).(*recordDomain.BatchResult[*recordDomain.Record])
}
