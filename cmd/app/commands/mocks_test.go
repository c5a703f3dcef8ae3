package commands

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/phrsdk"
)

type mockAccountClient struct {
	mock.Mock
}

func (m *mockAccountClient) Register(ctx context.Context) (*phrsdk.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phrsdk.Account), args.Error(1)
}

func (m *mockAccountClient) Login(ctx context.Context, userID, clientSecret string) error {
	return m.Called(ctx, userID, clientSecret).Error(0)
}

func (m *mockAccountClient) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockRecordClient struct {
	mock.Mock
}

func (m *mockRecordClient) CreateRecord(
	ctx context.Context,
	resource phrsdk.Resource,
	annotations []string,
	creationDate *time.Time,
) (*phrsdk.Record, error) {
	args := m.Called(ctx, resource, annotations, creationDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phrsdk.Record), args.Error(1)
}

func (m *mockRecordClient) UpdateRecord(
	ctx context.Context,
	recordID string,
	resource phrsdk.Resource,
	annotations []string,
) (*phrsdk.Record, error) {
	args := m.Called(ctx, recordID, resource, annotations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phrsdk.Record), args.Error(1)
}

func (m *mockRecordClient) FetchRecord(ctx context.Context, recordID string) (*phrsdk.Record, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phrsdk.Record), args.Error(1)
}

func (m *mockRecordClient) FetchRecords(ctx context.Context, recordIDs []string) *phrsdk.BatchResult[*phrsdk.Record] {
	return m.Called(ctx, recordIDs).Get(0).(*phrsdk.BatchResult[*phrsdk.Record])
}

func (m *mockRecordClient) SearchRecords(
	ctx context.Context,
	criteria phrsdk.SearchCriteria,
) (*phrsdk.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phrsdk.SearchResult), args.Error(1)
}

func (m *mockRecordClient) CountRecords(ctx context.Context, criteria phrsdk.SearchCriteria) (int, error) {
	args := m.Called(ctx, criteria)
	return args.Int(0), args.Error(1)
}

func (m *mockRecordClient) DeleteRecords(ctx context.Context, recordIDs []string) *phrsdk.BatchResult[string] {
	return m.Called(ctx, recordIDs).Get(0).(*phrsdk.BatchResult[string])
}

func (m *mockRecordClient) DownloadRecords(
	ctx context.Context,
	recordIDs []string,
	downloadType phrsdk.DownloadType,
) *phrsdk.BatchResult[*phrsdk.Record] {
	return m.Called(ctx, recordIDs, downloadType).Get(0).(*phrsdk.BatchResult[*phrsdk.Record])
}

func (m *mockRecordClient) DownloadAttachments(
	ctx context.Context,
	recordID string,
	attachmentIDs []string,
	downloadType phrsdk.DownloadType,
) ([]*phrsdk.Attachment, error) {
	args := m.Called(ctx, recordID, attachmentIDs, downloadType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*phrsdk.Attachment), args.Error(1)
}
