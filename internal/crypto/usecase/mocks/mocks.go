// Package mocks provides mock implementations of the key use case dependencies.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// MockKeyStore is a mock implementation of KeyStore.
type MockKeyStore struct {
	mock.Mock
}

// SaveAccountKey mocks the SaveAccountKey method.
func (m *MockKeyStore) SaveAccountKey(ctx context.Context, pair *cryptoDomain.AccountKeyPair) error {
	args := m.Called(ctx, pair)
	return args.Error(0)
}

// GetAccountKey mocks the GetAccountKey method.
func (m *MockKeyStore) GetAccountKey(ctx context.Context) (*cryptoDomain.AccountKeyPair, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.AccountKeyPair), args.Error(1)
}

// SaveCommonKey mocks the SaveCommonKey method.
func (m *MockKeyStore) SaveCommonKey(ctx context.Context, id string, key *cryptoDomain.Key) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// GetCommonKey mocks the GetCommonKey method.
func (m *MockKeyStore) GetCommonKey(ctx context.Context, id string) (*cryptoDomain.Key, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Key), args.Error(1)
}

// SaveCurrentCommonKeyID mocks the SaveCurrentCommonKeyID method.
func (m *MockKeyStore) SaveCurrentCommonKeyID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetCurrentCommonKeyID mocks the GetCurrentCommonKeyID method.
func (m *MockKeyStore) GetCurrentCommonKeyID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// SaveTagKey mocks the SaveTagKey method.
func (m *MockKeyStore) SaveTagKey(ctx context.Context, key *cryptoDomain.Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTagKey mocks the GetTagKey method.
func (m *MockKeyStore) GetTagKey(ctx context.Context) (*cryptoDomain.Key, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Key), args.Error(1)
}

// Clear mocks the Clear method.
func (m *MockKeyStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockKeyFetcher is a mock implementation of KeyFetcher.
type MockKeyFetcher struct {
	mock.Mock
}

// FetchUserInfo mocks the FetchUserInfo method.
func (m *MockKeyFetcher) FetchUserInfo(ctx context.Context) (*cryptoDomain.UserInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.UserInfo), args.Error(1)
}

// FetchCommonKey mocks the FetchCommonKey method.
func (m *MockKeyFetcher) FetchCommonKey(
	ctx context.Context,
	commonKeyID string,
) (cryptoDomain.EncryptedKey, error) {
	args := m.Called(ctx, commonKeyID)
	return args.Get(0).(cryptoDomain.EncryptedKey), args.Error(1)
}
