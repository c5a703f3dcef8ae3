// Package usecase resolves the keys a record operation needs.
//
// The key use case owns the common key chain, loads keys from the local key store and
// falls back to the backend on a miss. Record services call it before any body or tag is
// encrypted.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// KeyStore persists key material on the device.
//
// Implemented by repository.BadgerKeyStore. Lookups of absent entries return
// cryptoDomain.ErrKeyNotFound (or ErrAccountKeyNotFound for the account key).
type KeyStore interface {
	SaveAccountKey(ctx context.Context, pair *cryptoDomain.AccountKeyPair) error
	GetAccountKey(ctx context.Context) (*cryptoDomain.AccountKeyPair, error)
	SaveCommonKey(ctx context.Context, id string, key *cryptoDomain.Key) error
	GetCommonKey(ctx context.Context, id string) (*cryptoDomain.Key, error)
	SaveCurrentCommonKeyID(ctx context.Context, id string) error
	GetCurrentCommonKeyID(ctx context.Context) (string, error)
	SaveTagKey(ctx context.Context, key *cryptoDomain.Key) error
	GetTagKey(ctx context.Context) (*cryptoDomain.Key, error)
	Clear(ctx context.Context) error
}

// KeyFetcher reads wrapped keys from the backend.
type KeyFetcher interface {
	// FetchUserInfo returns the current common key and the tag key of the signed-in user.
	FetchUserInfo(ctx context.Context) (*cryptoDomain.UserInfo, error)

	// FetchCommonKey returns the common key with the given id, wrapped with the account
	// public key.
	FetchCommonKey(ctx context.Context, commonKeyID string) (cryptoDomain.EncryptedKey, error)
}

// KeyUseCase resolves and generates the keys of the hierarchy.
type KeyUseCase interface {
	// ResolveCommonKey returns the common key for id, or the current one when id is empty.
	// The returned key is owned by the chain and must not be destroyed by the caller.
	ResolveCommonKey(ctx context.Context, commonKeyID string) (string, *cryptoDomain.Key, error)

	// TagKey returns the tag encryption key.
	TagKey(ctx context.Context) (*cryptoDomain.Key, error)

	// GenerateDataKey returns a fresh data key.
	GenerateDataKey() (*cryptoDomain.Key, error)

	// NewAttachmentKeyResolver returns a resolver seeded with the record's existing key.
	NewAttachmentKeyResolver(existing *cryptoDomain.Key) *AttachmentKeyResolver

	// Bootstrap creates the account key pair and the first common and tag keys for a new
	// account, stores them locally and returns what must be uploaded.
	Bootstrap(ctx context.Context) (*cryptoDomain.Registration, error)

	// Logout drops every cached common key, the tag key and the local session.
	Logout(ctx context.Context) error
}
