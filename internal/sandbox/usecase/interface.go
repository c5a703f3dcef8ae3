// Package usecase implements the sandbox backend operations: account registration and
// token issuance, the opaque record store and the encrypted document store.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

// UserRepository persists accounts and their wrapped common keys.
type UserRepository interface {
	Create(ctx context.Context, user *sandboxDomain.User) error
	Get(ctx context.Context, id uuid.UUID) (*sandboxDomain.User, error)
	SaveCommonKey(ctx context.Context, key *sandboxDomain.CommonKey) error
	GetCommonKey(ctx context.Context, userID uuid.UUID, id string) (*sandboxDomain.CommonKey, error)
}

// RecordRepository persists record envelopes. Search returns one page of matches and
// the total count of matches ignoring the page.
type RecordRepository interface {
	Create(ctx context.Context, record *sandboxDomain.Record) error
	Update(ctx context.Context, record *sandboxDomain.Record) error
	Get(ctx context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error)
	Search(ctx context.Context, filter sandboxDomain.RecordFilter) ([]*sandboxDomain.Record, int, error)
	Count(ctx context.Context, filter sandboxDomain.RecordFilter) (int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// BlobStore holds encrypted document payloads.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Registration is the key material an account uploads when it is created.
type Registration struct {
	ClientID         string
	PublicKey        []byte
	CommonKeyID      string
	CommonKey        string
	TagEncryptionKey string
}

// Credentials is the result of a registration. ClientSecret is returned only once.
type Credentials struct {
	UserID       uuid.UUID
	ClientSecret string
}

// AccessToken is a signed bearer token.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// UserInfo describes an account and its current common key.
type UserInfo struct {
	UserID           uuid.UUID
	CommonKeyID      string
	CommonKey        string
	TagEncryptionKey string
}

// AccountUseCase handles registration, authentication and key lookup.
type AccountUseCase interface {
	Register(ctx context.Context, reg Registration) (*Credentials, error)
	IssueToken(ctx context.Context, userID uuid.UUID, clientSecret string) (*AccessToken, error)
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
	UserInfo(ctx context.Context, userID uuid.UUID) (*UserInfo, error)
	CommonKey(ctx context.Context, userID uuid.UUID, id string) (*sandboxDomain.CommonKey, error)
}

// RecordUseCase stores record envelopes for an account.
type RecordUseCase interface {
	Create(ctx context.Context, record *sandboxDomain.Record) error
	Update(ctx context.Context, record *sandboxDomain.Record) error
	Get(ctx context.Context, userID, id uuid.UUID) (*sandboxDomain.Record, error)
	Search(ctx context.Context, filter sandboxDomain.RecordFilter) ([]*sandboxDomain.Record, int, error)
	Count(ctx context.Context, filter sandboxDomain.RecordFilter) (int, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DocumentUseCase stores encrypted attachment payloads for an account.
type DocumentUseCase interface {
	Upload(ctx context.Context, userID uuid.UUID, data []byte) (string, error)
	Download(ctx context.Context, userID uuid.UUID, id string) ([]byte, error)
	Delete(ctx context.Context, userID uuid.UUID, id string) error
}
