// Package domain defines the entities of the sandbox PHR backend: accounts with their
// wrapped keys, opaque record envelopes and encrypted documents.
//
// The sandbox never sees plaintext. Everything it stores arrives already encrypted by
// the client and is handed back byte for byte.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID       uuid.UUID
	ClientID string
	// SecretHash is the Argon2id hash of the account client secret.
	SecretHash string
	// PublicKey is the PKIX DER account public key the common keys are wrapped for.
	PublicKey []byte
	// CommonKeyID is the id of the current common key.
	CommonKeyID string
	// TagEncryptionKey is the tag key wrapped with the current common key.
	TagEncryptionKey string
	CreatedAt        time.Time
}

// CommonKey is a common key wrapped with the account public key.
type CommonKey struct {
	UserID       uuid.UUID
	ID           string
	EncryptedKey string
	CreatedAt    time.Time
}
