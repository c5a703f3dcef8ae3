// Package service provides the cryptographic primitives used by the record client:
// AEAD ciphers, key generation and wrapping, deterministic tag encryption, the account
// key pair, content hashing and the KMS keeper that seals the local key store.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// AEAD seals and opens payloads. Sealed output is nonce||ciphertext||tag.
type AEAD interface {
	// Seal encrypts plaintext under a random nonce.
	Seal(plaintext, aad []byte) ([]byte, error)

	// SealWithNonce encrypts plaintext under the given nonce. Callers own nonce uniqueness.
	SealWithNonce(nonce, plaintext, aad []byte) ([]byte, error)

	// Open authenticates and decrypts a sealed payload.
	Open(sealed, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length expected by SealWithNonce.
	NonceSize() int
}

// AEADManager creates AEAD instances for a key and algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager generates symmetric keys and moves them in and out of their wrapped form.
type KeyManager interface {
	// GenerateKey creates fresh random key material of the given type.
	GenerateKey(keyType cryptoDomain.KeyType, alg cryptoDomain.Algorithm) (*cryptoDomain.Key, error)

	// WrapKey serializes key to the key exchange format and seals it under parent.
	WrapKey(key, parent *cryptoDomain.Key) (cryptoDomain.EncryptedKey, error)

	// UnwrapKey opens a wrapped key with parent and checks its type.
	UnwrapKey(
		encrypted cryptoDomain.EncryptedKey,
		parent *cryptoDomain.Key,
		keyType cryptoDomain.KeyType,
	) (*cryptoDomain.Key, error)

	// EncryptData seals an arbitrary payload under key.
	EncryptData(data []byte, key *cryptoDomain.Key) ([]byte, error)

	// DecryptData opens a payload sealed by EncryptData.
	DecryptData(sealed []byte, key *cryptoDomain.Key) ([]byte, error)
}

// TagCipher encrypts tag strings deterministically so the backend can match them.
type TagCipher interface {
	Encrypt(plaintext string, key *cryptoDomain.Key) (string, error)
	Decrypt(ciphertext string, key *cryptoDomain.Key) (string, error)
}

// AccountKeyService handles the account key pair protecting the common key.
type AccountKeyService interface {
	// GenerateKeyPair creates a new account key pair.
	GenerateKeyPair() (*cryptoDomain.AccountKeyPair, error)

	// WrapCommonKey encrypts a common key for the holder of publicKey.
	WrapCommonKey(key *cryptoDomain.Key, publicKey []byte) (cryptoDomain.EncryptedKey, error)

	// UnwrapCommonKey decrypts a common key with the account private key.
	UnwrapCommonKey(encrypted cryptoDomain.EncryptedKey, privateKey []byte) (*cryptoDomain.Key, error)
}

// Hasher computes attachment content digests.
type Hasher interface {
	Hash(data []byte) string
}

// KMSService opens keepers that seal local key store entries.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
