package domain

import (
	"github.com/allisson/phrsdk/internal/errors"
)

// Cryptographic operation error definitions.
//
// Failures caused by unusable key material wrap ErrCrypto so the client boundary
// classifies them as crypto errors. Lookups of keys that were never stored wrap
// ErrNotFound.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrCrypto, "unsupported algorithm")

	// ErrInvalidKeySize indicates the key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrCrypto, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// The cause (wrong key, tampered ciphertext, truncated nonce) is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrCrypto, "decryption failed")

	// ErrInvalidKeyFormat indicates a decrypted key does not parse as the key exchange format
	// or carries an unexpected key type.
	ErrInvalidKeyFormat = errors.Wrap(errors.ErrCrypto, "invalid key format")

	// ErrInvalidAccountKey indicates the account key pair could not be parsed.
	ErrInvalidAccountKey = errors.Wrap(errors.ErrCrypto, "invalid account key")

	// ErrAccountKeyNotFound indicates the local key store has no account private key.
	// The client must be registered (or the key restored) before records can be read.
	ErrAccountKeyNotFound = errors.Wrap(errors.ErrUnauthorized, "account key not found")

	// ErrKeyNotFound indicates the local key store has no entry for the requested alias.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")
)
