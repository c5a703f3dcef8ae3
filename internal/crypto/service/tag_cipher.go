package service

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

const tagNonceInfo = "tag-nonce"

// DeterministicTagCipher encrypts tags so that the same plaintext under the same tag key
// always yields the same ciphertext. The nonce is derived from the key and the plaintext
// with HKDF-SHA256, which keeps equal tags searchable without reusing a nonce across
// different plaintexts.
type DeterministicTagCipher struct {
	aeadManager AEADManager
}

// NewTagCipher creates a new DeterministicTagCipher.
func NewTagCipher(aeadManager AEADManager) *DeterministicTagCipher {
	return &DeterministicTagCipher{aeadManager: aeadManager}
}

// Encrypt returns base64(nonce||ciphertext) for plaintext.
func (tc *DeterministicTagCipher) Encrypt(plaintext string, key *cryptoDomain.Key) (string, error) {
	aead, err := tc.aeadManager.CreateCipher(key.Material, key.Algorithm)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	kdf := hkdf.New(sha256.New, key.Material, []byte(plaintext), []byte(tagNonceInfo))
	if _, err := io.ReadFull(kdf, nonce); err != nil {
		return "", fmt.Errorf("failed to derive tag nonce: %w", err)
	}

	sealed, err := aead.SealWithNonce(nonce, []byte(plaintext), nil)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (tc *DeterministicTagCipher) Decrypt(ciphertext string, key *cryptoDomain.Key) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	aead, err := tc.aeadManager.CreateCipher(key.Material, key.Algorithm)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
