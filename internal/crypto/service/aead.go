package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// sealedCipher adapts a cipher.AEAD to the nonce-prefixed sealed format.
//
// AES-256-GCM and ChaCha20-Poly1305 both use a 12-byte nonce and a 16-byte tag, so a
// sealed payload is always 28 bytes longer than its plaintext. Instances are stateless
// and safe for concurrent use.
type sealedCipher struct {
	aead cipher.AEAD
}

// AESGCMCipher implements AEAD using AES-256-GCM.
type AESGCMCipher struct {
	sealedCipher
}

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{sealedCipher{aead: aead}}, nil
}

// ChaCha20Poly1305Cipher implements AEAD using ChaCha20-Poly1305.
type ChaCha20Poly1305Cipher struct {
	sealedCipher
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{sealedCipher{aead: aead}}, nil
}

func (c sealedCipher) NonceSize() int {
	return c.aead.NonceSize()
}

func (c sealedCipher) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return c.SealWithNonce(nonce, plaintext, aad)
}

func (c sealedCipher) SealWithNonce(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be exactly %d bytes", c.aead.NonceSize())
	}

	sealed := make([]byte, 0, len(nonce)+len(plaintext)+c.aead.Overhead())
	sealed = append(sealed, nonce...)
	return c.aead.Seal(sealed, nonce, plaintext, aad), nil
}

func (c sealedCipher) Open(sealed, aad []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize+c.aead.Overhead() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
