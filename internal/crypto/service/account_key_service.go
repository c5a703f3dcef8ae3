package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

const accountKeyBits = 2048

// RSAAccountKeyService wraps common keys with RSA-OAEP (SHA-256).
type RSAAccountKeyService struct {
	bits int
}

// NewAccountKeyService creates a new RSAAccountKeyService producing 2048-bit keys.
func NewAccountKeyService() *RSAAccountKeyService {
	return &RSAAccountKeyService{bits: accountKeyBits}
}

// GenerateKeyPair creates a new RSA key pair encoded as PKCS#8 and PKIX DER.
func (s *RSAAccountKeyService) GenerateKeyPair() (*cryptoDomain.AccountKeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, s.bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account private key: %w", err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account public key: %w", err)
	}

	return &cryptoDomain.AccountKeyPair{PrivateKey: privateDER, PublicKey: publicDER}, nil
}

// WrapCommonKey encrypts the exchange form of key with the account public key.
func (s *RSAAccountKeyService) WrapCommonKey(
	key *cryptoDomain.Key,
	publicKey []byte,
) (cryptoDomain.EncryptedKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return "", cryptoDomain.ErrInvalidAccountKey
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", cryptoDomain.ErrInvalidAccountKey
	}

	plaintext, err := key.MarshalExchangeFormat()
	if err != nil {
		return "", fmt.Errorf("failed to serialize common key: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, rsaKey, plaintext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to wrap common key: %w", err)
	}
	return cryptoDomain.NewEncryptedKey(ciphertext), nil
}

// UnwrapCommonKey decrypts a common key with the account private key.
func (s *RSAAccountKeyService) UnwrapCommonKey(
	encrypted cryptoDomain.EncryptedKey,
	privateKey []byte,
) (*cryptoDomain.Key, error) {
	ciphertext, err := encrypted.Bytes()
	if err != nil {
		return nil, err
	}

	parsed, err := x509.ParsePKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidAccountKey
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, cryptoDomain.ErrInvalidAccountKey
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, rsaKey, ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.UnmarshalExchangeFormat(plaintext, cryptoDomain.CommonKeyType)
}
