package service

import (
	"crypto/rand"
	"fmt"
	"time"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// KeyManagerService implements KeyManager on top of an AEADManager.
type KeyManagerService struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManagerService.
func NewKeyManager(aeadManager AEADManager) *KeyManagerService {
	return &KeyManagerService{
		aeadManager: aeadManager,
	}
}

// GenerateKey creates KeySize random bytes for a key of the given type. Every call
// returns new material; keys are never reused across records.
func (km *KeyManagerService) GenerateKey(
	keyType cryptoDomain.KeyType,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.Key, error) {
	if alg == "" {
		alg = cryptoDomain.AESGCM
	}
	if alg != cryptoDomain.AESGCM && alg != cryptoDomain.ChaCha20 {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	material := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", keyType, err)
	}

	return &cryptoDomain.Key{
		Type:      keyType,
		Algorithm: alg,
		Material:  material,
		Version:   cryptoDomain.KeyVersion,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WrapKey seals the key exchange form of key under parent.
func (km *KeyManagerService) WrapKey(key, parent *cryptoDomain.Key) (cryptoDomain.EncryptedKey, error) {
	plaintext, err := key.MarshalExchangeFormat()
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s key: %w", key.Type, err)
	}
	defer cryptoDomain.Zero(plaintext)

	sealed, err := km.EncryptData(plaintext, parent)
	if err != nil {
		return "", err
	}

	return cryptoDomain.NewEncryptedKey(sealed), nil
}

// UnwrapKey opens encrypted with parent and parses the expected key type.
func (km *KeyManagerService) UnwrapKey(
	encrypted cryptoDomain.EncryptedKey,
	parent *cryptoDomain.Key,
	keyType cryptoDomain.KeyType,
) (*cryptoDomain.Key, error) {
	sealed, err := encrypted.Bytes()
	if err != nil {
		return nil, err
	}

	plaintext, err := km.DecryptData(sealed, parent)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.UnmarshalExchangeFormat(plaintext, keyType)
}

// EncryptData seals data under key with a random nonce.
func (km *KeyManagerService) EncryptData(data []byte, key *cryptoDomain.Key) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(key.Material, key.Algorithm)
	if err != nil {
		return nil, err
	}

	sealed, err := aead.Seal(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with %s key: %w", key.Type, err)
	}
	return sealed, nil
}

// DecryptData opens a payload sealed by EncryptData.
func (km *KeyManagerService) DecryptData(sealed []byte, key *cryptoDomain.Key) ([]byte, error) {
	aead, err := km.aeadManager.CreateCipher(key.Material, key.Algorithm)
	if err != nil {
		return nil, err
	}

	return aead.Open(sealed, nil)
}
