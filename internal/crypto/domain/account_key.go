package domain

import (
	"context"
)

// AccountKeyPair is the user's asymmetric key pair. The public half is registered with
// the backend so the common key can be stored wrapped for this account; the private half
// only lives in the local key store.
type AccountKeyPair struct {
	PrivateKey []byte // PKCS#8 DER
	PublicKey  []byte // PKIX DER
}

// Destroy zeroes the private key.
func (a *AccountKeyPair) Destroy() {
	if a == nil {
		return
	}
	Zero(a.PrivateKey)
}

// KMSKeeper seals and opens local key store entries. It is implemented by
// *secrets.Keeper from gocloud.dev.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
