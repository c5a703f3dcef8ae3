package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Key is a plaintext symmetric key of the hierarchy.
//
// Material is never persisted in this form: it is wrapped under a parent key (data,
// attachment and tag keys under the common key) or under the account public key
// (the common key) before it leaves the process.
type Key struct {
	ID        string    // Common key id; empty for record-scoped keys
	Type      KeyType   // Role in the hierarchy
	Algorithm Algorithm // AEAD used with this key
	Material  []byte    // Plaintext key bytes (KeySize long)
	Version   int       // Key exchange format version
	CreatedAt time.Time
}

// Clone returns a deep copy so a record can own its keys independently of a cache.
func (k *Key) Clone() *Key {
	if k == nil {
		return nil
	}
	clone := *k
	clone.Material = append([]byte(nil), k.Material...)
	return &clone
}

// Destroy zeroes the key material.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	Zero(k.Material)
}

// EncryptedKey is a wrapped key as it travels over the wire: base64 of nonce||ciphertext.
type EncryptedKey string

// String returns the base64 form.
func (e EncryptedKey) String() string {
	return string(e)
}

// IsEmpty reports whether no key is present.
func (e EncryptedKey) IsEmpty() bool {
	return e == ""
}

// Bytes decodes the base64 form.
func (e EncryptedKey) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(string(e))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	return raw, nil
}

// NewEncryptedKey encodes raw wrapped bytes.
func NewEncryptedKey(raw []byte) EncryptedKey {
	return EncryptedKey(base64.StdEncoding.EncodeToString(raw))
}

// KeyExchangeFormat is the JSON document a key is serialized to before it is wrapped.
type KeyExchangeFormat struct {
	Type      KeyType   `json:"t"`
	Version   int       `json:"v"`
	Symmetric string    `json:"sym"`
	Algorithm Algorithm `json:"alg,omitempty"`
}

// MarshalExchangeFormat serializes k into its key exchange JSON document.
func (k *Key) MarshalExchangeFormat() ([]byte, error) {
	version := k.Version
	if version == 0 {
		version = KeyVersion
	}

	return json.Marshal(KeyExchangeFormat{
		Type:      k.Type,
		Version:   version,
		Symmetric: base64.StdEncoding.EncodeToString(k.Material),
		Algorithm: k.Algorithm,
	})
}

// UnmarshalExchangeFormat parses a key exchange JSON document and checks that it holds a
// key of the expected type.
func UnmarshalExchangeFormat(data []byte, expected KeyType) (*Key, error) {
	var format KeyExchangeFormat
	if err := json.Unmarshal(data, &format); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}

	if format.Type != expected {
		return nil, fmt.Errorf("%w: expected key type %q, got %q", ErrInvalidKeyFormat, expected, format.Type)
	}

	material, err := base64.StdEncoding.DecodeString(format.Symmetric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	if len(material) != KeySize {
		return nil, ErrInvalidKeySize
	}

	alg := format.Algorithm
	if alg == "" {
		alg = AESGCM
	}

	return &Key{
		Type:      format.Type,
		Algorithm: alg,
		Material:  material,
		Version:   format.Version,
	}, nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
}
