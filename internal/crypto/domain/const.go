// Package domain defines the key hierarchy of the record client: the partner-wide
// common key, the per-record data and attachment keys, the tag encryption key and the
// account key pair that protects the common key in transit.
package domain

// Algorithm represents the AEAD used with a symmetric key.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode. It is the default for every key type.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, selectable for data and attachment keys.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeyType is the role a symmetric key plays in the hierarchy. The values are the short
// type markers written into the key exchange format.
type KeyType string

const (
	// CommonKeyType protects data, attachment and tag keys. One per partner.
	CommonKeyType KeyType = "ck"
	// DataKeyType encrypts a single record body.
	DataKeyType KeyType = "dk"
	// AttachmentKeyType encrypts the attachment payloads of a single record.
	AttachmentKeyType KeyType = "ak"
	// TagKeyType deterministically encrypts tags and annotations.
	TagKeyType KeyType = "tk"
)

const (
	// KeySize is the length in bytes of every symmetric key.
	KeySize = 32

	// KeyVersion is the key exchange format version written by this client.
	KeyVersion = 1

	// DefaultCommonKeyID is used for accounts created before common key rotation existed.
	DefaultCommonKeyID = "00000000-0000-0000-0000-000000000000"
)
