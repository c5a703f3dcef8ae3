package service

import (
	"crypto/sha1" //nolint:gosec // attachment digests must match the backend's SHA-1 hashes
	"encoding/base64"
)

// SHA1Hasher computes base64 encoded SHA-1 digests of attachment payloads.
type SHA1Hasher struct{}

// NewSHA1Hasher creates a new SHA1Hasher.
func NewSHA1Hasher() *SHA1Hasher {
	return &SHA1Hasher{}
}

// Hash returns the standard base64 encoding of the SHA-1 digest of data.
func (h *SHA1Hasher) Hash(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec
	return base64.StdEncoding.EncodeToString(sum[:])
}
