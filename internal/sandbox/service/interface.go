// Package service provides the credential services of the sandbox backend: client
// secret hashing and the signed bearer tokens handed out by the token endpoint.
package service

import (
	"time"

	"github.com/google/uuid"
)

// SecretService generates and verifies account client secrets.
type SecretService interface {
	// GenerateSecret returns a fresh random secret and its Argon2id hash. The plain
	// secret is handed to the client once at registration.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain secret.
	HashSecret(plainSecret string) (string, error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService issues and validates bearer tokens bound to an account.
type TokenService interface {
	// Issue signs a token for userID. It returns the token and its expiry.
	Issue(userID uuid.UUID) (token string, expiresAt time.Time, err error)

	// Validate checks the signature and expiry of token and returns the account id.
	Validate(token string) (uuid.UUID, error)
}
