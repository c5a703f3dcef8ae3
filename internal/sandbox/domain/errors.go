package domain

import (
	"github.com/allisson/phrsdk/internal/errors"
)

// Sandbox errors.
var (
	// ErrUserNotFound indicates no account exists with the given id.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrRecordNotFound indicates the record does not exist for this user.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrDocumentNotFound indicates the document does not exist for this user.
	ErrDocumentNotFound = errors.Wrap(errors.ErrNotFound, "document not found")

	// ErrCommonKeyNotFound indicates the user has no common key with the given id.
	ErrCommonKeyNotFound = errors.Wrap(errors.ErrNotFound, "common key not found")

	// ErrInvalidCredentials indicates the account id or client secret is wrong.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidToken indicates the bearer token is malformed, forged or expired.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrMalformedTagQuery indicates an unbalanced or empty entry in a tags query.
	ErrMalformedTagQuery = errors.Wrap(errors.ErrInvalidInput, "malformed tags query")

	// ErrDocumentTooLarge indicates an upload above the document size limit.
	ErrDocumentTooLarge = errors.Wrap(errors.ErrInvalidInput, "document too large")
)
