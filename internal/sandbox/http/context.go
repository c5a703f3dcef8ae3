// Package http exposes the sandbox PHR backend over gin: account registration, token
// issuance and the per-user record, document and key endpoints.
package http

import (
	"context"

	"github.com/google/uuid"
)

type userKey struct{}

// WithUserID stores the authenticated account id in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// GetUserID returns the authenticated account id stored by AuthenticationMiddleware.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userKey{}).(uuid.UUID)
	return userID, ok
}
