package usecase

import (
	"sync"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

// AttachmentKeyResolver hands out the attachment key of one record operation.
//
// The key is generated on the first Resolve call when the record had none and reused
// afterwards. Records without attachments never call Resolve and so never allocate a key.
// Resolve is serialized, so concurrent uploads of one record share a single key.
type AttachmentKeyResolver struct {
	mu        sync.Mutex
	key       *cryptoDomain.Key
	generated bool
	generate  func() (*cryptoDomain.Key, error)
}

// NewAttachmentKeyResolver creates a resolver. existing may be nil.
func NewAttachmentKeyResolver(
	existing *cryptoDomain.Key,
	generate func() (*cryptoDomain.Key, error),
) *AttachmentKeyResolver {
	return &AttachmentKeyResolver{key: existing, generate: generate}
}

// Resolve returns the record's attachment key, generating it exactly once if needed.
func (r *AttachmentKeyResolver) Resolve() (*cryptoDomain.Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key != nil {
		return r.key, nil
	}

	key, err := r.generate()
	if err != nil {
		return nil, err
	}
	r.key = key
	r.generated = true
	return key, nil
}

// Key returns the current key without generating one.
func (r *AttachmentKeyResolver) Key() *cryptoDomain.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// Generated reports whether Resolve created a new key.
func (r *AttachmentKeyResolver) Generated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generated
}
