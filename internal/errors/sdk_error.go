package errors

import (
	"context"
	"errors"
	"fmt"
)

// Kind groups failures by what a caller can do about them.
type Kind string

const (
	// KindValidation means the input must be fixed before resubmitting.
	KindValidation Kind = "validation"
	// KindNotFound means the referenced record or document does not exist.
	KindNotFound Kind = "not_found"
	// KindUnauthorized means the session is missing or expired.
	KindUnauthorized Kind = "unauthorized"
	// KindTransport means the request may succeed when retried.
	KindTransport Kind = "transport"
	// KindCrypto means key material or ciphertext is unusable.
	KindCrypto Kind = "crypto"
	// KindInternal covers everything else.
	KindInternal Kind = "internal"
)

// SDKError is the single error type returned from the public client surface.
type SDKError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *SDKError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *SDKError) Unwrap() error {
	return e.Err
}

// Classify wraps err into an *SDKError tagged with op. Errors that already are an
// *SDKError are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return err
	}

	return &SDKError{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf maps the sentinel found in err's chain to a Kind.
func KindOf(err error) Kind {
	var sdkErr *SDKError
	switch {
	case errors.As(err, &sdkErr):
		return sdkErr.Kind
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return KindUnauthorized
	case errors.Is(err, ErrCrypto):
		return KindCrypto
	case errors.Is(err, ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTransport
	default:
		return KindInternal
	}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}
