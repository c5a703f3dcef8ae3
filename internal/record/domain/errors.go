package domain

import (
	"github.com/allisson/phrsdk/internal/errors"
)

var (
	// ErrModelVersionNotSupported indicates an envelope written by a newer client.
	ErrModelVersionNotSupported = errors.Wrap(errors.ErrInvalidInput, "model version not supported")

	// ErrInvalidDate indicates an envelope date that does not parse.
	ErrInvalidDate = errors.Wrap(errors.ErrInvalidInput, "invalid record date")

	// ErrMissingDataKey indicates an envelope without encrypted data key.
	ErrMissingDataKey = errors.Wrap(errors.ErrCrypto, "encrypted data key missing")

	// ErrRecordNotFound indicates the backend has no record with the requested id.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrRecordIDRequired indicates an operation on a record without id.
	ErrRecordIDRequired = errors.Wrap(errors.ErrInvalidInput, "record id required")

	// ErrResourceKindMismatch indicates an update with a resource of another kind than the
	// stored record.
	ErrResourceKindMismatch = errors.Wrap(errors.ErrInvalidInput, "resource kind does not match the record")

	// ErrNotAFhirRecord indicates an attachment operation on an app data record.
	ErrNotAFhirRecord = errors.Wrap(errors.ErrInvalidInput, "record does not hold a FHIR resource")
)
