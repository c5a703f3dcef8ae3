package domain

import (
	"github.com/allisson/phrsdk/internal/errors"
)

// Attachment validation errors. All of them wrap ErrInvalidInput.
var (
	// ErrUnsupportedFileType indicates a payload whose signature is not whitelisted.
	ErrUnsupportedFileType = errors.Wrap(errors.ErrInvalidInput, "unsupported file type")

	// ErrMaxDataSizeViolation indicates a payload above DataSizeMaxBytes.
	ErrMaxDataSizeViolation = errors.Wrap(errors.ErrInvalidInput, "attachment exceeds maximum data size")

	// ErrIDUsageViolation indicates a malformed compound identifier.
	ErrIDUsageViolation = errors.Wrap(errors.ErrInvalidInput, "id usage violation")

	// ErrAttachmentIDExpected indicates an attachment without id where one is required.
	ErrAttachmentIDExpected = errors.Wrap(ErrIDUsageViolation, "Attachment.id expected")

	// ErrInvalidAttachmentIDs indicates requested attachment ids the record does not have.
	ErrInvalidAttachmentIDs = errors.Wrap(errors.ErrInvalidInput, "Please provide correct attachment ids!")

	// ErrInvalidAttachmentPayloadHash indicates a downloaded payload that does not match
	// its stored hash.
	ErrInvalidAttachmentPayloadHash = errors.Wrap(errors.ErrInvalidInput, "attachment hash is invalid")

	// ErrInvalidDownloadType indicates an unknown download type name.
	ErrInvalidDownloadType = errors.Wrap(errors.ErrInvalidInput, "invalid download type")
)
