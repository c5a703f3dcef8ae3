// Package service validates attachment payloads, produces resized variants and keeps the
// compound identifiers of a resource in sync with its attachments.
package service

import (
	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	"github.com/allisson/phrsdk/internal/fhir"
)

// Validator checks attachment payloads before upload.
type Validator struct {
	hasher cryptoService.Hasher
}

// NewValidator creates a Validator.
func NewValidator(hasher cryptoService.Hasher) *Validator {
	return &Validator{hasher: hasher}
}

// Validate checks the signature and size of att.Data and, when both pass, sets att.Hash
// and att.Size. It returns the detected file type.
func (v *Validator) Validate(att *fhir.Attachment) (attachmentDomain.FileType, error) {
	fileType := attachmentDomain.DetectFileType(att.Data)
	if fileType == attachmentDomain.FileTypeUnknown {
		return fileType, attachmentDomain.ErrUnsupportedFileType
	}
	if len(att.Data) > attachmentDomain.DataSizeMaxBytes {
		return fileType, attachmentDomain.ErrMaxDataSizeViolation
	}

	att.Hash = v.hasher.Hash(att.Data)
	att.Size = len(att.Data)
	return fileType, nil
}

// IsHashable reports whether a downloaded attachment can be checked against its hash.
// Attachments written before hashing existed carry no hash.
func IsHashable(att *fhir.Attachment) bool {
	return att.Hash != ""
}

// VerifyHash checks data against the stored hash of att.
func (v *Validator) VerifyHash(att *fhir.Attachment, data []byte) error {
	if !IsHashable(att) {
		return nil
	}
	if v.hasher.Hash(data) != att.Hash {
		return attachmentDomain.ErrInvalidAttachmentPayloadHash
	}
	return nil
}
