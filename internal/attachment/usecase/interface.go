// Package usecase moves attachment payloads between a resource and the document store.
//
// Uploads validate, hash, resize and encrypt every new attachment, then rewrite the
// resource's compound identifiers. Downloads fetch the requested variant, decrypt it and
// put the bytes back inline.
package usecase

import (
	"context"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	"github.com/allisson/phrsdk/internal/fhir"
)

// DocumentRepository stores encrypted attachment payloads.
type DocumentRepository interface {
	// Upload stores data and returns the new document id.
	Upload(ctx context.Context, data []byte) (string, error)

	// Download returns the stored payload of documentID.
	Download(ctx context.Context, documentID string) ([]byte, error)

	// Delete removes documentID.
	Delete(ctx context.Context, documentID string) error
}

// KeyResolver hands out the attachment key of the record being written. Implemented by
// crypto/usecase.AttachmentKeyResolver.
type KeyResolver interface {
	Resolve() (*cryptoDomain.Key, error)
}

// AttachmentUseCase uploads and downloads the attachments of a resource.
type AttachmentUseCase interface {
	// Upload stores every attachment of resource that carries data. Attachments with an id
	// and no data are left as they are. The key is only resolved when something is uploaded.
	Upload(ctx context.Context, resource fhir.Resource, keys KeyResolver, partnerID string) error

	// Download replaces the data of every attachment of resource with the decrypted payload
	// of the requested variant.
	Download(
		ctx context.Context,
		resource fhir.Resource,
		key *cryptoDomain.Key,
		downloadType attachmentDomain.DownloadType,
	) error

	// DownloadAttachments downloads only the attachments whose ids are listed and returns
	// them in resource order. Every id must belong to resource.
	DownloadAttachments(
		ctx context.Context,
		resource fhir.Resource,
		key *cryptoDomain.Key,
		attachmentIDs []string,
		downloadType attachmentDomain.DownloadType,
	) ([]*fhir.Attachment, error)
}
