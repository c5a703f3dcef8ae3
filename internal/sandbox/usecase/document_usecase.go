package usecase

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
)

type documentUseCase struct {
	blobs   BlobStore
	maxSize int64
}

// NewDocumentUseCase creates a DocumentUseCase. Uploads above maxSize bytes are
// rejected; zero disables the limit.
func NewDocumentUseCase(blobs BlobStore, maxSize int64) DocumentUseCase {
	return &documentUseCase{blobs: blobs, maxSize: maxSize}
}

func documentKey(userID uuid.UUID, id string) string {
	return userID.String() + "/" + id
}

func (d *documentUseCase) Upload(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "document is empty")
	}
	if d.maxSize > 0 && int64(len(data)) > d.maxSize {
		return "", sandboxDomain.ErrDocumentTooLarge
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to generate document id")
	}

	if err := d.blobs.Put(ctx, documentKey(userID, id.String()), data); err != nil {
		return "", err
	}
	return id.String(), nil
}

func parseDocumentID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return sandboxDomain.ErrDocumentNotFound
	}
	return nil
}

func (d *documentUseCase) Download(ctx context.Context, userID uuid.UUID, id string) ([]byte, error) {
	if err := parseDocumentID(id); err != nil {
		return nil, err
	}
	return d.blobs.Get(ctx, documentKey(userID, id))
}

func (d *documentUseCase) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	if err := parseDocumentID(id); err != nil {
		return err
	}
	return d.blobs.Delete(ctx, documentKey(userID, id))
}
