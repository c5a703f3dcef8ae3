// Package service converts records between their decrypted form and the encrypted
// envelope exchanged with the backend.
package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	cryptoUsecase "github.com/allisson/phrsdk/internal/crypto/usecase"
	recordDomain "github.com/allisson/phrsdk/internal/record/domain"
	tagService "github.com/allisson/phrsdk/internal/tag/service"
)

// CryptoService encrypts and decrypts record envelopes.
type CryptoService struct {
	keys       cryptoUsecase.KeyUseCase
	keyManager cryptoService.KeyManager
	tags       *tagService.EncryptionService
	logger     *slog.Logger
}

// NewCryptoService creates a CryptoService.
func NewCryptoService(
	keys cryptoUsecase.KeyUseCase,
	keyManager cryptoService.KeyManager,
	tags *tagService.EncryptionService,
	logger *slog.Logger,
) *CryptoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CryptoService{keys: keys, keyManager: keyManager, tags: tags, logger: logger}
}

// Encrypt builds the envelope of rec. The body is sealed with the data key, the tags
// and annotations with the tag key, and both record keys are wrapped with the common key
// named by rec.CommonKeyID (the current one when empty). The attachment key is only
// written when the resource has attachments.
func (s *CryptoService) Encrypt(
	ctx context.Context,
	rec *recordDomain.DecryptedRecord,
) (*recordDomain.EncryptedRecord, error) {
	if err := tagService.ValidateAnnotations(rec.Tags, rec.Annotations); err != nil {
		return nil, err
	}
	if rec.DataKey == nil {
		return nil, recordDomain.ErrMissingDataKey
	}

	commonKeyID, commonKey, err := s.keys.ResolveCommonKey(ctx, rec.CommonKeyID)
	if err != nil {
		return nil, err
	}
	tagKey, err := s.keys.TagKey(ctx)
	if err != nil {
		return nil, err
	}

	encryptedTags, err := s.tags.Encrypt(rec.Tags, rec.Annotations, tagKey)
	if err != nil {
		return nil, err
	}

	body, err := rec.Resource.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize resource: %w", err)
	}
	sealedBody, err := s.keyManager.EncryptData(body, rec.DataKey)
	if err != nil {
		return nil, err
	}

	encryptedDataKey, err := s.keyManager.WrapKey(rec.DataKey, commonKey)
	if err != nil {
		return nil, err
	}

	var encryptedAttachmentKey cryptoDomain.EncryptedKey
	if rec.AttachmentKey != nil && rec.Resource.HasAttachments() {
		encryptedAttachmentKey, err = s.keyManager.WrapKey(rec.AttachmentKey, commonKey)
		if err != nil {
			return nil, err
		}
	}

	return &recordDomain.EncryptedRecord{
		ID:                     rec.ID,
		CommonKeyID:            commonKeyID,
		EncryptedTags:          encryptedTags,
		EncryptedBody:          base64.StdEncoding.EncodeToString(sealedBody),
		CustomCreationDate:     recordDomain.FormatDate(rec.CustomCreationDate),
		EncryptedDataKey:       encryptedDataKey,
		EncryptedAttachmentKey: encryptedAttachmentKey,
		ModelVersion:           recordDomain.CurrentModelVersion,
		Status:                 rec.Status,
	}, nil
}

// Decrypt opens an envelope. Envelopes of a newer model version are rejected before any
// key is touched.
func (s *CryptoService) Decrypt(
	ctx context.Context,
	enc *recordDomain.EncryptedRecord,
) (*recordDomain.DecryptedRecord, error) {
	if enc.ModelVersion > recordDomain.CurrentModelVersion {
		return nil, fmt.Errorf("%w: %d", recordDomain.ErrModelVersionNotSupported, enc.ModelVersion)
	}
	if enc.EncryptedDataKey.IsEmpty() {
		return nil, recordDomain.ErrMissingDataKey
	}

	createdDate, err := recordDomain.ParseDate(enc.CustomCreationDate)
	if err != nil {
		return nil, err
	}
	updatedDate, err := recordDomain.ParseUpdatedDate(enc.UpdatedDate)
	if err != nil {
		return nil, err
	}

	// Envelopes written before common key rotation carry no id.
	envelopeKeyID := enc.CommonKeyID
	if envelopeKeyID == "" {
		envelopeKeyID = cryptoDomain.DefaultCommonKeyID
	}
	commonKeyID, commonKey, err := s.keys.ResolveCommonKey(ctx, envelopeKeyID)
	if err != nil {
		return nil, err
	}
	tagKey, err := s.keys.TagKey(ctx)
	if err != nil {
		return nil, err
	}

	tags, annotations := s.tags.Decrypt(enc.EncryptedTags, tagKey)

	dataKey, err := s.keyManager.UnwrapKey(enc.EncryptedDataKey, commonKey, cryptoDomain.DataKeyType)
	if err != nil {
		return nil, err
	}

	var attachmentKey *cryptoDomain.Key
	if !enc.EncryptedAttachmentKey.IsEmpty() {
		attachmentKey, err = s.keyManager.UnwrapKey(
			enc.EncryptedAttachmentKey,
			commonKey,
			cryptoDomain.AttachmentKeyType,
		)
		if err != nil {
			dataKey.Destroy()
			return nil, err
		}
	}

	resource, err := s.decryptBody(enc.EncryptedBody, dataKey, recordDomain.KindFromTags(tags))
	if err != nil {
		dataKey.Destroy()
		if attachmentKey != nil {
			attachmentKey.Destroy()
		}
		return nil, err
	}
	resource.SetID(enc.ID)

	s.logger.Debug("record decrypted",
		slog.String("record_id", enc.ID),
		slog.String("kind", resource.Kind.String()),
	)

	return &recordDomain.DecryptedRecord{
		ID:                 enc.ID,
		Resource:           resource,
		Tags:               tags,
		Annotations:        annotations,
		CustomCreationDate: createdDate,
		UpdatedDate:        updatedDate,
		DataKey:            dataKey,
		AttachmentKey:      attachmentKey,
		ModelVersion:       enc.ModelVersion,
		Status:             enc.Status,
		CommonKeyID:        commonKeyID,
	}, nil
}

func (s *CryptoService) decryptBody(
	encryptedBody string,
	dataKey *cryptoDomain.Key,
	kind recordDomain.Kind,
) (recordDomain.Resource, error) {
	sealed, err := base64.StdEncoding.DecodeString(encryptedBody)
	if err != nil {
		return recordDomain.Resource{}, cryptoDomain.ErrDecryptionFailed
	}
	body, err := s.keyManager.DecryptData(sealed, dataKey)
	if err != nil {
		return recordDomain.Resource{}, err
	}
	return recordDomain.UnmarshalResource(kind, body)
}
