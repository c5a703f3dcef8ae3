package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	attachmentService "github.com/allisson/phrsdk/internal/attachment/service"
	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/fhir"
)

type attachmentUseCase struct {
	documents   DocumentRepository
	keyManager  cryptoService.KeyManager
	validator   *attachmentService.Validator
	resizer     attachmentService.ImageResizer
	concurrency int
	logger      *slog.Logger
}

// NewAttachmentUseCase creates an AttachmentUseCase. concurrency bounds the number of
// parallel document requests of one resource; values below 1 mean unbounded.
func NewAttachmentUseCase(
	documents DocumentRepository,
	keyManager cryptoService.KeyManager,
	hasher cryptoService.Hasher,
	resizer attachmentService.ImageResizer,
	concurrency int,
	logger *slog.Logger,
) AttachmentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &attachmentUseCase{
		documents:   documents,
		keyManager:  keyManager,
		validator:   attachmentService.NewValidator(hasher),
		resizer:     resizer,
		concurrency: concurrency,
		logger:      logger,
	}
}

type pendingUpload struct {
	attachment *fhir.Attachment
	fileType   attachmentDomain.FileType
	id         attachmentDomain.CompoundID
}

func (a *attachmentUseCase) Upload(
	ctx context.Context,
	resource fhir.Resource,
	keys KeyResolver,
	partnerID string,
) error {
	var pending []*pendingUpload
	for _, att := range resource.Attachments() {
		// A preview or thumbnail handed back from a sized download must not replace the
		// full asset it was derived from.
		if attachmentDomain.IsVariantDownloadID(att.ID) {
			return fmt.Errorf("%w: %s", attachmentDomain.ErrIDUsageViolation, att.ID)
		}
		if len(att.Data) == 0 {
			continue
		}
		fileType, err := a.validator.Validate(att)
		if err != nil {
			return err
		}
		pending = append(pending, &pendingUpload{attachment: att, fileType: fileType})
	}
	if len(pending) == 0 {
		return attachmentService.UpdateIdentifiers(resource, nil, partnerID)
	}

	key, err := keys.Resolve()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for _, p := range pending {
		g.Go(func() error {
			return a.uploadOne(gctx, p, key)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	uploaded := make([]attachmentDomain.CompoundID, 0, len(pending))
	for _, p := range pending {
		p.attachment.ID = p.id.FullID
		p.attachment.Data = nil
		uploaded = append(uploaded, p.id)
	}
	return attachmentService.UpdateIdentifiers(resource, uploaded, partnerID)
}

// uploadOne stores the full payload and, for raster images, the preview and thumbnail.
func (a *attachmentUseCase) uploadOne(ctx context.Context, p *pendingUpload, key *cryptoDomain.Key) error {
	fullID, err := a.store(ctx, p.attachment.Data, key)
	if err != nil {
		return err
	}
	p.id.FullID = fullID

	if !p.fileType.IsResizable() || a.resizer == nil {
		return nil
	}

	p.id.PreviewID, err = a.storeVariant(ctx, p.attachment, attachmentDomain.PreviewHeight, key)
	if err != nil {
		return err
	}
	p.id.ThumbnailID, err = a.storeVariant(ctx, p.attachment, attachmentDomain.ThumbnailHeight, key)
	return err
}

// storeVariant returns "" when the resizer declines or fails to resize the image.
func (a *attachmentUseCase) storeVariant(
	ctx context.Context,
	att *fhir.Attachment,
	height int,
	key *cryptoDomain.Key,
) (string, error) {
	resized, ok, err := a.resizer.Resize(att.Data, height)
	if err != nil {
		a.logger.Warn("failed to resize attachment, variant omitted",
			slog.String("title", att.Title),
			slog.String("content_type", att.ContentType),
			slog.Int("height", height),
			slog.Any("error", err),
		)
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return a.store(ctx, resized, key)
}

func (a *attachmentUseCase) store(ctx context.Context, data []byte, key *cryptoDomain.Key) (string, error) {
	sealed, err := a.keyManager.EncryptData(data, key)
	if err != nil {
		return "", err
	}
	return a.documents.Upload(ctx, sealed)
}

func (a *attachmentUseCase) Download(
	ctx context.Context,
	resource fhir.Resource,
	key *cryptoDomain.Key,
	downloadType attachmentDomain.DownloadType,
) error {
	attachments := resource.Attachments()
	if len(attachments) == 0 {
		return nil
	}
	return a.download(ctx, resource, key, attachments, downloadType)
}

func (a *attachmentUseCase) DownloadAttachments(
	ctx context.Context,
	resource fhir.Resource,
	key *cryptoDomain.Key,
	attachmentIDs []string,
	downloadType attachmentDomain.DownloadType,
) ([]*fhir.Attachment, error) {
	if len(attachmentIDs) == 0 {
		return nil, attachmentDomain.ErrInvalidAttachmentIDs
	}

	wanted := make(map[string]struct{}, len(attachmentIDs))
	for _, id := range attachmentIDs {
		wanted[id] = struct{}{}
	}

	var selected []*fhir.Attachment
	for _, att := range resource.Attachments() {
		if _, ok := wanted[att.ID]; ok {
			selected = append(selected, att)
			delete(wanted, att.ID)
		}
	}
	if len(wanted) > 0 {
		return nil, attachmentDomain.ErrInvalidAttachmentIDs
	}

	if err := a.download(ctx, resource, key, selected, downloadType); err != nil {
		return nil, err
	}
	return selected, nil
}

func (a *attachmentUseCase) download(
	ctx context.Context,
	resource fhir.Resource,
	key *cryptoDomain.Key,
	attachments []*fhir.Attachment,
	downloadType attachmentDomain.DownloadType,
) error {
	for _, att := range attachments {
		if att.ID == "" {
			return attachmentDomain.ErrAttachmentIDExpected
		}
	}
	if key == nil {
		return apperrors.Wrap(cryptoDomain.ErrKeyNotFound, "attachment key missing")
	}

	ids, err := attachmentService.CompoundIDs(resource)
	if err != nil {
		return err
	}

	downloadIDs := make([]string, len(attachments))
	for i, att := range attachments {
		downloadIDs[i], err = attachmentService.DownloadID(att, ids, downloadType)
		if err != nil {
			return err
		}
	}

	payloads := make([][]byte, len(attachments))
	g, gctx := errgroup.WithContext(ctx)
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i := range attachments {
		g.Go(func() error {
			data, err := a.fetch(gctx, attachmentDomain.AssetID(downloadIDs[i]), key)
			if err != nil {
				return err
			}
			if !attachmentDomain.IsVariantDownloadID(downloadIDs[i]) {
				if err := a.validator.VerifyHash(attachments[i], data); err != nil {
					return err
				}
			}
			payloads[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, att := range attachments {
		att.ID = downloadIDs[i]
		att.Data = payloads[i]
	}
	return nil
}

func (a *attachmentUseCase) fetch(ctx context.Context, documentID string, key *cryptoDomain.Key) ([]byte, error) {
	sealed, err := a.documents.Download(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return a.keyManager.DecryptData(sealed, key)
}
