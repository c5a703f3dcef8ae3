package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/phrsdk/internal/database"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	sandboxDomain "github.com/allisson/phrsdk/internal/sandbox/domain"
	sandboxService "github.com/allisson/phrsdk/internal/sandbox/service"
)

type accountUseCase struct {
	txManager     database.TxManager
	users         UserRepository
	secretService sandboxService.SecretService
	tokenService  sandboxService.TokenService
	logger        *slog.Logger
}

// NewAccountUseCase creates an AccountUseCase.
func NewAccountUseCase(
	txManager database.TxManager,
	users UserRepository,
	secretService sandboxService.SecretService,
	tokenService sandboxService.TokenService,
	logger *slog.Logger,
) AccountUseCase {
	return &accountUseCase{
		txManager:     txManager,
		users:         users,
		secretService: secretService,
		tokenService:  tokenService,
		logger:        logger,
	}
}

func (a *accountUseCase) Register(ctx context.Context, reg Registration) (*Credentials, error) {
	switch {
	case strings.TrimSpace(reg.ClientID) == "":
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client id is required")
	case len(reg.PublicKey) == 0:
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "public key is required")
	case reg.CommonKeyID == "" || reg.CommonKey == "":
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "common key is required")
	case reg.TagEncryptionKey == "":
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "tag encryption key is required")
	}

	plainSecret, hashedSecret, err := a.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate user id")
	}
	now := time.Now().UTC()

	user := &sandboxDomain.User{
		ID:               userID,
		ClientID:         reg.ClientID,
		SecretHash:       hashedSecret,
		PublicKey:        reg.PublicKey,
		CommonKeyID:      reg.CommonKeyID,
		TagEncryptionKey: reg.TagEncryptionKey,
		CreatedAt:        now,
	}
	commonKey := &sandboxDomain.CommonKey{
		UserID:       userID,
		ID:           reg.CommonKeyID,
		EncryptedKey: reg.CommonKey,
		CreatedAt:    now,
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.users.Create(ctx, user); err != nil {
			return err
		}
		return a.users.SaveCommonKey(ctx, commonKey)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("account registered", slog.String("user_id", userID.String()), slog.String("client_id", reg.ClientID))

	return &Credentials{UserID: userID, ClientSecret: plainSecret}, nil
}

func (a *accountUseCase) IssueToken(ctx context.Context, userID uuid.UUID, clientSecret string) (*AccessToken, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		if apperrors.Is(err, sandboxDomain.ErrUserNotFound) {
			return nil, sandboxDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !a.secretService.CompareSecret(clientSecret, user.SecretHash) {
		a.logger.Warn("token request rejected", slog.String("user_id", userID.String()))
		return nil, sandboxDomain.ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokenService.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (a *accountUseCase) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	return a.tokenService.Validate(token)
}

func (a *accountUseCase) UserInfo(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	commonKey, err := a.users.GetCommonKey(ctx, userID, user.CommonKeyID)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		UserID:           user.ID,
		CommonKeyID:      user.CommonKeyID,
		CommonKey:        commonKey.EncryptedKey,
		TagEncryptionKey: user.TagEncryptionKey,
	}, nil
}

func (a *accountUseCase) CommonKey(
	ctx context.Context,
	userID uuid.UUID,
	id string,
) (*sandboxDomain.CommonKey, error) {
	return a.users.GetCommonKey(ctx, userID, id)
}
