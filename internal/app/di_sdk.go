package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/allisson/phrsdk/internal/api"
	attachmentService "github.com/allisson/phrsdk/internal/attachment/service"
	attachmentUseCase "github.com/allisson/phrsdk/internal/attachment/usecase"
	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoRepository "github.com/allisson/phrsdk/internal/crypto/repository"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	cryptoUseCase "github.com/allisson/phrsdk/internal/crypto/usecase"
	apperrors "github.com/allisson/phrsdk/internal/errors"
	"github.com/allisson/phrsdk/internal/metrics"
	recordService "github.com/allisson/phrsdk/internal/record/service"
	recordUseCase "github.com/allisson/phrsdk/internal/record/usecase"
	tagService "github.com/allisson/phrsdk/internal/tag/service"
)

// ephemeralKeyURI makes localsecrets generate a random key. Only used for in-memory key
// stores, which never outlive the process.
const ephemeralKeyURI = "base64key://"

// sdkComponents are the parts of the record client.
type sdkComponents struct {
	keeper            lazy[cryptoDomain.KMSKeeper]
	keyStore          lazy[*cryptoRepository.BadgerKeyStore]
	apiClient         lazy[*api.Client]
	keyManager        lazy[cryptoService.KeyManager]
	keyUseCase        lazy[cryptoUseCase.KeyUseCase]
	attachmentUseCase lazy[attachmentUseCase.AttachmentUseCase]
	recordUseCase     lazy[recordUseCase.RecordUseCase]
}

// KMSKeeper returns the keeper sealing the local key store. A persistent store needs
// KMS_KEY_URI; an in-memory store gets a random key. The key store owns and closes it.
func (c *Container) KMSKeeper() (cryptoDomain.KMSKeeper, error) {
	return c.sdk.keeper.get(func() (cryptoDomain.KMSKeeper, error) {
		uri := c.config.KMSKeyURI
		if uri == "" {
			if c.config.KeyStorePath != "" {
				return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "KMS_KEY_URI is required with KEYSTORE_PATH")
			}
			uri = ephemeralKeyURI
		}
		return cryptoService.NewKMSService().OpenKeeper(context.Background(), uri)
	})
}

// KeyStore returns the badger key store at KEYSTORE_PATH, in memory when unset.
func (c *Container) KeyStore() (*cryptoRepository.BadgerKeyStore, error) {
	return c.sdk.keyStore.get(func() (*cryptoRepository.BadgerKeyStore, error) {
		keeper, err := c.KMSKeeper()
		if err != nil {
			return nil, fmt.Errorf("failed to open kms keeper: %w", err)
		}
		store, err := cryptoRepository.OpenBadgerKeyStore(c.config.KeyStorePath, keeper)
		if err != nil {
			return nil, err
		}
		c.onShutdown("key store", func(context.Context) error { return store.Close() })
		return store, nil
	})
}

// APIClient returns the backend client. Requests carry ACCESS_TOKEN when set, otherwise
// the token saved by the last login.
func (c *Container) APIClient() (*api.Client, error) {
	return c.sdk.apiClient.get(func() (*api.Client, error) {
		if err := c.config.ValidateSDK(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		}

		transport := http.DefaultTransport
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider != nil {
			transport, err = metrics.NewTransport(provider.MeterProvider(), c.config.MetricsNamespace, transport)
			if err != nil {
				return nil, err
			}
		}

		var tokens api.TokenProvider = api.StaticToken(c.config.AccessToken)
		if c.config.AccessToken == "" {
			store, err := c.KeyStore()
			if err != nil {
				return nil, err
			}
			tokens = sessionToken{store: store}
		}

		return api.NewClient(c.config.APIBaseURL, c.config.SDKPlatform, c.config.SDKVersion,
			api.WithHTTPClient(&http.Client{Timeout: c.config.HTTPTimeout, Transport: transport}),
			api.WithRateLimit(c.config.HTTPRateLimitRequestsPerSec, c.config.HTTPRateLimitBurst),
			api.WithTokenProvider(tokens),
			api.WithLogger(c.Logger()),
		)
	})
}

// KeyManager returns the AEAD key manager.
func (c *Container) KeyManager() cryptoService.KeyManager {
	manager, _ := c.sdk.keyManager.get(func() (cryptoService.KeyManager, error) {
		return cryptoService.NewKeyManager(cryptoService.NewAEADManager()), nil
	})
	return manager
}

// KeyUseCase returns the key hierarchy resolver.
func (c *Container) KeyUseCase() (cryptoUseCase.KeyUseCase, error) {
	return c.sdk.keyUseCase.get(func() (cryptoUseCase.KeyUseCase, error) {
		store, err := c.KeyStore()
		if err != nil {
			return nil, err
		}
		client, err := c.APIClient()
		if err != nil {
			return nil, err
		}
		return cryptoUseCase.NewKeyUseCase(
			cryptoDomain.NewCommonKeyChain(),
			store,
			client,
			c.KeyManager(),
			cryptoService.NewAccountKeyService(),
			cryptoDomain.Algorithm(c.config.DataKeyAlgorithm),
			c.Logger(),
		), nil
	})
}

// AttachmentUseCase returns attachment upload and download.
func (c *Container) AttachmentUseCase() (attachmentUseCase.AttachmentUseCase, error) {
	return c.sdk.attachmentUseCase.get(func() (attachmentUseCase.AttachmentUseCase, error) {
		client, err := c.APIClient()
		if err != nil {
			return nil, err
		}
		return attachmentUseCase.NewAttachmentUseCase(
			client.Documents(),
			c.KeyManager(),
			cryptoService.NewSHA1Hasher(),
			attachmentService.NewDrawResizer(),
			c.config.BatchConcurrency,
			c.Logger(),
		), nil
	})
}

// RecordUseCase returns the record client, instrumented with business metrics.
func (c *Container) RecordUseCase() (recordUseCase.RecordUseCase, error) {
	return c.sdk.recordUseCase.get(func() (recordUseCase.RecordUseCase, error) {
		logger := c.Logger()

		client, err := c.APIClient()
		if err != nil {
			return nil, err
		}
		keys, err := c.KeyUseCase()
		if err != nil {
			return nil, err
		}
		attachments, err := c.AttachmentUseCase()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics: %w", err)
		}

		tagEncryption := tagService.NewEncryptionService(
			cryptoService.NewTagCipher(cryptoService.NewAEADManager()),
			logger,
		)
		useCase := recordUseCase.NewRecordUseCase(
			client.Records(),
			keys,
			recordService.NewCryptoService(keys, c.KeyManager(), tagEncryption, logger),
			tagService.NewTaggingService(c.config.ClientID),
			tagEncryption,
			attachments,
			c.config.BatchConcurrency,
			logger,
		)
		return recordUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// sessionToken serves the access token saved by the last login. It cannot refresh; an
// expired session needs a new login.
type sessionToken struct {
	store *cryptoRepository.BadgerKeyStore
}

func (s sessionToken) Token(ctx context.Context) (string, error) {
	_, token, err := s.store.GetSession(ctx)
	if errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "not logged in")
	}
	return token, err
}

func (s sessionToken) Refresh(context.Context) (string, error) {
	return "", apperrors.Wrap(apperrors.ErrUnauthorized, "session expired, log in again")
}
