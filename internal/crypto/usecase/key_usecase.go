package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
)

const userInfoFlight = "userinfo"

// keyUseCase implements KeyUseCase.
//
// Lookups go chain -> key store -> backend. Concurrent misses for the same common key id
// share one backend call through a singleflight group; the user info call is deduplicated
// the same way. Backend failures are returned as they are, without retries.
type keyUseCase struct {
	chain       *cryptoDomain.CommonKeyChain
	store       KeyStore
	fetcher     KeyFetcher
	keyManager  cryptoService.KeyManager
	accountKeys cryptoService.AccountKeyService
	algorithm   cryptoDomain.Algorithm
	logger      *slog.Logger

	group singleflight.Group

	tagMu  sync.RWMutex
	tagKey *cryptoDomain.Key
}

// NewKeyUseCase creates a KeyUseCase. algorithm selects the AEAD of generated data and
// attachment keys.
func NewKeyUseCase(
	chain *cryptoDomain.CommonKeyChain,
	store KeyStore,
	fetcher KeyFetcher,
	keyManager cryptoService.KeyManager,
	accountKeys cryptoService.AccountKeyService,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) KeyUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &keyUseCase{
		chain:       chain,
		store:       store,
		fetcher:     fetcher,
		keyManager:  keyManager,
		accountKeys: accountKeys,
		algorithm:   algorithm,
		logger:      logger,
	}
}

// ResolveCommonKey returns the common key for commonKeyID, or the current one when empty.
func (k *keyUseCase) ResolveCommonKey(
	ctx context.Context,
	commonKeyID string,
) (string, *cryptoDomain.Key, error) {
	if commonKeyID == "" {
		id, err := k.currentCommonKeyID(ctx)
		if err != nil {
			return "", nil, err
		}
		commonKeyID = id
	}

	if key, ok := k.chain.Get(commonKeyID); ok {
		return commonKeyID, key, nil
	}

	v, err, _ := k.group.Do(commonKeyID, func() (any, error) {
		if key, ok := k.chain.Get(commonKeyID); ok {
			return key, nil
		}
		return k.loadCommonKey(ctx, commonKeyID)
	})
	if err != nil {
		return "", nil, err
	}

	return commonKeyID, v.(*cryptoDomain.Key), nil
}

// TagKey returns the tag encryption key.
func (k *keyUseCase) TagKey(ctx context.Context) (*cryptoDomain.Key, error) {
	k.tagMu.RLock()
	key := k.tagKey
	k.tagMu.RUnlock()
	if key != nil {
		return key, nil
	}

	stored, err := k.store.GetTagKey(ctx)
	if err == nil {
		k.setTagKey(stored)
		return stored, nil
	}
	if !errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return nil, err
	}

	if err := k.loadUserInfo(ctx); err != nil {
		return nil, err
	}

	k.tagMu.RLock()
	defer k.tagMu.RUnlock()
	return k.tagKey, nil
}

// GenerateDataKey returns a fresh data key.
func (k *keyUseCase) GenerateDataKey() (*cryptoDomain.Key, error) {
	return k.keyManager.GenerateKey(cryptoDomain.DataKeyType, k.algorithm)
}

// NewAttachmentKeyResolver returns a resolver that generates attachment keys lazily.
func (k *keyUseCase) NewAttachmentKeyResolver(existing *cryptoDomain.Key) *AttachmentKeyResolver {
	return NewAttachmentKeyResolver(existing, func() (*cryptoDomain.Key, error) {
		return k.keyManager.GenerateKey(cryptoDomain.AttachmentKeyType, k.algorithm)
	})
}

// Bootstrap creates the key material of a new account.
func (k *keyUseCase) Bootstrap(ctx context.Context) (*cryptoDomain.Registration, error) {
	pair, err := k.accountKeys.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	commonKey, err := k.keyManager.GenerateKey(cryptoDomain.CommonKeyType, cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}
	commonKey.ID = uuid.NewString()

	tagKey, err := k.keyManager.GenerateKey(cryptoDomain.TagKeyType, cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}

	encryptedCommonKey, err := k.accountKeys.WrapCommonKey(commonKey, pair.PublicKey)
	if err != nil {
		return nil, err
	}

	encryptedTagKey, err := k.keyManager.WrapKey(tagKey, commonKey)
	if err != nil {
		return nil, err
	}

	if err := k.store.SaveAccountKey(ctx, pair); err != nil {
		return nil, err
	}
	if err := k.remember(ctx, commonKey, tagKey); err != nil {
		return nil, err
	}

	k.logger.Debug("account keys created", slog.String("common_key_id", commonKey.ID))

	return &cryptoDomain.Registration{
		PublicKey:          pair.PublicKey,
		CommonKeyID:        commonKey.ID,
		EncryptedCommonKey: encryptedCommonKey,
		EncryptedTagKey:    encryptedTagKey,
	}, nil
}

// Logout clears the in-memory chain and the local key store.
func (k *keyUseCase) Logout(ctx context.Context) error {
	k.chain.Clear()

	k.tagMu.Lock()
	k.tagKey = nil
	k.tagMu.Unlock()

	return k.store.Clear(ctx)
}

func (k *keyUseCase) currentCommonKeyID(ctx context.Context) (string, error) {
	if id := k.chain.CurrentID(); id != "" {
		return id, nil
	}

	id, err := k.store.GetCurrentCommonKeyID(ctx)
	if err == nil {
		k.chain.SetCurrentID(id)
		return id, nil
	}
	if !errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return "", err
	}

	if err := k.loadUserInfo(ctx); err != nil {
		return "", err
	}
	return k.chain.CurrentID(), nil
}

func (k *keyUseCase) loadCommonKey(ctx context.Context, commonKeyID string) (*cryptoDomain.Key, error) {
	stored, err := k.store.GetCommonKey(ctx, commonKeyID)
	if err == nil {
		k.chain.Store(commonKeyID, stored)
		return stored, nil
	}
	if !errors.Is(err, cryptoDomain.ErrKeyNotFound) {
		return nil, err
	}

	encrypted, err := k.fetcher.FetchCommonKey(ctx, commonKeyID)
	if err != nil {
		return nil, err
	}

	key, err := k.unwrapCommonKey(ctx, encrypted)
	if err != nil {
		return nil, err
	}
	key.ID = commonKeyID

	if err := k.store.SaveCommonKey(ctx, commonKeyID, key); err != nil {
		return nil, err
	}
	k.chain.Store(commonKeyID, key)

	k.logger.Debug("common key fetched", slog.String("common_key_id", commonKeyID))
	return key, nil
}

func (k *keyUseCase) loadUserInfo(ctx context.Context) error {
	_, err, _ := k.group.Do(userInfoFlight, func() (any, error) {
		info, err := k.fetcher.FetchUserInfo(ctx)
		if err != nil {
			return nil, err
		}

		commonKeyID := info.CommonKeyID
		if commonKeyID == "" {
			commonKeyID = cryptoDomain.DefaultCommonKeyID
		}

		commonKey, err := k.unwrapCommonKey(ctx, info.EncryptedCommonKey)
		if err != nil {
			return nil, err
		}
		commonKey.ID = commonKeyID

		tagKey, err := k.keyManager.UnwrapKey(info.EncryptedTagKey, commonKey, cryptoDomain.TagKeyType)
		if err != nil {
			return nil, fmt.Errorf("failed to unwrap tag key: %w", err)
		}

		return nil, k.remember(ctx, commonKey, tagKey)
	})
	return err
}

func (k *keyUseCase) unwrapCommonKey(
	ctx context.Context,
	encrypted cryptoDomain.EncryptedKey,
) (*cryptoDomain.Key, error) {
	pair, err := k.store.GetAccountKey(ctx)
	if err != nil {
		return nil, err
	}

	return k.accountKeys.UnwrapCommonKey(encrypted, pair.PrivateKey)
}

// remember persists the current common key and the tag key and caches both.
func (k *keyUseCase) remember(ctx context.Context, commonKey, tagKey *cryptoDomain.Key) error {
	if err := k.store.SaveCommonKey(ctx, commonKey.ID, commonKey); err != nil {
		return err
	}
	if err := k.store.SaveCurrentCommonKeyID(ctx, commonKey.ID); err != nil {
		return err
	}
	if err := k.store.SaveTagKey(ctx, tagKey); err != nil {
		return err
	}

	if _, ok := k.chain.Get(commonKey.ID); !ok {
		k.chain.Store(commonKey.ID, commonKey)
	}
	k.chain.SetCurrentID(commonKey.ID)
	k.setTagKey(tagKey)
	return nil
}

func (k *keyUseCase) setTagKey(key *cryptoDomain.Key) {
	k.tagMu.Lock()
	defer k.tagMu.Unlock()
	k.tagKey = key
}
