package testutil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoRepository "github.com/allisson/phrsdk/internal/crypto/repository"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	cryptoUsecase "github.com/allisson/phrsdk/internal/crypto/usecase"
)

// LocalKeyURI returns a base64key:// keeper URI with a random key.
func LocalKeyURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

// KeyFixture is a key use case over an in-memory key store that already holds the keys
// of a freshly bootstrapped account.
type KeyFixture struct {
	Keys         cryptoUsecase.KeyUseCase
	Store        *cryptoRepository.BadgerKeyStore
	KeyManager   *cryptoService.KeyManagerService
	Registration *cryptoDomain.Registration
}

// NewKeyFixture builds a KeyFixture. fetcher may be nil when the test never misses the
// local store. The store and its keeper are closed on test
// cleanup.
func NewKeyFixture(t *testing.T, fetcher cryptoUsecase.KeyFetcher) *KeyFixture {
	t.Helper()
	ctx := context.Background()

	keeper, err := cryptoService.NewKMSService().OpenKeeper(ctx, LocalKeyURI(t))
	require.NoError(t, err)

	store, err := cryptoRepository.OpenBadgerKeyStore("", keeper)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	keys := cryptoUsecase.NewKeyUseCase(
		cryptoDomain.NewCommonKeyChain(),
		store,
		fetcher,
		keyManager,
		cryptoService.NewAccountKeyService(),
		cryptoDomain.AESGCM,
		nil,
	)

	registration, err := keys.Bootstrap(ctx)
	require.NoError(t, err)

	return &KeyFixture{Keys: keys, Store: store, KeyManager: keyManager, Registration: registration}
}
