package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
)

func TestRSAAccountKeyService(t *testing.T) {
	svc := NewAccountKeyService()
	pair, err := svc.GenerateKeyPair()
	require.NoError(t, err)
	require.NotEmpty(t, pair.PrivateKey)
	require.NotEmpty(t, pair.PublicKey)

	t.Run("wrap and unwrap common key", func(t *testing.T) {
		commonKey := newCommonKey(11)

		wrapped, err := svc.WrapCommonKey(commonKey, pair.PublicKey)
		require.NoError(t, err)

		unwrapped, err := svc.UnwrapCommonKey(wrapped, pair.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, commonKey.Material, unwrapped.Material)
		assert.Equal(t, cryptoDomain.CommonKeyType, unwrapped.Type)
	})

	t.Run("invalid public key", func(t *testing.T) {
		_, err := svc.WrapCommonKey(newCommonKey(1), []byte("bogus"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidAccountKey)
	})

	t.Run("invalid private key", func(t *testing.T) {
		wrapped, err := svc.WrapCommonKey(newCommonKey(1), pair.PublicKey)
		require.NoError(t, err)

		_, err = svc.UnwrapCommonKey(wrapped, []byte("bogus"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidAccountKey)
	})

	t.Run("foreign key pair", func(t *testing.T) {
		other, err := svc.GenerateKeyPair()
		require.NoError(t, err)
		wrapped, err := svc.WrapCommonKey(newCommonKey(1), pair.PublicKey)
		require.NoError(t, err)

		_, err = svc.UnwrapCommonKey(wrapped, other.PrivateKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}
