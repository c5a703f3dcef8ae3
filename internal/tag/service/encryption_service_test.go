package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phrsdk/internal/crypto/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	tagDomain "github.com/allisson/phrsdk/internal/tag/domain"
)

func newTagKey(fill byte) *cryptoDomain.Key {
	return &cryptoDomain.Key{
		Type:      cryptoDomain.TagKeyType,
		Algorithm: cryptoDomain.AESGCM,
		Material:  bytes.Repeat([]byte{fill}, cryptoDomain.KeySize),
	}
}

func TestEncryptionService_EncryptDecrypt(t *testing.T) {
	cipher := cryptoService.NewTagCipher(cryptoService.NewAEADManager())
	s := NewEncryptionService(cipher, nil)
	key := newTagKey(1)

	tags := tagDomain.Tags{"client": "p#go", "resourcetype": "patient"}
	encrypted, err := s.Encrypt(tags, []string{"wow", "it"}, key)
	require.NoError(t, err)
	require.Len(t, encrypted, 4)

	t.Run("round trip", func(t *testing.T) {
		gotTags, gotAnnotations := s.Decrypt(encrypted, key)
		assert.Equal(t, tags, gotTags)
		assert.Equal(t, []string{"wow", "it"}, gotAnnotations)
	})

	t.Run("deterministic", func(t *testing.T) {
		again, err := s.Encrypt(tags, []string{"wow", "it"}, key)
		require.NoError(t, err)
		assert.Equal(t, encrypted, again)
	})

	t.Run("undecryptable entries are skipped", func(t *testing.T) {
		foreign, err := s.Encrypt(tagDomain.Tags{"flag": "appdata"}, nil, newTagKey(2))
		require.NoError(t, err)

		gotTags, _ := s.Decrypt(append([]string{"garbage"}, append(foreign, encrypted[0])...), key)
		assert.Equal(t, tagDomain.Tags{"client": "p#go"}, gotTags)
	})
}

func TestEncryptionService_EncryptSearchTags(t *testing.T) {
	cipher := cryptoService.NewTagCipher(cryptoService.NewAEADManager())
	s := NewEncryptionService(cipher, nil)
	key := newTagKey(3)

	query, err := s.EncryptSearchTags(tagDomain.Tags{"flag": "appdata", "fhirversion": "4.0.1"}, nil, key)
	require.NoError(t, err)
	require.Len(t, query, 2)

	// fhirversion=4%2e0%2e1 has three distinct encodings, flag=appdata has one.
	assert.True(t, strings.HasPrefix(query[0], "("))
	assert.True(t, strings.HasSuffix(query[0], ")"))
	group := strings.Split(strings.Trim(query[0], "()"), ",")
	assert.Len(t, group, 3)

	stored, err := s.Encrypt(tagDomain.Tags{"fhirversion": "4.0.1"}, nil, key)
	require.NoError(t, err)
	assert.Equal(t, stored[0], group[0])

	assert.False(t, strings.HasPrefix(query[1], "("))
	appdata, err := cipher.Encrypt("flag=appdata", key)
	require.NoError(t, err)
	assert.Equal(t, appdata, query[1])
}
