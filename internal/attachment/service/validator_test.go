package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attachmentDomain "github.com/allisson/phrsdk/internal/attachment/domain"
	cryptoService "github.com/allisson/phrsdk/internal/crypto/service"
	"github.com/allisson/phrsdk/internal/fhir"
)

func pdfOfSize(size int) []byte {
	data := make([]byte, size)
	copy(data, "%PDF-1.4")
	return data
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(cryptoService.NewSHA1Hasher())

	t.Run("accepted payload gets hash and size", func(t *testing.T) {
		att := &fhir.Attachment{Data: []byte{0xFF, 0xD8, 0xFF, 0xDB}}

		fileType, err := v.Validate(att)
		require.NoError(t, err)
		assert.Equal(t, attachmentDomain.FileTypeJPEG, fileType)
		assert.Equal(t, "obkanHeotP32HiKllYhs/aRLUAc=", att.Hash)
		assert.Equal(t, 4, att.Size)
	})

	t.Run("maximum size is accepted", func(t *testing.T) {
		_, err := v.Validate(&fhir.Attachment{Data: pdfOfSize(attachmentDomain.DataSizeMaxBytes)})
		assert.NoError(t, err)
	})

	t.Run("one byte above maximum", func(t *testing.T) {
		att := &fhir.Attachment{Data: pdfOfSize(attachmentDomain.DataSizeMaxBytes + 1)}

		_, err := v.Validate(att)
		assert.ErrorIs(t, err, attachmentDomain.ErrMaxDataSizeViolation)
		assert.Empty(t, att.Hash)
	})

	t.Run("unknown signature", func(t *testing.T) {
		_, err := v.Validate(&fhir.Attachment{Data: []byte("plain text")})
		assert.ErrorIs(t, err, attachmentDomain.ErrUnsupportedFileType)
	})
}

func TestValidator_VerifyHash(t *testing.T) {
	v := NewValidator(cryptoService.NewSHA1Hasher())
	data := []byte{0xFF, 0xD8, 0xFF, 0xDB}

	assert.NoError(t, v.VerifyHash(&fhir.Attachment{Hash: "obkanHeotP32HiKllYhs/aRLUAc="}, data))
	assert.ErrorIs(t, v.VerifyHash(&fhir.Attachment{Hash: "wrong"}, data),
		attachmentDomain.ErrInvalidAttachmentPayloadHash)
	assert.NoError(t, v.VerifyHash(&fhir.Attachment{}, data))
}
